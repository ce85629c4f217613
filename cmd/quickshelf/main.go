package main

import "quickshelf/cmd/quickshelf/cmd"

func main() {
	cmd.Execute()
}
