// Package editor launches the user's preferred text editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"
)

// Open opens path in the user's editor and waits for it to exit. The
// editor comes from $EDITOR, then $VISUAL, then a list of common ones.
func Open(path string) error {
	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found: set $EDITOR")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	for _, candidate := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return ""
}
