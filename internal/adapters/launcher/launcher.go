// Package launcher opens folders in the operating system's file browser.
package launcher

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Reveal opens the folder at path in the system file browser.
func Reveal(path string) error {
	argv, err := revealArgs(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return exec.Command(argv[0], argv[1:]...).Run()
}

// revealArgs builds the platform launch command, split out so the
// per-platform argv stays testable.
func revealArgs(goos, path string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open", path}, nil
	case "linux":
		return []string{"xdg-open", path}, nil
	case "windows":
		return []string{"explorer", path}, nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}
