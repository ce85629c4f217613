package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrRunInProgress means another process holds the organize run lock.
	ErrRunInProgress = errors.New("an organize run is already in progress")
)

// ScanError represents a failed desktop snapshot. It aborts the run
// before any plan exists, so the history stays untouched.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
