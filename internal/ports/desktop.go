package ports

import (
	"context"

	"quickshelf/internal/domain"
)

// Desktop defines the filesystem boundary for scanning and moving files.
type Desktop interface {
	// Root returns the absolute path of the organized directory.
	Root() string

	// Scan snapshots the root's files and the contents of any existing
	// category directories. Scanning never mutates the filesystem.
	Scan(ctx context.Context, categories []string) (*domain.Snapshot, error)

	// Move renames src to dst, creating the destination directory if
	// needed. It fails if dst already exists; it never copies.
	Move(src, dst string) error
}
