// Package filesystem implements the desktop boundary over a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quickshelf/internal/domain"
	"quickshelf/internal/ports"
)

// Desktop implements ports.Desktop for a directory on the local filesystem.
type Desktop struct {
	root          string
	includeHidden bool
}

// Ensure Desktop implements the port
var _ ports.Desktop = (*Desktop)(nil)

// NewDesktop creates a desktop adapter rooted at the given directory. A
// leading ~ is expanded against the home directory.
func NewDesktop(root string, includeHidden bool) (*Desktop, error) {
	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	return &Desktop{root: filepath.Clean(root), includeHidden: includeHidden}, nil
}

// Root returns the organized directory.
func (d *Desktop) Root() string { return d.root }

// Scan snapshots the root's regular files plus the files directly inside
// any existing category directory. Directories, symlinks, and (unless
// configured otherwise) hidden dot-files are recorded as occupied names
// but never become entries. Scanning reads only; it never mutates.
func (d *Desktop) Scan(ctx context.Context, categories []string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read desktop %s: %w", d.root, err)
	}

	snap := &domain.Snapshot{
		Root:         d.root,
		TakenAt:      time.Now(),
		Occupied:     make(map[string]map[string]bool),
		RootChildren: make(map[string]bool, len(children)),
	}

	categorySet := make(map[string]bool, len(categories))
	for _, name := range categories {
		categorySet[name] = true
	}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := child.Name()
		snap.RootChildren[name] = child.IsDir()

		switch {
		case child.IsDir():
			if !categorySet[name] {
				continue
			}
			if err := d.scanCategory(snap, name); err != nil {
				return nil, err
			}
		case child.Type().IsRegular():
			if d.skipHidden(name) {
				continue
			}
			if entry, ok := fileEntry(filepath.Join(d.root, name), child); ok {
				snap.Entries = append(snap.Entries, entry)
			}
		}
	}

	return snap, nil
}

func (d *Desktop) scanCategory(snap *domain.Snapshot, category string) error {
	dir := filepath.Join(d.root, category)
	children, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read category %s: %w", dir, err)
	}

	occupied := make(map[string]bool, len(children))
	for _, child := range children {
		occupied[child.Name()] = true
		if !child.Type().IsRegular() || d.skipHidden(child.Name()) {
			continue
		}
		if entry, ok := fileEntry(filepath.Join(dir, child.Name()), child); ok {
			snap.Entries = append(snap.Entries, entry)
		}
	}
	snap.Occupied[category] = occupied
	return nil
}

func (d *Desktop) skipHidden(name string) bool {
	return !d.includeHidden && strings.HasPrefix(name, ".")
}

// fileEntry builds a snapshot row. Files that vanish between the directory
// listing and the stat are dropped; the next scan picks them up.
func fileEntry(path string, child os.DirEntry) (domain.FileEntry, bool) {
	info, err := child.Info()
	if err != nil {
		return domain.FileEntry{}, false
	}
	return domain.FileEntry{
		Path:    path,
		Name:    child.Name(),
		Ext:     strings.ToLower(filepath.Ext(child.Name())),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}

// Move renames src to dst with a single rename, creating the destination
// directory when needed. It refuses to replace an existing destination and
// never falls back to copying.
func (d *Desktop) Move(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination already exists: %s", dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat destination: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
