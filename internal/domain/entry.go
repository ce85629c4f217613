package domain

import "time"

// FileEntry is a read-only snapshot of one file eligible for organizing.
type FileEntry struct {
	Path    string // absolute path
	Name    string // base name, e.g. "Report Final.pdf"
	Ext     string // lower-case extension with leading dot, "" when absent
	Size    int64
	ModTime time.Time
}

// Snapshot captures the state of a desktop root at scan time. Planning
// consults only the snapshot, never the live filesystem.
type Snapshot struct {
	Root    string
	TakenAt time.Time

	// Entries are the files to classify, in scan order.
	Entries []FileEntry

	// Occupied holds the child names (files and directories) of each
	// existing category directory, keyed by category name.
	Occupied map[string]map[string]bool

	// RootChildren maps each immediate child of the root to whether it
	// is a directory. Used to detect category names taken by files.
	RootChildren map[string]bool
}

// OccupiedIn reports whether a name is taken inside a category directory.
func (s *Snapshot) OccupiedIn(category, name string) bool {
	return s.Occupied[category][name]
}
