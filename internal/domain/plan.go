package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// maxRenameAttempts bounds the " (N)" disambiguation loop.
const maxRenameAttempts = 9999

// BuildPlan maps every snapshot entry to a move action. The planner is a
// pure function of the snapshot and resolver: identical inputs produce an
// identical action list, in entry order.
//
// Destination names are checked against the snapshot and against names
// already claimed by earlier actions in the same plan, so no two actions
// share a destination. Occupied names get " (1)", " (2)", ... appended
// before the extension. Nothing is ever planned on top of an existing path.
func BuildPlan(snap *Snapshot, resolver CategoryResolver) *Plan {
	plan := &Plan{
		Root:    snap.Root,
		BuiltAt: time.Now(),
		Actions: make([]MoveAction, 0, len(snap.Entries)),
	}

	claimed := make(map[string]map[string]bool)
	claim := func(category, name string) {
		if claimed[category] == nil {
			claimed[category] = make(map[string]bool)
		}
		claimed[category][name] = true
	}
	taken := func(category, name string) bool {
		return snap.OccupiedIn(category, name) || claimed[category][name]
	}

	for _, entry := range snap.Entries {
		category := Classify(entry, resolver)
		destDir := filepath.Join(snap.Root, category)

		if filepath.Dir(entry.Path) == destDir {
			claim(category, entry.Name)
			plan.Actions = append(plan.Actions, MoveAction{
				Source:      entry.Path,
				Destination: entry.Path,
				Category:    category,
				Status:      StatusSkipped,
			})
			continue
		}

		if isDir, exists := snap.RootChildren[category]; exists && !isDir {
			plan.Actions = append(plan.Actions, MoveAction{
				Source:      entry.Path,
				Destination: filepath.Join(destDir, entry.Name),
				Category:    category,
				Status:      StatusFailed,
				Reason:      ReasonCategoryPathConflict,
				Detail:      fmt.Sprintf("%q exists as a file in %s", category, snap.Root),
			})
			continue
		}

		name := entry.Name
		if taken(category, name) {
			base, ext := splitName(entry.Name)
			resolved := false
			for i := 1; i <= maxRenameAttempts; i++ {
				candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
				if !taken(category, candidate) {
					name = candidate
					resolved = true
					break
				}
			}
			if !resolved {
				plan.Actions = append(plan.Actions, MoveAction{
					Source:      entry.Path,
					Destination: filepath.Join(destDir, entry.Name),
					Category:    category,
					Status:      StatusFailed,
					Reason:      ReasonNameExhausted,
					Detail:      fmt.Sprintf("no free name for %q after %d attempts", entry.Name, maxRenameAttempts),
				})
				continue
			}
		}

		claim(category, name)
		plan.Actions = append(plan.Actions, MoveAction{
			Source:      entry.Path,
			Destination: filepath.Join(destDir, name),
			Category:    category,
			Status:      StatusPlanned,
		})
	}

	return plan
}

// splitName separates a file name into base and extension, keeping the
// original casing so renamed files stay recognizable.
func splitName(name string) (base, ext string) {
	ext = filepath.Ext(name)
	base = strings.TrimSuffix(name, ext)
	if base == "" {
		// Dotfiles like ".env" keep their full name as the base.
		return name, ""
	}
	return base, ext
}
