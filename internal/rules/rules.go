// Package rules maps file extensions to category names.
package rules

import (
	"fmt"
	"strings"
)

// Definition is one configured category. Definition order is significant:
// when two categories claim the same extension, the later one wins.
type Definition struct {
	Name       string
	Extensions []string
}

// Warning reports an extension claimed by more than one category.
type Warning struct {
	Extension string
	Kept      string // category that won the extension
	Shadowed  string // category that lost it
}

// RuleError represents an invalid category definition.
type RuleError struct {
	Category string
	Reason   string
}

func (e *RuleError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("invalid category: %s", e.Reason)
	}
	return fmt.Sprintf("invalid category %q: %s", e.Category, e.Reason)
}

// Set is an immutable extension→category lookup built from definitions.
type Set struct {
	defs  []Definition
	byExt map[string]string
}

// New validates definitions and builds a lookup set. Duplicate extensions
// are resolved in favor of the later definition and reported as warnings.
func New(defs []Definition) (*Set, []Warning, error) {
	set := &Set{
		defs:  make([]Definition, 0, len(defs)),
		byExt: make(map[string]string),
	}
	seen := make(map[string]bool, len(defs))

	var warnings []Warning
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, nil, &RuleError{Reason: "empty category name"}
		}
		if seen[name] {
			return nil, nil, &RuleError{Category: name, Reason: "duplicate category name"}
		}
		if len(def.Extensions) == 0 {
			return nil, nil, &RuleError{Category: name, Reason: "no extensions"}
		}
		seen[name] = true

		normalized := make([]string, 0, len(def.Extensions))
		for _, raw := range def.Extensions {
			ext, err := normalizeExt(raw)
			if err != nil {
				return nil, nil, &RuleError{Category: name, Reason: err.Error()}
			}
			if prev, ok := set.byExt[ext]; ok && prev != name {
				warnings = append(warnings, Warning{Extension: ext, Kept: name, Shadowed: prev})
			}
			set.byExt[ext] = name
			normalized = append(normalized, ext)
		}
		set.defs = append(set.defs, Definition{Name: name, Extensions: normalized})
	}

	return set, warnings, nil
}

// Resolve returns the category for an extension. The match is
// case-insensitive and tolerates a missing leading dot.
func (s *Set) Resolve(ext string) (string, bool) {
	normalized, err := normalizeExt(ext)
	if err != nil {
		return "", false
	}
	name, ok := s.byExt[normalized]
	return name, ok
}

// Categories returns category names in definition order.
func (s *Set) Categories() []string {
	names := make([]string, len(s.defs))
	for i, def := range s.defs {
		names[i] = def.Name
	}
	return names
}

// Definitions returns the normalized definitions in order.
func (s *Set) Definitions() []Definition {
	defs := make([]Definition, len(s.defs))
	copy(defs, s.defs)
	return defs
}

// Extensions returns the normalized extensions for a category, or nil.
func (s *Set) Extensions(category string) []string {
	for _, def := range s.defs {
		if def.Name == category {
			out := make([]string, len(def.Extensions))
			copy(out, def.Extensions)
			return out
		}
	}
	return nil
}

func normalizeExt(raw string) (string, error) {
	ext := strings.ToLower(strings.TrimSpace(raw))
	ext = strings.TrimPrefix(ext, "*")
	if ext == "" || ext == "." {
		return "", fmt.Errorf("empty extension %q", raw)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext, nil
}
