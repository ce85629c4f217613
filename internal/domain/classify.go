package domain

// Uncategorized is the sentinel category for files no rule matches.
const Uncategorized = "Uncategorized"

// CategoryResolver looks up the category owning an extension.
type CategoryResolver interface {
	Resolve(ext string) (string, bool)
}

// Classify returns the category for a file entry. Files without an
// extension, or with an extension no rule claims, are Uncategorized.
// The result depends only on the entry and the resolver.
func Classify(entry FileEntry, resolver CategoryResolver) string {
	if entry.Ext == "" {
		return Uncategorized
	}
	if name, ok := resolver.Resolve(entry.Ext); ok {
		return name
	}
	return Uncategorized
}
