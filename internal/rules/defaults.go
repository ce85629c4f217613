package rules

// DefaultDefinitions returns the built-in category mapping used when no
// configuration file exists or the configured mapping is unusable.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf"}},
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".heic"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mov", ".avi", ".mkv"}},
		{Name: "Music", Extensions: []string{".mp3", ".m4a", ".wav", ".flac"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz"}},
		{Name: "Applications", Extensions: []string{".app", ".dmg", ".pkg"}},
		{Name: "Spreadsheets", Extensions: []string{".xls", ".xlsx", ".csv"}},
		{Name: "Presentations", Extensions: []string{".ppt", ".pptx", ".key"}},
		{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".json"}},
	}
}

// Default builds the set for DefaultDefinitions.
func Default() *Set {
	set, _, err := New(DefaultDefinitions())
	if err != nil {
		panic("rules: built-in definitions invalid: " + err.Error())
	}
	return set
}
