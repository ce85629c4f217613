package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultDesktopDir      = "~/Desktop"
	defaultRecentDays      = 7
	defaultDebounceSeconds = 2
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "quickshelf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/quickshelf"
	}
	return filepath.Join(home, ".local", "share", "quickshelf")
}

// Default returns the built-in configuration. Category blocks are left
// empty so the built-in rule definitions apply.
func Default() Config {
	return Config{
		Paths: Paths{
			DesktopDir: defaultDesktopDir,
			DataDir:    defaultDataDir(),
		},
		Organizer: Organizer{
			IncludeHidden: false,
			RecentDays:    defaultRecentDays,
		},
		Watch: Watch{
			DebounceSeconds: defaultDebounceSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// Fallback returns the normalized built-in configuration. Callers use it
// when the on-disk file cannot be loaded.
func Fallback() *Config {
	cfg := Default()
	// normalize only fails when the home directory cannot be resolved;
	// the unexpanded values still work for error reporting.
	_ = cfg.normalize()
	return &cfg
}
