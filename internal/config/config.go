// Package config loads and validates the QuickShelf configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"quickshelf/internal/rules"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvConfigPath overrides the default configuration file location.
const EnvConfigPath = "QUICKSHELF_CONFIG"

// Error represents an unreadable or invalid configuration file. Callers
// fall back to built-in defaults when they see one.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Paths contains directory configuration.
type Paths struct {
	DesktopDir string `toml:"desktop_dir"`
	DataDir    string `toml:"data_dir"`
}

// Organizer contains scan and history behavior.
type Organizer struct {
	IncludeHidden bool `toml:"include_hidden"`
	RecentDays    int  `toml:"recent_days"`
}

// Watch contains watch-mode behavior.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Category is one user-defined mapping block. Block order in the file is
// significant: when two categories claim the same extension, the later
// block wins.
type Category struct {
	Name       string   `toml:"name"`
	Extensions []string `toml:"extensions"`
}

// Config encapsulates all configuration values for QuickShelf.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Organizer  Organizer  `toml:"organizer"`
	Watch      Watch      `toml:"watch"`
	Logging    Logging    `toml:"logging"`
	Categories []Category `toml:"category"`
}

// DefaultConfigPath returns the absolute path of the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/quickshelf/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is
// not an error: defaults apply and exists is false. Parse and validation
// failures return a *Error so callers can fall back to defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, &Error{Path: path, Err: err}
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, &Error{Path: resolvedPath, Err: fmt.Errorf("open: %w", err)}
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, &Error{Path: resolvedPath, Err: fmt.Errorf("parse: %w", err)}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, &Error{Path: resolvedPath, Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, &Error{Path: resolvedPath, Err: err}
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	desktop, err := expandPath(valueOr(c.Paths.DesktopDir, defaultDesktopDir))
	if err != nil {
		return err
	}
	c.Paths.DesktopDir = desktop

	data, err := expandPath(valueOr(c.Paths.DataDir, defaultDataDir()))
	if err != nil {
		return err
	}
	c.Paths.DataDir = data

	if c.Logging.File != "" {
		logFile, err := expandPath(c.Logging.File)
		if err != nil {
			return err
		}
		c.Logging.File = logFile
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(valueOr(c.Logging.Level, defaultLogLevel)))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(valueOr(c.Logging.Format, defaultLogFormat)))
	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Definitions converts the configured category blocks into rule
// definitions, preserving file order. With no blocks configured the
// built-in defaults apply.
func (c *Config) Definitions() []rules.Definition {
	if len(c.Categories) == 0 {
		return rules.DefaultDefinitions()
	}
	defs := make([]rules.Definition, len(c.Categories))
	for i, cat := range c.Categories {
		defs[i] = rules.Definition{Name: cat.Name, Extensions: cat.Extensions}
	}
	return defs
}

// RuleSet builds the active rule set from the configured mapping.
func (c *Config) RuleSet() (*rules.Set, []rules.Warning, error) {
	return rules.New(c.Definitions())
}

// DatabasePath returns the SQLite history database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the cross-process organize lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "organize.lock")
}

// LogOutputs returns the logger output paths for this configuration: the
// console stream ("stdout" or "stderr") plus the optional log file.
func (c *Config) LogOutputs(console string) []string {
	outputs := []string{console}
	if c.Logging.File != "" {
		outputs = append(outputs, c.Logging.File)
	}
	return outputs
}

// EnsureDataDir creates the data directory when missing.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory %q: %w", c.Paths.DataDir, err)
	}
	return nil
}

// CreateSample writes a commented sample configuration file.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
