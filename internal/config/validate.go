package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganizer(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateCategories()
}

func (c *Config) validatePaths() error {
	if c.Paths.DesktopDir == "" {
		return errors.New("paths.desktop_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateOrganizer() error {
	if c.Organizer.RecentDays < 1 {
		return errors.New("organizer.recent_days must be at least 1")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceSeconds < 0 {
		return errors.New("watch.debounce_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return nil
	}
	if _, _, err := c.RuleSet(); err != nil {
		return fmt.Errorf("category blocks: %w", err)
	}
	return nil
}
