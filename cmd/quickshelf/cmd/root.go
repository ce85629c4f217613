package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quickshelf/internal/adapters/filesystem"
	"quickshelf/internal/adapters/sqlite"
	"quickshelf/internal/application"
	"quickshelf/internal/config"
	"quickshelf/internal/logging"
	"quickshelf/internal/ports"
	"quickshelf/internal/rules"
)

var (
	configFlag  string
	desktopFlag string

	cfg       *config.Config
	cfgPath   string
	cfgExists bool
	logger    *slog.Logger
	history   *sqlite.History
	service   ports.OrganizerService
)

var rootCmd = &cobra.Command{
	Use:   "quickshelf",
	Short: "Keep your desktop tidy",
	Long: `quickshelf scans a desktop folder, classifies files by extension
against a user-editable category mapping, and moves them into category
subfolders. Every run is recorded so past moves stay visible.

Scanning never touches your files; only "organize" and "watch" move
anything.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help and standalone commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if parent := cmd.Parent(); parent != nil && parent.Name() == "completion" {
			return nil
		}
		if cmd.Annotations["standalone"] == "true" {
			return nil
		}
		return initServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if history != nil {
			return history.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&desktopFlag, "desktop", "d", "", "desktop folder to organize (overrides config)")
}

func initServices() error {
	loaded, path, exists, err := config.Load(configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, falling back to defaults\n", err)
		loaded = config.Fallback()
	}
	cfg, cfgPath, cfgExists = loaded, path, exists

	if desktopFlag != "" {
		desktop, err := config.ExpandPath(desktopFlag)
		if err != nil {
			return err
		}
		cfg.Paths.DesktopDir = desktop
	}

	// Logs go to stderr so tables and plans own stdout.
	logger, err = logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.LogOutputs("stderr"),
	})
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	history, err = sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	ruleSet, warnings, err := cfg.RuleSet()
	if err != nil {
		logger.Warn("category rules invalid, using built-in defaults", logging.Error(err))
		ruleSet, warnings = rules.Default(), nil
	}

	desktop, err := filesystem.NewDesktop(cfg.Paths.DesktopDir, cfg.Organizer.IncludeHidden)
	if err != nil {
		return err
	}

	organizer, err := application.New(application.Options{
		Desktop:  desktop,
		History:  history,
		Rules:    ruleSet,
		Warnings: warnings,
		Logger:   logger,
		LockPath: cfg.LockPath(),
		Progress: moveProgress,
		ReloadRules: func() (*rules.Set, []rules.Warning, error) {
			fresh, _, _, err := config.Load(configFlag)
			if err != nil {
				return nil, nil, err
			}
			return fresh.RuleSet()
		},
	})
	if err != nil {
		return err
	}
	service = organizer
	return nil
}

// GetService returns the initialized organizer facade
func GetService() ports.OrganizerService {
	return service
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
