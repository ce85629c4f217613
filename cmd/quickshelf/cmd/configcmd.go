package cmd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"quickshelf/internal/adapters/editor"
	"quickshelf/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a sample configuration file",
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := configTarget()
		if err != nil {
			return err
		}

		if !configForce {
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("config file already exists at %s (use --force to replace it)", target)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}
		}

		if err := config.CreateSample(target); err != nil {
			return err
		}
		fmt.Printf("Wrote sample configuration to %s\n", target)
		fmt.Println("Edit the [[category]] blocks to choose your own folders.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, exists, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		if exists {
			fmt.Println(subtleStyle.Render("# from " + path))
		} else {
			fmt.Println(subtleStyle.Render("# built-in defaults, no config file found"))
		}
		out, err := toml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file location",
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := configTarget()
		if err != nil {
			return err
		}
		fmt.Println(target)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Open the configuration in your editor",
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := configTarget()
		if err != nil {
			return err
		}
		// Seed a sample on first edit so there is something to work from.
		if _, err := os.Stat(target); os.IsNotExist(err) {
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Printf("Wrote sample configuration to %s\n", target)
		}
		return editor.Open(target)
	},
}

// configTarget resolves the configuration location the same way loading
// does: the --config flag, then $QUICKSHELF_CONFIG, then the default.
func configTarget() (string, error) {
	path := configFlag
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path != "" {
		return config.ExpandPath(path)
	}
	return config.DefaultConfigPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "replace an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}
