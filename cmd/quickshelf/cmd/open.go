package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quickshelf/internal/adapters/launcher"
	"quickshelf/internal/rules"
)

var openCmd = &cobra.Command{
	Use:   "open [category]",
	Short: "Reveal the desktop or a category folder in the file browser",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := GetService()

		target := svc.Root()
		if len(args) == 1 {
			name, ok := matchCategory(svc.Definitions(), args[0])
			if !ok {
				return fmt.Errorf("unknown category %q, see \"quickshelf categories\"", args[0])
			}
			target = filepath.Join(svc.Root(), name)
		}

		if _, err := os.Stat(target); os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist yet; nothing has been organized into it", target)
		}
		return launcher.Reveal(target)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

// matchCategory resolves a category name case-insensitively so "documents"
// finds "Documents".
func matchCategory(defs []rules.Definition, name string) (string, bool) {
	for _, def := range defs {
		if strings.EqualFold(def.Name, name) {
			return def.Name, true
		}
	}
	return "", false
}
