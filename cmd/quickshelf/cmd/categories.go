package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the active category rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := GetService()

		rows := make([][]string, 0)
		for _, def := range svc.Definitions() {
			rows = append(rows, []string{def.Name, strings.Join(def.Extensions, " ")})
		}
		fmt.Println(renderTable([]string{"Category", "Extensions"}, rows))

		for _, w := range svc.RuleWarnings() {
			line := fmt.Sprintf("warning: %s is claimed by %s and %s; %s wins",
				w.Extension, w.Shadowed, w.Kept, w.Kept)
			fmt.Println(warningStyle.Render(line))
		}

		if cfgExists && len(GetConfig().Categories) > 0 {
			fmt.Println(subtleStyle.Render("from " + cfgPath))
		} else {
			fmt.Println(subtleStyle.Render("built-in defaults; run \"quickshelf config init\" to customize"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
