package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var recentDays int

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently organized files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		days := recentDays
		if days <= 0 {
			days = GetConfig().Organizer.RecentDays
		}
		since := time.Now().AddDate(0, 0, -days)

		moves, err := GetService().History().RecentMoves(ctx, since)
		if err != nil {
			return err
		}
		if len(moves) == 0 {
			fmt.Printf("No files organized in the last %d days.\n", days)
			return nil
		}

		rows := make([][]string, 0, len(moves))
		for _, move := range moves {
			rows = append(rows, []string{
				humanize.Time(move.MovedAt),
				filepath.Base(move.Source),
				move.Category,
			})
		}
		fmt.Println(renderTable([]string{"When", "File", "Category"}, rows))
		return nil
	},
}

func init() {
	recentCmd.Flags().IntVar(&recentDays, "days", 0, "look back this many days (default from config)")
	rootCmd.AddCommand(recentCmd)
}
