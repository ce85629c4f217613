package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"quickshelf/internal/ports"
)

// barWidth is the cell count of a full histogram bar.
const barWidth = 30

var dashboardDays int

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Summarize organizing activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := GetService().History()

		latest, err := store.LatestRun(ctx)
		if err != nil {
			return err
		}
		if latest == nil {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		fmt.Println(titleStyle.Render("QuickShelf activity"))
		fmt.Println(subtleStyle.Render("last run " + humanize.Time(latest.StartedAt)))
		fmt.Println()

		if err := printCategoryCounts(ctx, store); err != nil {
			return err
		}
		fmt.Println()
		return printActivity(ctx, store)
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardDays, "days", 14, "length of the activity window in days")
	rootCmd.AddCommand(dashboardCmd)
}

func printCategoryCounts(ctx context.Context, store ports.HistoryReader) error {
	counts, err := store.CategoryCounts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("No files moved yet.")
		return nil
	}

	total := 0
	peak := 0
	for _, count := range counts {
		total += count.Files
		if count.Files > peak {
			peak = count.Files
		}
	}

	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{
			count.Category,
			strconv.Itoa(count.Files),
			textBar(count.Files, peak),
		})
	}
	fmt.Println(renderTable([]string{"Category", "Files", ""}, rows, alignLeft, alignRight, alignLeft))
	fmt.Printf("%d files organized in total\n", total)
	return nil
}

func printActivity(ctx context.Context, store ports.HistoryReader) error {
	days, err := store.ActivityByDay(ctx, dashboardDays)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Printf("No activity in the last %d days.\n", dashboardDays)
		return nil
	}

	peak := 0
	for _, day := range days {
		if day.Files > peak {
			peak = day.Files
		}
	}

	rows := make([][]string, 0, len(days))
	for _, day := range days {
		rows = append(rows, []string{
			day.Day,
			strconv.Itoa(day.Files),
			textBar(day.Files, peak),
		})
	}
	fmt.Println(renderTable([]string{"Day", "Files", ""}, rows, alignLeft, alignRight, alignLeft))
	return nil
}

// textBar scales n against the largest value in the series. Any nonzero
// count gets at least one cell.
func textBar(n, peak int) string {
	if n <= 0 || peak <= 0 {
		return ""
	}
	width := n * barWidth / peak
	if width < 1 {
		width = 1
	}
	return successStyle.Render(strings.Repeat("█", width))
}
