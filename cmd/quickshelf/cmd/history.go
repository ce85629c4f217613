package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"quickshelf/internal/domain"
)

var (
	historyLimit int
	historyLast  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past organize runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store := GetService().History()

		if historyLast {
			run, err := store.LatestRun(ctx)
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Println("No runs recorded yet.")
				return nil
			}
			printRunDetail(run)
			return nil
		}

		runs, err := store.AllRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		// AllRuns is chronological; show the newest run first.
		rows := make([][]string, 0, len(runs))
		for i := len(runs) - 1; i >= 0; i-- {
			run := runs[i]
			rows = append(rows, []string{
				run.StartedAt.Local().Format("2006-01-02 15:04"),
				shortID(run.ID),
				strconv.Itoa(run.Succeeded()),
				strconv.Itoa(run.Failed()),
				strconv.Itoa(run.Skipped()),
			})
		}
		fmt.Println(renderTable(
			[]string{"Started", "Run", "Moved", "Failed", "In place"},
			rows,
			alignLeft, alignLeft, alignRight, alignRight, alignRight,
		))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most this many runs (0 = all)")
	historyCmd.Flags().BoolVar(&historyLast, "last", false, "show every action of the most recent run")
	rootCmd.AddCommand(historyCmd)
}

func printRunDetail(run *domain.Run) {
	fmt.Println(titleStyle.Render("Run " + shortID(run.ID)))
	started := fmt.Sprintf("%s, %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	fmt.Println(subtleStyle.Render(started))

	rows := make([][]string, 0, len(run.Actions))
	for _, action := range run.Actions {
		rows = append(rows, []string{
			filepath.Base(action.Source),
			previewDestination(run.Root, action),
			runResult(action),
		})
	}
	fmt.Println(renderTable([]string{"File", "Destination", "Result"}, rows))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
