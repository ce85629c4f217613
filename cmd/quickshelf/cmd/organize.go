package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"quickshelf/internal/domain"
)

// progressThreshold is the minimum number of pending moves before a
// progress bar is worth drawing.
const progressThreshold = 10

var (
	organizeDryRun bool

	progressEnabled bool
	progressBar     *progressbar.ProgressBar
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Move desktop files into their category folders",
	Long: `Scan the desktop, plan moves, and carry them out. Files whose
destination name is already taken get " (1)", " (2)", ... appended before
the extension. Every run that touches a file is recorded in the history
database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc := GetService()

		if organizeDryRun {
			snap, err := svc.Scan(ctx)
			if err != nil {
				return err
			}
			fmt.Println(subtleStyle.Render("Dry run, nothing will be moved."))
			printPlanPreview(snap, svc.PlanMoves(snap))
			return nil
		}

		progressEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		run, err := svc.Organize(ctx)
		finishProgress()
		if err != nil {
			if run == nil {
				return err
			}
			// The run finished but recording it failed. Show the result anyway.
			fmt.Fprintln(os.Stderr, warningStyle.Render("warning: "+err.Error()))
		}
		printRunResult(run)
		return nil
	},
}

func init() {
	organizeCmd.Flags().BoolVar(&organizeDryRun, "dry-run", false, "show the plan without moving anything")
	rootCmd.AddCommand(organizeCmd)
}

// moveProgress is the organizer's progress callback. The bar is created on
// the first report, once the total is known, and only when stdout is a
// terminal and the run is big enough to watch.
func moveProgress(completed, total int) {
	if !progressEnabled || total < progressThreshold {
		return
	}
	if progressBar == nil {
		progressBar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Moving files"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
	}
	_ = progressBar.Add(1)
}

func finishProgress() {
	progressEnabled = false
	progressBar = nil
}

func printRunResult(run *domain.Run) {
	if run.Total() == 0 {
		fmt.Println("Nothing to organize.")
		return
	}

	rows := make([][]string, 0, len(run.Actions))
	for _, action := range run.Actions {
		rows = append(rows, []string{
			filepath.Base(action.Source),
			previewDestination(run.Root, action),
			runResult(action),
		})
	}
	fmt.Println(renderTable([]string{"File", "Destination", "Result"}, rows))

	parts := []string{successStyle.Render(fmt.Sprintf("%d moved", run.Succeeded()))}
	if failed := run.Failed(); failed > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if skipped := run.Skipped(); skipped > 0 {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("%d already in place", skipped)))
	}
	fmt.Println(strings.Join(parts, ", "))
}

func runResult(action domain.MoveAction) string {
	switch action.Status {
	case domain.StatusSucceeded:
		return successStyle.Render("moved")
	case domain.StatusFailed:
		return errorStyle.Render("failed: " + action.Detail)
	case domain.StatusSkipped:
		return subtleStyle.Render("in place")
	default:
		return string(action.Status)
	}
}
