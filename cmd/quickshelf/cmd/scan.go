package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"quickshelf/internal/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Preview where desktop files would go",
	Long: `Scan the desktop and show the move each file would get. Nothing is
moved; run "quickshelf organize" to apply the plan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc := GetService()

		snap, err := svc.Scan(ctx)
		if err != nil {
			return err
		}
		printPlanPreview(snap, svc.PlanMoves(snap))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// printPlanPreview renders a plan next to the snapshot it was built from.
// Plan actions mirror snapshot entries one to one, in order.
func printPlanPreview(snap *domain.Snapshot, plan *domain.Plan) {
	if len(plan.Actions) == 0 {
		fmt.Println("Nothing to organize.")
		return
	}

	fmt.Println(titleStyle.Render(snap.Root))

	rows := make([][]string, 0, len(plan.Actions))
	for i, action := range plan.Actions {
		size := ""
		if i < len(snap.Entries) {
			size = humanize.Bytes(uint64(snap.Entries[i].Size))
		}
		rows = append(rows, []string{
			filepath.Base(action.Source),
			size,
			action.Category,
			previewDestination(snap.Root, action),
			previewStatus(action),
		})
	}
	fmt.Println(renderTable(
		[]string{"File", "Size", "Category", "Destination", "Status"},
		rows,
		alignLeft, alignRight, alignLeft, alignLeft, alignLeft,
	))

	for _, action := range plan.Actions {
		if action.Status == domain.StatusFailed {
			line := fmt.Sprintf("cannot move %s: %s", filepath.Base(action.Source), action.Detail)
			fmt.Println(errorStyle.Render(line))
		}
	}

	summary := fmt.Sprintf("%d to move, %d already in place", plan.Pending(), plan.Skipped())
	if failed := plan.Failed(); failed > 0 {
		summary += warningStyle.Render(fmt.Sprintf(", %d blocked", failed))
	}
	fmt.Println(summary)
}

func previewDestination(root string, action domain.MoveAction) string {
	if action.Status == domain.StatusSkipped {
		return subtleStyle.Render("-")
	}
	if rel, err := filepath.Rel(root, action.Destination); err == nil {
		return rel
	}
	return action.Destination
}

func previewStatus(action domain.MoveAction) string {
	switch action.Status {
	case domain.StatusSkipped:
		return subtleStyle.Render("in place")
	case domain.StatusFailed:
		return errorStyle.Render("blocked")
	default:
		return "move"
	}
}
