package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"quickshelf/internal/domain"
	"quickshelf/internal/ports"
)

// RegisterReadTools adds all read-only organizer tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc ports.OrganizerService) {
	s.AddTool(scanPreviewTool(), scanPreviewHandler(svc))
	s.AddTool(listCategoriesTool(), listCategoriesHandler(svc))
	s.AddTool(historyTool(), historyHandler(svc))
	s.AddTool(recentFilesTool(), recentFilesHandler(svc))
}

// --- scan_preview ---

func scanPreviewTool() mcp.Tool {
	return mcp.NewTool("scan_preview",
		mcp.WithDescription("Scan the desktop and show the move plan without touching any file."),
	)
}

func scanPreviewHandler(svc ports.OrganizerService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		plan, err := svc.Preview(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Desktop: %s\n\n", svc.Root())
		renderPlan(&sb, plan)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_categories ---

func listCategoriesTool() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List the active category rules: category name followed by its extensions."),
	)
}

func listCategoriesHandler(svc ports.OrganizerService) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		for _, def := range svc.Definitions() {
			fmt.Fprintf(&sb, "%s: %s\n", def.Name, strings.Join(def.Extensions, " "))
		}
		for _, w := range svc.RuleWarnings() {
			fmt.Fprintf(&sb, "warning: %s is claimed by %s and %s; %s wins\n",
				w.Extension, w.Shadowed, w.Kept, w.Kept)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("Show past organize runs, most recent last."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to return. Omit or 0 for all."),
		),
	)
}

func historyHandler(svc ports.OrganizerService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 0)

		runs, err := svc.History().AllRuns(ctx, limit)
		if err != nil {
			return toolError(err)
		}
		if len(runs) == 0 {
			return mcp.NewToolResultText("No runs recorded yet."), nil
		}

		var sb strings.Builder
		for _, run := range runs {
			fmt.Fprintf(&sb, "%s  %s  %d succeeded, %d failed, %d skipped\n",
				run.StartedAt.Format(time.RFC3339), run.ID,
				run.Succeeded(), run.Failed(), run.Skipped())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- recent_files ---

func recentFilesTool() mcp.Tool {
	return mcp.NewTool("recent_files",
		mcp.WithDescription("List files organized in the trailing window."),
		mcp.WithNumber("days",
			mcp.Description("Window size in days (default 7)"),
		),
	)
}

func recentFilesHandler(svc ports.OrganizerService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := req.GetInt("days", 7)
		if days < 1 {
			return toolError(fmt.Errorf("days must be at least 1, got %d", days))
		}

		since := time.Now().UTC().AddDate(0, 0, -days)
		moves, err := svc.History().RecentMoves(ctx, since)
		if err != nil {
			return toolError(err)
		}
		if len(moves) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No files organized in the last %d days.", days)), nil
		}

		var sb strings.Builder
		for _, move := range moves {
			fmt.Fprintf(&sb, "%s  %s -> %s\n",
				move.MovedAt.Format("2006-01-02 15:04"),
				filepath.Base(move.Source), move.Category)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func renderPlan(sb *strings.Builder, plan *domain.Plan) {
	fmt.Fprintf(sb, "%d to move, %d skipped, %d failed\n",
		plan.Pending(), plan.Skipped(), plan.Failed())
	for _, action := range plan.Actions {
		renderAction(sb, plan.Root, action)
	}
}

func renderRun(sb *strings.Builder, run *domain.Run) {
	fmt.Fprintf(sb, "run %s\n%d succeeded, %d failed, %d skipped\n",
		run.ID, run.Succeeded(), run.Failed(), run.Skipped())
	for _, action := range run.Actions {
		renderAction(sb, run.Root, action)
	}
}

func renderAction(sb *strings.Builder, root string, action domain.MoveAction) {
	switch action.Status {
	case domain.StatusPlanned:
		fmt.Fprintf(sb, "move  %s -> %s\n",
			relPath(root, action.Source), relPath(root, action.Destination))
	case domain.StatusSucceeded:
		fmt.Fprintf(sb, "moved  %s -> %s\n",
			relPath(root, action.Source), relPath(root, action.Destination))
	case domain.StatusSkipped:
		fmt.Fprintf(sb, "skip  %s (already in %s)\n",
			relPath(root, action.Source), action.Category)
	case domain.StatusFailed:
		fmt.Fprintf(sb, "fail  %s: %s\n",
			relPath(root, action.Source), action.Detail)
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
