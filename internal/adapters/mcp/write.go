package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"quickshelf/internal/ports"
)

// RegisterWriteTools adds the organize tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, svc ports.OrganizerService) {
	s.AddTool(organizeNowTool(), organizeNowHandler(svc))
}

// --- organize_now ---

func organizeNowTool() mcp.Tool {
	return mcp.NewTool("organize_now",
		mcp.WithDescription("Scan the desktop, move files into their category folders, and record the run."),
		mcp.WithBoolean("dry_run",
			mcp.Description("Plan only; do not move anything."),
		),
	)
}

func organizeNowHandler(svc ports.OrganizerService) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if req.GetBool("dry_run", false) {
			plan, err := svc.Preview(ctx)
			if err != nil {
				return toolError(err)
			}
			var sb strings.Builder
			sb.WriteString("Dry run, nothing was moved.\n\n")
			renderPlan(&sb, plan)
			return mcp.NewToolResultText(sb.String()), nil
		}

		run, err := svc.Organize(ctx)
		if err != nil {
			return toolError(err)
		}
		if run.Total() == 0 {
			return mcp.NewToolResultText("Nothing to organize."), nil
		}

		var sb strings.Builder
		renderRun(&sb, run)
		return mcp.NewToolResultText(sb.String()), nil
	}
}
