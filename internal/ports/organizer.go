package ports

import (
	"context"

	"quickshelf/internal/domain"
	"quickshelf/internal/rules"
)

// OrganizerService is the facade contract consumed by delivery surfaces
// (CLI, MCP). It is the only way external collaborators drive the engine.
type OrganizerService interface {
	// Root returns the organized directory.
	Root() string

	// Scan snapshots the desktop without mutating anything.
	Scan(ctx context.Context) (*domain.Snapshot, error)

	// PlanMoves builds a move plan from a snapshot. Pure, no filesystem
	// access.
	PlanMoves(snap *domain.Snapshot) *domain.Plan

	// Preview scans and plans without executing.
	Preview(ctx context.Context) (*domain.Plan, error)

	// Execute attempts every planned action in the plan and records the
	// run. Individual move failures do not abort the run.
	Execute(ctx context.Context, plan *domain.Plan) (*domain.Run, error)

	// Organize runs the full scan, plan, execute, record cycle.
	Organize(ctx context.Context) (*domain.Run, error)

	// Definitions returns the active category rule set in file order.
	Definitions() []rules.Definition

	// RuleWarnings returns duplicate-extension warnings from the last
	// rule load.
	RuleWarnings() []rules.Warning

	// History exposes the read-only action log.
	History() HistoryReader
}
