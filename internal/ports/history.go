package ports

import (
	"context"
	"time"

	"quickshelf/internal/domain"
)

// HistoryReader exposes the read-only view of the action log consumed by
// dashboards and delivery surfaces.
type HistoryReader interface {
	// AllRuns returns runs in chronological order, most recent last.
	// A limit of 0 returns everything.
	AllRuns(ctx context.Context, limit int) ([]domain.Run, error)

	// LatestRun returns the most recent run, or nil when the log is empty.
	LatestRun(ctx context.Context) (*domain.Run, error)

	// RecentMoves returns successful moves from runs started at or after
	// the cutoff, most recent first.
	RecentMoves(ctx context.Context, since time.Time) ([]domain.RunAction, error)

	// CategoryCounts aggregates successful moves per category.
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)

	// ActivityByDay aggregates successful moves per calendar day over the
	// trailing window.
	ActivityByDay(ctx context.Context, days int) ([]domain.DayCount, error)
}

// HistoryStore is the append-only action log. Only the organizer facade
// writes to it.
type HistoryStore interface {
	HistoryReader

	// Append records a completed run and its actions atomically.
	Append(ctx context.Context, run *domain.Run) error

	Close() error
}
