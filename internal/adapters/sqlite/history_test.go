package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quickshelf/internal/domain"
)

func openHistory(t *testing.T) *History {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func makeRun(id string, started time.Time, actions ...domain.MoveAction) *domain.Run {
	return &domain.Run{
		ID:         id,
		Root:       "/home/test/Desktop",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Actions:    actions,
	}
}

func succeededMove(name, category string) domain.MoveAction {
	return domain.MoveAction{
		Source:      "/home/test/Desktop/" + name,
		Destination: "/home/test/Desktop/" + category + "/" + name,
		Category:    category,
		Status:      domain.StatusSucceeded,
	}
}

func TestAppendAndAllRuns(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	first := makeRun("run-1", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		succeededMove("a.pdf", "Documents"),
		succeededMove("b.jpg", "Images"),
		domain.MoveAction{
			Source:      "/home/test/Desktop/c.txt",
			Destination: "/home/test/Desktop/Documents/c.txt",
			Category:    "Documents",
			Status:      domain.StatusFailed,
			Reason:      domain.ReasonMoveIOError,
			Detail:      "permission denied",
		},
	)
	second := makeRun("run-2", time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
		succeededMove("d.pdf", "Documents"),
	)

	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append(first) failed: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append(second) failed: %v", err)
	}

	runs, err := store.AllRuns(ctx, 0)
	if err != nil {
		t.Fatalf("AllRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-1" || runs[1].ID != "run-2" {
		t.Errorf("runs out of chronological order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[0].StartedAt.Equal(first.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", runs[0].StartedAt, first.StartedAt)
	}
	if !runs[0].FinishedAt.Equal(first.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", runs[0].FinishedAt, first.FinishedAt)
	}

	if len(runs[0].Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(runs[0].Actions))
	}
	failed := runs[0].Actions[2]
	if failed.Status != domain.StatusFailed {
		t.Errorf("Status = %q, want failed", failed.Status)
	}
	if failed.Reason != domain.ReasonMoveIOError {
		t.Errorf("Reason = %q, want %q", failed.Reason, domain.ReasonMoveIOError)
	}
	if failed.Detail != "permission denied" {
		t.Errorf("Detail = %q", failed.Detail)
	}
	if runs[0].Succeeded() != 2 || runs[0].Failed() != 1 {
		t.Errorf("counts: succeeded=%d failed=%d", runs[0].Succeeded(), runs[0].Failed())
	}
}

func TestAllRunsLimit(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := makeRun(id, base.Add(time.Duration(i)*time.Hour), succeededMove("a.pdf", "Documents"))
		if err := store.Append(ctx, run); err != nil {
			t.Fatalf("Append(%s) failed: %v", id, err)
		}
	}

	runs, err := store.AllRuns(ctx, 2)
	if err != nil {
		t.Fatalf("AllRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// The two most recent, oldest of the pair first.
	if runs[0].ID != "run-2" || runs[1].ID != "run-3" {
		t.Errorf("got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestAppendRejectsDuplicateRunID(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	run := makeRun("run-1", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		succeededMove("a.pdf", "Documents"))
	if err := store.Append(ctx, run); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if err := store.Append(ctx, run); err == nil {
		t.Fatal("expected error appending duplicate run ID")
	}
}

func TestLatestRun(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun on empty store failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil run on empty store, got %+v", latest)
	}

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store.Append(ctx, makeRun("run-1", base, succeededMove("a.pdf", "Documents")))
	store.Append(ctx, makeRun("run-2", base.Add(time.Hour), succeededMove("b.jpg", "Images")))

	latest, err = store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if latest == nil || latest.ID != "run-2" {
		t.Errorf("LatestRun = %+v, want run-2", latest)
	}
}

func TestRecentMoves(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	old := makeRun("run-old", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		succeededMove("old.pdf", "Documents"))
	recent := makeRun("run-new", time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
		succeededMove("new.pdf", "Documents"),
		domain.MoveAction{
			Source:      "/home/test/Desktop/x.txt",
			Destination: "/home/test/Desktop/Documents/x.txt",
			Category:    "Documents",
			Status:      domain.StatusSkipped,
		},
	)
	store.Append(ctx, old)
	store.Append(ctx, recent)

	moves, err := store.RecentMoves(ctx, time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RecentMoves failed: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d: %+v", len(moves), moves)
	}
	move := moves[0]
	if move.RunID != "run-new" {
		t.Errorf("RunID = %q", move.RunID)
	}
	if !strings.HasSuffix(move.Source, "new.pdf") {
		t.Errorf("Source = %q", move.Source)
	}
	if !move.MovedAt.Equal(recent.FinishedAt) {
		t.Errorf("MovedAt = %v, want %v", move.MovedAt, recent.FinishedAt)
	}

	// Zero cutoff returns every successful move, newest run first.
	moves, err = store.RecentMoves(ctx, time.Time{})
	if err != nil {
		t.Fatalf("RecentMoves failed: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[0].RunID != "run-new" || moves[1].RunID != "run-old" {
		t.Errorf("got order %s, %s", moves[0].RunID, moves[1].RunID)
	}
}

func TestCategoryCounts(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	run := makeRun("run-1", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		succeededMove("a.pdf", "Documents"),
		succeededMove("b.pdf", "Documents"),
		succeededMove("c.jpg", "Images"),
		domain.MoveAction{
			Source:      "/home/test/Desktop/d.txt",
			Destination: "/home/test/Desktop/Documents/d.txt",
			Category:    "Documents",
			Status:      domain.StatusFailed,
			Reason:      domain.ReasonMoveIOError,
		},
	)
	if err := store.Append(ctx, run); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	counts, err := store.CategoryCounts(ctx)
	if err != nil {
		t.Fatalf("CategoryCounts failed: %v", err)
	}
	want := []domain.CategoryCount{
		{Category: "Documents", Files: 2},
		{Category: "Images", Files: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %d categories, got %d: %+v", len(want), len(counts), counts)
	}
	for i, c := range counts {
		if c != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestActivityByDay(t *testing.T) {
	store := openHistory(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recent := makeRun("run-recent", now.Add(-time.Hour),
		succeededMove("a.pdf", "Documents"),
		succeededMove("b.jpg", "Images"))
	old := makeRun("run-old", now.AddDate(0, 0, -40),
		succeededMove("ancient.pdf", "Documents"))
	store.Append(ctx, recent)
	store.Append(ctx, old)

	activity, err := store.ActivityByDay(ctx, 7)
	if err != nil {
		t.Fatalf("ActivityByDay failed: %v", err)
	}
	if len(activity) != 1 {
		t.Fatalf("expected 1 active day, got %d: %+v", len(activity), activity)
	}
	wantDay := recent.StartedAt.Format("2006-01-02")
	if activity[0].Day != wantDay {
		t.Errorf("Day = %q, want %q", activity[0].Day, wantDay)
	}
	if activity[0].Files != 2 {
		t.Errorf("Files = %d, want 2", activity[0].Files)
	}

	if _, err := store.ActivityByDay(ctx, 0); err == nil {
		t.Error("expected error for zero-day window")
	}
}
