package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"quickshelf/internal/adapters/filesystem"
	"quickshelf/internal/domain"
	"quickshelf/internal/rules"
)

type fakeDesktop struct {
	root     string
	snap     *domain.Snapshot
	scanErr  error
	scanCats []string         // categories passed to the last Scan
	failOn   map[string]error // source path -> move error
	moved    []string         // "src -> dst" in call order
}

func (d *fakeDesktop) Root() string { return d.root }

func (d *fakeDesktop) Scan(ctx context.Context, categories []string) (*domain.Snapshot, error) {
	d.scanCats = categories
	if d.scanErr != nil {
		return nil, d.scanErr
	}
	return d.snap, nil
}

func (d *fakeDesktop) Move(src, dst string) error {
	if err := d.failOn[src]; err != nil {
		return err
	}
	d.moved = append(d.moved, src+" -> "+dst)
	return nil
}

type fakeHistory struct {
	runs      []domain.Run
	appendErr error
}

func (h *fakeHistory) Append(ctx context.Context, run *domain.Run) error {
	if h.appendErr != nil {
		return h.appendErr
	}
	h.runs = append(h.runs, *run)
	return nil
}

func (h *fakeHistory) AllRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return h.runs, nil
}

func (h *fakeHistory) LatestRun(ctx context.Context) (*domain.Run, error) {
	if len(h.runs) == 0 {
		return nil, nil
	}
	return &h.runs[len(h.runs)-1], nil
}

func (h *fakeHistory) RecentMoves(ctx context.Context, since time.Time) ([]domain.RunAction, error) {
	return nil, nil
}

func (h *fakeHistory) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	return nil, nil
}

func (h *fakeHistory) ActivityByDay(ctx context.Context, days int) ([]domain.DayCount, error) {
	return nil, nil
}

func (h *fakeHistory) Close() error { return nil }

func testRules(t *testing.T) *rules.Set {
	t.Helper()
	set, _, err := rules.New([]rules.Definition{
		{Name: "Documents", Extensions: []string{".pdf"}},
		{Name: "Images", Extensions: []string{".jpg"}},
	})
	if err != nil {
		t.Fatalf("failed to build rules: %v", err)
	}
	return set
}

func rootSnapshot(root string, names ...string) *domain.Snapshot {
	snap := &domain.Snapshot{
		Root:         root,
		TakenAt:      time.Now(),
		Occupied:     map[string]map[string]bool{},
		RootChildren: map[string]bool{},
	}
	for _, name := range names {
		snap.Entries = append(snap.Entries, domain.FileEntry{
			Path: filepath.Join(root, name),
			Name: name,
			Ext:  filepath.Ext(name),
		})
		snap.RootChildren[name] = false
	}
	return snap
}

func newTestOrganizer(t *testing.T, desktop *fakeDesktop, history *fakeHistory) *Organizer {
	t.Helper()
	org, err := New(Options{
		Desktop: desktop,
		History: history,
		Rules:   testRules(t),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return org
}

func TestOrganize_MovesAndRecords(t *testing.T) {
	desktop := &fakeDesktop{
		root: "/desk",
		snap: rootSnapshot("/desk", "a.pdf", "b.jpg", "c.txt"),
	}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	run, err := org.Organize(context.Background())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}

	if run.ID == "" {
		t.Error("run ID must be set")
	}
	if run.Succeeded() != 3 || run.Failed() != 0 || run.Skipped() != 0 {
		t.Errorf("counts: succeeded=%d failed=%d skipped=%d",
			run.Succeeded(), run.Failed(), run.Skipped())
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}

	wantMoves := []string{
		"/desk/a.pdf -> /desk/Documents/a.pdf",
		"/desk/b.jpg -> /desk/Images/b.jpg",
		"/desk/c.txt -> /desk/Uncategorized/c.txt",
	}
	if len(desktop.moved) != len(wantMoves) {
		t.Fatalf("moves = %v", desktop.moved)
	}
	for i, want := range wantMoves {
		if desktop.moved[i] != want {
			t.Errorf("move[%d] = %q, want %q", i, desktop.moved[i], want)
		}
	}

	if len(history.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(history.runs))
	}
	if history.runs[0].ID != run.ID {
		t.Error("recorded run ID mismatch")
	}
	if got := org.Phase(); got != PhaseDone {
		t.Errorf("Phase = %q, want %q", got, PhaseDone)
	}
}

func TestOrganize_PartialFailure(t *testing.T) {
	desktop := &fakeDesktop{
		root:   "/desk",
		snap:   rootSnapshot("/desk", "a.pdf", "b.jpg", "c.txt"),
		failOn: map[string]error{"/desk/b.jpg": errors.New("permission denied")},
	}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	run, err := org.Organize(context.Background())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}

	if run.Succeeded() != 2 || run.Failed() != 1 {
		t.Errorf("counts: succeeded=%d failed=%d", run.Succeeded(), run.Failed())
	}
	if run.Total() != 3 {
		t.Errorf("all actions must be recorded, got %d", run.Total())
	}

	var failed *domain.MoveAction
	for i := range run.Actions {
		if run.Actions[i].Status == domain.StatusFailed {
			failed = &run.Actions[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed action recorded")
	}
	if failed.Reason != domain.ReasonMoveIOError {
		t.Errorf("Reason = %q, want %q", failed.Reason, domain.ReasonMoveIOError)
	}
	if failed.Detail != "permission denied" {
		t.Errorf("Detail = %q", failed.Detail)
	}

	// The failure must not stop the later move.
	if len(desktop.moved) != 2 {
		t.Errorf("moved = %v", desktop.moved)
	}
	if len(history.runs) != 1 {
		t.Errorf("partially failed runs are still recorded")
	}
	if got := org.Phase(); got != PhaseDone {
		t.Errorf("Phase = %q, want %q", got, PhaseDone)
	}
}

func TestOrganize_ScanFailure(t *testing.T) {
	desktop := &fakeDesktop{
		root:    "/desk",
		scanErr: errors.New("no such directory"),
	}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	_, err := org.Organize(context.Background())
	if err == nil {
		t.Fatal("expected scan error")
	}

	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("expected *ScanError, got %T: %v", err, err)
	}
	if scanErr.Root != "/desk" {
		t.Errorf("Root = %q", scanErr.Root)
	}

	if len(history.runs) != 0 {
		t.Error("failed scans must leave the history untouched")
	}
	if len(desktop.moved) != 0 {
		t.Error("failed scans must not move anything")
	}
	if got := org.Phase(); got != PhaseFailed {
		t.Errorf("Phase = %q, want %q", got, PhaseFailed)
	}
}

func TestScan_IncludesUncategorizedFolder(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk")}
	org := newTestOrganizer(t, desktop, &fakeHistory{})

	if _, err := org.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"Documents", "Images", domain.Uncategorized}
	if !reflect.DeepEqual(desktop.scanCats, want) {
		t.Errorf("scanned categories = %v, want %v", desktop.scanCats, want)
	}
}

func TestOrganize_ReusesExistingUncategorizedFolder(t *testing.T) {
	root := t.TempDir()
	write := func(path string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", path, err)
		}
	}
	// A leftover from an earlier run shares its name with a fresh root file.
	write(filepath.Join(root, domain.Uncategorized, "c.txt"))
	write(filepath.Join(root, "c.txt"))

	desktop, err := filesystem.NewDesktop(root, false)
	if err != nil {
		t.Fatalf("NewDesktop failed: %v", err)
	}
	history := &fakeHistory{}
	org, err := New(Options{
		Desktop: desktop,
		History: history,
		Rules:   testRules(t),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	run, err := org.Organize(context.Background())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	if run.Succeeded() != 1 || run.Failed() != 0 || run.Skipped() != 1 {
		t.Fatalf("counts: succeeded=%d failed=%d skipped=%d",
			run.Succeeded(), run.Failed(), run.Skipped())
	}
	renamed := filepath.Join(root, domain.Uncategorized, "c (1).txt")
	if _, err := os.Stat(renamed); err != nil {
		t.Errorf("root c.txt should land at %s: %v", renamed, err)
	}

	// The second run over the unchanged tree only skips.
	run, err = org.Organize(context.Background())
	if err != nil {
		t.Fatalf("second Organize failed: %v", err)
	}
	if run.Skipped() != 2 || run.Succeeded() != 0 || run.Failed() != 0 {
		t.Errorf("second run counts: succeeded=%d failed=%d skipped=%d",
			run.Succeeded(), run.Failed(), run.Skipped())
	}
}

func TestOrganize_SecondRunSkipsEverything(t *testing.T) {
	// Snapshot as it looks after a successful run: files already inside
	// their category directories.
	snap := &domain.Snapshot{
		Root: "/desk",
		Entries: []domain.FileEntry{
			{Path: "/desk/Documents/a.pdf", Name: "a.pdf", Ext: ".pdf"},
			{Path: "/desk/Images/b.jpg", Name: "b.jpg", Ext: ".jpg"},
		},
		Occupied: map[string]map[string]bool{
			"Documents": {"a.pdf": true},
			"Images":    {"b.jpg": true},
		},
		RootChildren: map[string]bool{"Documents": true, "Images": true},
	}
	desktop := &fakeDesktop{root: "/desk", snap: snap}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	run, err := org.Organize(context.Background())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}

	if run.Skipped() != 2 || run.Succeeded() != 0 {
		t.Errorf("counts: skipped=%d succeeded=%d", run.Skipped(), run.Succeeded())
	}
	if len(desktop.moved) != 0 {
		t.Errorf("no filesystem calls expected, got %v", desktop.moved)
	}
	// Skip-only runs still land in the history so the log stays complete.
	if len(history.runs) != 1 {
		t.Errorf("expected 1 recorded run, got %d", len(history.runs))
	}
}

func TestExecute_EmptyPlanIsNotRecorded(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk")}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	run, err := org.Organize(context.Background())
	if err != nil {
		t.Fatalf("Organize failed: %v", err)
	}
	if run.Total() != 0 {
		t.Errorf("expected empty run, got %d actions", run.Total())
	}
	if len(history.runs) != 0 {
		t.Error("empty runs must not be appended")
	}
}

func TestExecute_AppendFailureStillReturnsRun(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.pdf")}
	history := &fakeHistory{appendErr: errors.New("disk full")}
	org := newTestOrganizer(t, desktop, history)

	run, err := org.Organize(context.Background())
	if err == nil {
		t.Fatal("expected append error")
	}
	if run == nil {
		t.Fatal("the completed run must be returned alongside the error")
	}
	if run.Succeeded() != 1 {
		t.Errorf("Succeeded = %d, want 1", run.Succeeded())
	}
}

func TestExecute_RefusesConcurrentRun(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "organize.lock")

	held := flock.New(lockPath)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.pdf")}
	history := &fakeHistory{}
	org, err := New(Options{
		Desktop:  desktop,
		History:  history,
		Rules:    testRules(t),
		LockPath: lockPath,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = org.Organize(context.Background())
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(desktop.moved) != 0 {
		t.Error("no moves may happen while the lock is held")
	}
	if len(history.runs) != 0 {
		t.Error("refused runs must not be recorded")
	}
}

func TestExecute_ReportsProgress(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.pdf", "b.jpg")}
	history := &fakeHistory{}

	var calls [][2]int
	org, err := New(Options{
		Desktop: desktop,
		History: history,
		Rules:   testRules(t),
		Progress: func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := org.Organize(context.Background()); err != nil {
		t.Fatalf("Organize failed: %v", err)
	}

	want := [][2]int{{1, 2}, {2, 2}}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestScan_ReloadsRules(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.xyz")}
	history := &fakeHistory{}

	reloaded, _, err := rules.New([]rules.Definition{
		{Name: "Stuff", Extensions: []string{".xyz"}},
	})
	if err != nil {
		t.Fatalf("failed to build rules: %v", err)
	}

	org, err := New(Options{
		Desktop:     desktop,
		History:     history,
		Rules:       testRules(t),
		ReloadRules: func() (*rules.Set, []rules.Warning, error) { return reloaded, nil, nil },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	plan, err := org.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(plan.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(plan.Actions))
	}
	if plan.Actions[0].Category != "Stuff" {
		t.Errorf("Category = %q, edits must apply at scan time", plan.Actions[0].Category)
	}

	defs := org.Definitions()
	if len(defs) != 1 || defs[0].Name != "Stuff" {
		t.Errorf("Definitions = %+v", defs)
	}
}

func TestScan_ReloadFailureFallsBackToDefaults(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.pdf")}
	history := &fakeHistory{}

	org, err := New(Options{
		Desktop: desktop,
		History: history,
		Rules:   testRules(t),
		ReloadRules: func() (*rules.Set, []rules.Warning, error) {
			return nil, nil, fmt.Errorf("config unreadable")
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := org.Scan(context.Background()); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := rules.Default().Categories()
	got := make([]string, 0, len(want))
	for _, def := range org.Definitions() {
		got = append(got, def.Name)
	}
	if len(got) != len(want) {
		t.Fatalf("expected default categories after failed reload, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPreview_DoesNotTouchHistoryOrFilesystem(t *testing.T) {
	desktop := &fakeDesktop{root: "/desk", snap: rootSnapshot("/desk", "a.pdf", "b.jpg")}
	history := &fakeHistory{}
	org := newTestOrganizer(t, desktop, history)

	plan, err := org.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if plan.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", plan.Pending())
	}
	if len(desktop.moved) != 0 {
		t.Error("preview must never move files")
	}
	if len(history.runs) != 0 {
		t.Error("preview must never write history")
	}
	if got := org.Phase(); got != PhasePlanning {
		t.Errorf("Phase = %q, want %q", got, PhasePlanning)
	}
}
