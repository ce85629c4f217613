package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"quickshelf/internal/domain"
	"quickshelf/internal/logging"
	"quickshelf/internal/ports"
	"quickshelf/internal/rules"
)

// Phase identifies where the organizer is in its scan, plan, execute
// cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseScanning  Phase = "scanning"
	PhasePlanning  Phase = "planning"
	PhaseExecuting Phase = "executing"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// Options configures an Organizer.
type Options struct {
	Desktop  ports.Desktop
	History  ports.HistoryStore
	Rules    *rules.Set
	Warnings []rules.Warning
	Logger   *slog.Logger

	// LockPath, when set, enables a cross-process lock so two organize
	// runs never race over the same desktop.
	LockPath string

	// ReloadRules, when set, is consulted at the start of every scan so
	// configuration edits take effect without a restart. A failed reload
	// falls back to the built-in defaults.
	ReloadRules func() (*rules.Set, []rules.Warning, error)

	// Progress, when set, is invoked after each attempted move with the
	// number of completed attempts and the total planned.
	Progress func(completed, total int)
}

// Organizer drives the scan, plan, execute cycle and records every
// executed run. All state is owned explicitly so independent instances
// can coexist.
type Organizer struct {
	desktop  ports.Desktop
	history  ports.HistoryStore
	logger   *slog.Logger
	lock     *flock.Flock
	reload   func() (*rules.Set, []rules.Warning, error)
	progress func(completed, total int)

	mu       sync.Mutex
	phase    Phase
	rules    *rules.Set
	warnings []rules.Warning
}

// Ensure Organizer implements OrganizerService
var _ ports.OrganizerService = (*Organizer)(nil)

// New creates an Organizer. Desktop and History are required; a nil rule
// set falls back to the built-in defaults.
func New(opts Options) (*Organizer, error) {
	if opts.Desktop == nil {
		return nil, fmt.Errorf("organizer requires a desktop")
	}
	if opts.History == nil {
		return nil, fmt.Errorf("organizer requires a history store")
	}

	ruleSet := opts.Rules
	if ruleSet == nil {
		ruleSet = rules.Default()
	}

	var lock *flock.Flock
	if opts.LockPath != "" {
		lock = flock.New(opts.LockPath)
	}

	o := &Organizer{
		desktop:  opts.Desktop,
		history:  opts.History,
		logger:   logging.NewComponentLogger(opts.Logger, "organizer"),
		lock:     lock,
		reload:   opts.ReloadRules,
		progress: opts.Progress,
		phase:    PhaseIdle,
		rules:    ruleSet,
		warnings: opts.Warnings,
	}
	o.logWarnings(opts.Warnings)
	return o, nil
}

// Root returns the organized directory.
func (o *Organizer) Root() string {
	return o.desktop.Root()
}

// Phase returns the current position in the run cycle.
func (o *Organizer) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Organizer) setPhase(phase Phase) {
	o.mu.Lock()
	o.phase = phase
	o.mu.Unlock()
}

// Definitions returns the active category definitions in file order.
func (o *Organizer) Definitions() []rules.Definition {
	return o.ruleSet().Definitions()
}

// RuleWarnings returns duplicate-extension warnings from the last rule
// load.
func (o *Organizer) RuleWarnings() []rules.Warning {
	o.mu.Lock()
	defer o.mu.Unlock()
	warnings := make([]rules.Warning, len(o.warnings))
	copy(warnings, o.warnings)
	return warnings
}

// History exposes the read-only action log.
func (o *Organizer) History() ports.HistoryReader {
	return o.history
}

func (o *Organizer) ruleSet() *rules.Set {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rules
}

// reloadRules re-reads the category mapping so edits apply at the next
// scan. Reloads never happen mid-run.
func (o *Organizer) reloadRules() {
	if o.reload == nil {
		return
	}

	set, warnings, err := o.reload()
	if err != nil {
		o.logger.Warn("category rules unreadable, using built-in defaults",
			logging.Error(err))
		set, warnings = rules.Default(), nil
	}

	o.mu.Lock()
	o.rules = set
	o.warnings = warnings
	o.mu.Unlock()

	o.logWarnings(warnings)
}

func (o *Organizer) logWarnings(warnings []rules.Warning) {
	for _, w := range warnings {
		o.logger.Warn("extension claimed by multiple categories",
			logging.String("extension", w.Extension),
			logging.String("kept", w.Kept),
			logging.String("shadowed", w.Shadowed))
	}
}

// Scan snapshots the desktop. It never mutates the filesystem. A missing
// or unreadable root fails with *ScanError and leaves the history
// untouched.
func (o *Organizer) Scan(ctx context.Context) (*domain.Snapshot, error) {
	o.setPhase(PhaseScanning)
	o.reloadRules()

	// Uncategorized is a destination like any configured category, so its
	// folder must be occupancy-tracked and rescanned too.
	categories := append(o.ruleSet().Categories(), domain.Uncategorized)

	snap, err := o.desktop.Scan(ctx, categories)
	if err != nil {
		o.setPhase(PhaseFailed)
		return nil, &ScanError{Root: o.desktop.Root(), Err: err}
	}

	o.logger.Info("scan complete",
		logging.String(logging.FieldRoot, snap.Root),
		logging.Int("files", len(snap.Entries)))
	o.setPhase(PhasePlanning)
	return snap, nil
}

// PlanMoves builds a collision-free move plan from a snapshot. Pure, no
// filesystem access.
func (o *Organizer) PlanMoves(snap *domain.Snapshot) *domain.Plan {
	o.setPhase(PhasePlanning)
	plan := domain.BuildPlan(snap, o.ruleSet())
	o.logger.Info("plan built",
		logging.Int("planned", plan.Pending()),
		logging.Int("skipped", plan.Skipped()),
		logging.Int("failed", plan.Failed()))
	return plan
}

// Preview scans and plans without executing anything.
func (o *Organizer) Preview(ctx context.Context) (*domain.Plan, error) {
	snap, err := o.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return o.PlanMoves(snap), nil
}

// Execute attempts every planned action one at a time. A failed move
// marks only that action and the loop continues; the source file is left
// untouched. The completed run is appended to the history unless the
// plan was empty.
func (o *Organizer) Execute(ctx context.Context, plan *domain.Plan) (*domain.Run, error) {
	o.setPhase(PhaseExecuting)

	if o.lock != nil {
		locked, err := o.lock.TryLock()
		if err != nil {
			o.setPhase(PhaseFailed)
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !locked {
			o.setPhase(PhaseFailed)
			return nil, ErrRunInProgress
		}
		defer o.lock.Unlock()
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		Root:      plan.Root,
		StartedAt: time.Now().UTC(),
	}
	ctx = logging.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, o.logger)

	total := plan.Pending()
	completed := 0
	for _, action := range plan.Actions {
		if action.Status == domain.StatusPlanned {
			if err := o.desktop.Move(action.Source, action.Destination); err != nil {
				action.Status = domain.StatusFailed
				action.Reason = domain.ReasonMoveIOError
				action.Detail = err.Error()
				logger.Warn("move failed",
					logging.String(logging.FieldPath, action.Source),
					logging.String(logging.FieldDestination, action.Destination),
					logging.Error(err))
			} else {
				action.Status = domain.StatusSucceeded
				logger.Debug("moved",
					logging.String(logging.FieldPath, action.Source),
					logging.String(logging.FieldDestination, action.Destination),
					logging.String(logging.FieldCategory, action.Category))
			}
			completed++
			if o.progress != nil {
				o.progress(completed, total)
			}
		}
		run.Actions = append(run.Actions, action)
	}
	run.FinishedAt = time.Now().UTC()

	o.setPhase(PhaseDone)
	logger.Info("organize run finished",
		logging.Int("succeeded", run.Succeeded()),
		logging.Int("failed", run.Failed()),
		logging.Int("skipped", run.Skipped()))

	if len(run.Actions) == 0 {
		return run, nil
	}
	if err := o.history.Append(ctx, run); err != nil {
		return run, fmt.Errorf("run %s completed but was not recorded: %w", run.ID, err)
	}
	return run, nil
}

// Organize runs the full scan, plan, execute, record cycle.
func (o *Organizer) Organize(ctx context.Context) (*domain.Run, error) {
	snap, err := o.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return o.Execute(ctx, o.PlanMoves(snap))
}
