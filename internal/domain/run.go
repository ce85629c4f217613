package domain

import "time"

// Run is the durable record of one executed organize pass.
type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Actions    []MoveAction
}

// Succeeded returns the number of completed moves.
func (r *Run) Succeeded() int { return r.count(StatusSucceeded) }

// Failed returns the number of failed actions.
func (r *Run) Failed() int { return r.count(StatusFailed) }

// Skipped returns the number of files that were already in place.
func (r *Run) Skipped() int { return r.count(StatusSkipped) }

// Total returns the number of recorded actions.
func (r *Run) Total() int { return len(r.Actions) }

func (r *Run) count(status ActionStatus) int {
	n := 0
	for _, action := range r.Actions {
		if action.Status == status {
			n++
		}
	}
	return n
}

// RunAction is a recorded action joined with its run context, used by
// history queries that cut across runs.
type RunAction struct {
	MoveAction
	RunID   string
	MovedAt time.Time
}

// CategoryCount aggregates organized files per category.
type CategoryCount struct {
	Category string
	Files    int
}

// DayCount aggregates organized files per calendar day (YYYY-MM-DD).
type DayCount struct {
	Day   string
	Files int
}
