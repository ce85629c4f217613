package domain

import "time"

// ActionStatus describes the lifecycle state of a single move.
type ActionStatus string

const (
	StatusPlanned   ActionStatus = "planned"
	StatusSucceeded ActionStatus = "succeeded"
	StatusFailed    ActionStatus = "failed"
	StatusSkipped   ActionStatus = "skipped"
)

var actionStatuses = map[ActionStatus]bool{
	StatusPlanned:   true,
	StatusSucceeded: true,
	StatusFailed:    true,
	StatusSkipped:   true,
}

// ParseActionStatus converts a stored string back into a status.
func ParseActionStatus(value string) (ActionStatus, bool) {
	status := ActionStatus(value)
	return status, actionStatuses[status]
}

// FailureReason classifies why an action failed.
type FailureReason string

const (
	ReasonNone FailureReason = ""
	// ReasonCategoryPathConflict marks a category directory blocked by an
	// existing file with the category's name.
	ReasonCategoryPathConflict FailureReason = "category_path_conflict"
	// ReasonMoveIOError marks a rename rejected by the operating system.
	ReasonMoveIOError FailureReason = "move_io_error"
	// ReasonNameExhausted marks a destination whose " (N)" variants are
	// all taken.
	ReasonNameExhausted FailureReason = "name_exhausted"
)

// MoveAction is one planned or executed file move.
type MoveAction struct {
	Source      string
	Destination string
	Category    string
	Status      ActionStatus
	Reason      FailureReason
	Detail      string // human-readable failure detail, "" otherwise
}

// Plan is the ordered set of actions produced for one snapshot.
type Plan struct {
	Root    string
	BuiltAt time.Time
	Actions []MoveAction
}

// Pending returns the number of actions still waiting to be executed.
func (p *Plan) Pending() int { return p.count(StatusPlanned) }

// Skipped returns the number of files already in place.
func (p *Plan) Skipped() int { return p.count(StatusSkipped) }

// Failed returns the number of actions that failed during planning.
func (p *Plan) Failed() int { return p.count(StatusFailed) }

// HasWork reports whether executing the plan would move anything.
func (p *Plan) HasWork() bool { return p.Pending() > 0 }

func (p *Plan) count(status ActionStatus) int {
	n := 0
	for _, action := range p.Actions {
		if action.Status == status {
			n++
		}
	}
	return n
}
