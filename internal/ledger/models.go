package ledger

import "time"

// Status describes the lifecycle state of a run or a stage.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusInvalid   Status = "invalid"
)

// IsTerminal reports whether the status ends a run or stage.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusInvalid
}

// Run is a persisted pipeline run.
type Run struct {
	ID           string
	Environment  string
	Root         string
	Status       Status
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// StageEvent is one stage execution within a run.
type StageEvent struct {
	ID         int64
	RunID      string
	Stage      string
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Placement is a persisted record of where a stage put a file.
type Placement struct {
	RunID string
	Stage string
	Split string
	Label string
	File  string
}
