package db

import (
	"time"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// RunStatus represents the status of an optimization run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCanceled  RunStatus = "canceled"
)

// Run is one invocation of the optimizer.
type Run struct {
	ID         string
	Topic      string
	Locale     string
	Iterations int // requested iteration count
	Status     RunStatus
	BestScore  float64
	BestRoles  roles.Set // zero until the run records its best set
	OutputDir  string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// Iteration is one recorded iteration of a run.
type Iteration struct {
	RunID     string
	Index     int // 1-based
	Score     float64
	Delta     float64
	Parsed    bool
	Feedback  string
	Artifact  string
	Prompts   roles.Set
	CreatedAt time.Time
}
