package optimizer

import (
	"fmt"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// Step names the part of an iteration that failed.
type Step string

const (
	StepRun      Step = "run"
	StepEvaluate Step = "evaluate"
	StepRecord   Step = "record"
	StepRewrite  Step = "rewrite"
)

// IterationError is a fatal failure of one iteration step.
type IterationError struct {
	Iteration int
	Step      Step
	Role      roles.ID // set for StepRewrite
	Err       error
}

func (e *IterationError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("iteration %d: %s step failed for %s: %v", e.Iteration, e.Step, e.Role, e.Err)
	}
	return fmt.Sprintf("iteration %d: %s step failed: %v", e.Iteration, e.Step, e.Err)
}

func (e *IterationError) Unwrap() error {
	return e.Err
}
