// Package recorder persists iteration records and run summaries.
package recorder

import (
	"context"
	"time"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

// Record is the durable record of one iteration.
type Record struct {
	Iteration int // 1-based
	Timestamp time.Time
	Score     float64
	Delta     float64 // score minus the previous iteration's score; 0 for the first
	Parsed    bool    // false when the judge response fell back to the default score
	Feedback  string
	Artifact  string
	Prompts   roles.Set // the role set that produced Artifact
}

// Recorder receives iteration records as they are produced and the run
// summary once the last iteration has been recorded. Recording the same
// iteration index twice replaces the earlier record.
type Recorder interface {
	RecordIteration(ctx context.Context, rec Record) error
	RecordSummary(ctx context.Context, report summary.Report) error
}

// Multi fans records out to several recorders in order. The first error
// stops the fan-out and is returned.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) RecordIteration(ctx context.Context, rec Record) error {
	for _, r := range m {
		if err := r.RecordIteration(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) RecordSummary(ctx context.Context, report summary.Report) error {
	for _, r := range m {
		if err := r.RecordSummary(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
