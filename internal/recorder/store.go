package recorder

import (
	"context"
	"fmt"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/db"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

// Store is the part of the history database a StoreRecorder writes to.
type Store interface {
	UpsertIteration(ctx context.Context, it *db.Iteration) error
	UpdateBest(ctx context.Context, id string, score float64, set roles.Set) error
	FinishRun(ctx context.Context, id string, status db.RunStatus, errMsg string) error
}

// StoreRecorder records a run into the history database. The run row must
// already exist.
type StoreRecorder struct {
	store Store
	runID string
}

var _ Recorder = (*StoreRecorder)(nil)

// NewStoreRecorder creates a recorder writing rows for runID.
func NewStoreRecorder(store Store, runID string) *StoreRecorder {
	return &StoreRecorder{store: store, runID: runID}
}

// RecordIteration upserts the iteration row.
func (s *StoreRecorder) RecordIteration(ctx context.Context, rec Record) error {
	err := s.store.UpsertIteration(ctx, &db.Iteration{
		RunID:     s.runID,
		Index:     rec.Iteration,
		Score:     rec.Score,
		Delta:     rec.Delta,
		Parsed:    rec.Parsed,
		Feedback:  rec.Feedback,
		Artifact:  rec.Artifact,
		Prompts:   rec.Prompts,
		CreatedAt: rec.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to store iteration %d: %w", rec.Iteration, err)
	}
	return nil
}

// RecordSummary stores the best result and marks the run completed.
func (s *StoreRecorder) RecordSummary(ctx context.Context, report summary.Report) error {
	if !report.BestPrompts.IsZero() {
		if err := s.store.UpdateBest(ctx, s.runID, report.BestScore, report.BestPrompts); err != nil {
			return fmt.Errorf("failed to store best prompts: %w", err)
		}
	}
	if err := s.store.FinishRun(ctx, s.runID, db.RunCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}
