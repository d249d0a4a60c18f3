// Package optimizer runs the prompt optimization loop: run the pipeline,
// score the artifact, record the iteration, track the best role set and
// rewrite every role from the judge's feedback.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/judge"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/pipeline"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/recorder"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

var (
	// ErrInvalidIterations is returned when fewer than one iteration is requested.
	ErrInvalidIterations = errors.New("iterations must be at least 1")
	// ErrEmptyTopic is returned when no topic is given.
	ErrEmptyTopic = errors.New("topic cannot be empty")
	// ErrMissingDependency is returned when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing optimizer dependency")
	// ErrEmptyRoleSet is returned when no initial role set is given.
	ErrEmptyRoleSet = errors.New("initial role set is empty")
)

// Evaluator scores an artifact.
type Evaluator interface {
	Evaluate(ctx context.Context, artifact string) (judge.Result, error)
}

// Rewriter produces an improved spec for one role.
type Rewriter interface {
	Rewrite(ctx context.Context, current roles.Spec, feedback, roleLabel string) (roles.Spec, error)
}

// Config holds configuration for a run.
type Config struct {
	RunID           string
	Topic           string
	Iterations      int
	Initial         roles.Set
	EventBufferSize int // Size of event channel buffer (default: 256)
}

// Deps holds the collaborators of a run.
type Deps struct {
	Pipeline  pipeline.Runner
	Evaluator Evaluator
	Rewriter  Rewriter
	Recorder  recorder.Recorder // optional
	Locale    *prompt.Locale    // role labels; English when nil
}

// State is the outcome of a run. On failure or cancellation it holds the
// iterations completed so far.
type State struct {
	History   []recorder.Record
	BestScore float64
	BestRoles roles.Set
	Summary   summary.Summary
}

// Best returns the best role set and its score.
func (s *State) Best() (roles.Set, float64) {
	return s.BestRoles, s.BestScore
}

// Entries returns the score history in iteration order.
func (s *State) Entries() []summary.Entry {
	entries := make([]summary.Entry, len(s.History))
	for i, rec := range s.History {
		entries[i] = summary.Entry{Iteration: rec.Iteration, Score: rec.Score}
	}
	return entries
}

// Optimizer runs the optimization loop.
type Optimizer struct {
	cfg  Config
	deps Deps

	events      chan Event
	eventsMu    sync.Mutex
	iterationMu sync.RWMutex
	iteration   int
}

// New creates a new Optimizer with the given configuration and dependencies.
func New(cfg Config, deps Deps) *Optimizer {
	bufferSize := cfg.EventBufferSize
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if deps.Locale == nil {
		deps.Locale = prompt.English()
	}
	return &Optimizer{
		cfg:    cfg,
		deps:   deps,
		events: make(chan Event, bufferSize),
	}
}

// Events returns the channel for receiving optimizer events.
// The channel is closed when Run returns.
func (o *Optimizer) Events() <-chan Event {
	return o.events
}

// CurrentIteration returns the current iteration number.
// This method is safe to call concurrently.
func (o *Optimizer) CurrentIteration() int {
	o.iterationMu.RLock()
	defer o.iterationMu.RUnlock()
	return o.iteration
}

func (o *Optimizer) validate() error {
	var errs []error
	if strings.TrimSpace(o.cfg.Topic) == "" {
		errs = append(errs, ErrEmptyTopic)
	}
	if o.cfg.Iterations < 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidIterations, o.cfg.Iterations))
	}
	if o.cfg.Initial.IsZero() {
		errs = append(errs, ErrEmptyRoleSet)
	}
	if o.deps.Pipeline == nil {
		errs = append(errs, fmt.Errorf("%w: pipeline", ErrMissingDependency))
	}
	if o.deps.Evaluator == nil {
		errs = append(errs, fmt.Errorf("%w: evaluator", ErrMissingDependency))
	}
	if o.deps.Rewriter == nil {
		errs = append(errs, fmt.Errorf("%w: rewriter", ErrMissingDependency))
	}
	return errors.Join(errs...)
}

// Run executes every iteration in order. Cancellation is checked between
// iterations only; a collaborator failure aborts the run with an
// *IterationError. The returned State is never nil.
func (o *Optimizer) Run(ctx context.Context) (*State, error) {
	defer close(o.events)

	state := &State{}
	if err := o.validate(); err != nil {
		return state, err
	}

	maxIter := o.cfg.Iterations
	current := o.cfg.Initial
	startedAt := time.Now()

	o.emit(NewEvent(EventStarted, 0, maxIter, "Optimization started"))
	log.Info("starting optimization", "topic", o.cfg.Topic, "iterations", maxIter)

	for i := 1; i <= maxIter; i++ {
		select {
		case <-ctx.Done():
			o.emit(NewEvent(EventCanceled, i-1, maxIter, "Optimization canceled"))
			state.Summary = summary.Summarize(state.Entries())
			return state, ctx.Err()
		default:
		}

		o.iterationMu.Lock()
		o.iteration = i
		o.iterationMu.Unlock()

		next, err := o.runIteration(ctx, i, current, state)
		if err != nil {
			state.Summary = summary.Summarize(state.Entries())
			log.Error("iteration failed", "iteration", i, "error", err)
			o.emit(NewErrorEvent(i, maxIter, err))
			if ctx.Err() != nil {
				o.emit(NewEvent(EventCanceled, i, maxIter, "Optimization canceled"))
			}
			return state, err
		}
		current = next
	}

	state.Summary = summary.Summarize(state.Entries())

	if o.deps.Recorder != nil {
		if err := o.deps.Recorder.RecordSummary(ctx, o.report(state, startedAt)); err != nil {
			err = fmt.Errorf("failed to record summary: %w", err)
			o.emit(NewErrorEvent(maxIter, maxIter, err))
			return state, err
		}
	}

	done := NewEvent(EventCompleted, maxIter, maxIter,
		fmt.Sprintf("Optimization complete, best score %.1f/100", state.BestScore))
	done.BestScore = state.BestScore
	done.Score = state.Summary.FinalScore
	o.emit(done)
	return state, nil
}

// runIteration runs iteration i with the role set current and returns the
// role set for the next iteration.
func (o *Optimizer) runIteration(ctx context.Context, i int, current roles.Set, state *State) (roles.Set, error) {
	maxIter := o.cfg.Iterations
	o.emit(NewEvent(EventIterationStart, i, maxIter, fmt.Sprintf("Iteration %d/%d", i, maxIter)))

	// 1. Run
	o.emit(NewEvent(EventPipelineStart, i, maxIter, "Running pipeline"))
	artifact, err := o.deps.Pipeline.Run(ctx, o.cfg.Topic, current)
	if err != nil {
		return current, &IterationError{Iteration: i, Step: StepRun, Err: err}
	}
	o.emit(NewOutputEvent(EventPipelineEnd, i, maxIter, "Pipeline finished", artifact))

	// 2. Evaluate
	result, err := o.deps.Evaluator.Evaluate(ctx, artifact)
	if err != nil {
		return current, &IterationError{Iteration: i, Step: StepEvaluate, Err: err}
	}

	// 3. Delta, reporting only
	var delta float64
	if n := len(state.History); n > 0 {
		delta = result.Score - state.History[n-1].Score
	}

	evaluated := NewOutputEvent(EventEvaluated, i, maxIter,
		fmt.Sprintf("Score %.1f/100", result.Score), result.Feedback)
	evaluated.Score = result.Score
	evaluated.Delta = delta
	o.emit(evaluated)
	log.Info("iteration scored", "iteration", i, "score", result.Score, "delta", delta, "parsed", result.Parsed)

	// 4. Record
	rec := recorder.Record{
		Iteration: i,
		Timestamp: time.Now(),
		Score:     result.Score,
		Delta:     delta,
		Parsed:    result.Parsed,
		Feedback:  result.Feedback,
		Artifact:  artifact,
		Prompts:   current,
	}
	state.History = append(state.History, rec)
	if o.deps.Recorder != nil {
		if err := o.deps.Recorder.RecordIteration(ctx, rec); err != nil {
			return current, &IterationError{Iteration: i, Step: StepRecord, Err: err}
		}
	}
	o.emit(NewEvent(EventRecorded, i, maxIter, "Iteration recorded"))

	// 5. Update best; the first iteration always sets it, ties never replace it
	if i == 1 || result.Score > state.BestScore {
		state.BestScore = result.Score
		state.BestRoles = current
		best := NewEvent(EventNewBest, i, maxIter, fmt.Sprintf("New best score %.1f/100", result.Score))
		best.Score = result.Score
		o.emit(best)
	}

	// 6. Rewrite, skipped on the final iteration
	next := current
	if i < maxIter {
		for _, id := range roles.IDs() {
			label := o.deps.Locale.RoleLabel(id)

			start := NewEvent(EventRewriteStart, i, maxIter, fmt.Sprintf("Improving %s prompt", label))
			start.Role = id
			o.emit(start)

			before := next.Get(id)
			improved, err := o.deps.Rewriter.Rewrite(ctx, before, result.Feedback, label)
			if err != nil {
				return current, &IterationError{Iteration: i, Step: StepRewrite, Role: id, Err: err}
			}
			next = next.With(id, improved)

			end := NewEvent(EventRewriteEnd, i, maxIter, fmt.Sprintf("%s prompt updated", label))
			end.Role = id
			end.Changed = improved != before
			o.emit(end)
		}
	}

	end := NewEvent(EventIterationEnd, i, maxIter, fmt.Sprintf("Iteration %d complete", i))
	end.Score = result.Score
	end.Delta = delta
	end.BestScore = state.BestScore
	o.emit(end)
	return next, nil
}

func (o *Optimizer) report(state *State, startedAt time.Time) summary.Report {
	iterations := make([]summary.IterationEntry, len(state.History))
	for i, rec := range state.History {
		iterations[i] = summary.IterationEntry{
			Iteration: rec.Iteration,
			Score:     rec.Score,
			Prompts:   rec.Prompts,
		}
	}
	return summary.Report{
		RunID:       o.cfg.RunID,
		Topic:       o.cfg.Topic,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
		Summary:     state.Summary,
		BestPrompts: state.BestRoles,
		Iterations:  iterations,
	}
}

// emit sends an event to the events channel if it's not full.
func (o *Optimizer) emit(event Event) {
	o.eventsMu.Lock()
	defer o.eventsMu.Unlock()

	select {
	case o.events <- event:
	default:
		log.Warn("event channel full, dropping event", "type", event.Type)
	}
}
