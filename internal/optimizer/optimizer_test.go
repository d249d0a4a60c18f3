package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/judge"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/recorder"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/rewrite"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/score"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

// fakePipeline returns artifacts in order and remembers the sets it was given.
type fakePipeline struct {
	artifacts []string
	err       error
	failOn    int // 1-based call that fails; 0 never
	sets      []roles.Set
	onRun     func(call int)
}

func (p *fakePipeline) Run(ctx context.Context, topic string, set roles.Set) (string, error) {
	p.sets = append(p.sets, set)
	call := len(p.sets)
	if p.onRun != nil {
		p.onRun(call)
	}
	if call == p.failOn {
		return "", p.err
	}
	return p.artifacts[(call-1)%len(p.artifacts)], nil
}

// fakeEvaluator answers with the scores in order.
type fakeEvaluator struct {
	results []judge.Result
	err     error
	calls   []string
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, artifact string) (judge.Result, error) {
	e.calls = append(e.calls, artifact)
	if e.err != nil {
		return judge.Result{}, e.err
	}
	return e.results[(len(e.calls)-1)%len(e.results)], nil
}

func scores(values ...float64) *fakeEvaluator {
	e := &fakeEvaluator{}
	for _, v := range values {
		e.results = append(e.results, judge.Result{Score: v, Feedback: fmt.Sprintf("Overall: %.1f/100\nfeedback", v), Parsed: true})
	}
	return e
}

type rewriteCall struct {
	current  roles.Spec
	feedback string
	label    string
}

// fakeRewriter appends a generation suffix to each spec it rewrites.
type fakeRewriter struct {
	calls []rewriteCall
	fixed *roles.Spec
	err   error
}

func (r *fakeRewriter) Rewrite(ctx context.Context, current roles.Spec, feedback, roleLabel string) (roles.Spec, error) {
	r.calls = append(r.calls, rewriteCall{current, feedback, roleLabel})
	if r.err != nil {
		return current, r.err
	}
	if r.fixed != nil {
		return *r.fixed, nil
	}
	return roles.Spec{Goal: current.Goal + "+", Backstory: current.Backstory + "+"}, nil
}

// memRecorder keeps everything in memory.
type memRecorder struct {
	mu        sync.Mutex
	records   []recorder.Record
	summaries []summary.Report
	err       error
}

func (m *memRecorder) RecordIteration(ctx context.Context, rec recorder.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecorder) RecordSummary(ctx context.Context, report summary.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, report)
	return nil
}

func initialSet() roles.Set {
	return roles.NewSet(
		roles.Spec{Goal: "Do research", Backstory: "You research stuff."},
		roles.Spec{Goal: "Analyze", Backstory: "You analyze."},
		roles.Spec{Goal: "Write", Backstory: "You write."},
	)
}

// collect runs the optimizer and returns its events.
func collect(ctx context.Context, t *testing.T, o *Optimizer) (*State, []Event, error) {
	t.Helper()
	var events []Event
	done := make(chan struct{})
	go func() {
		for e := range o.Events() {
			events = append(events, e)
		}
		close(done)
	}()
	state, err := o.Run(ctx)
	<-done
	return state, events, err
}

func TestOptimizer_TwoIterations(t *testing.T) {
	fixed := roles.Spec{Goal: "improved goal", Backstory: "improved backstory"}
	p := &fakePipeline{artifacts: []string{"A", "B"}}
	e := scores(60, 80)
	r := &fakeRewriter{fixed: &fixed}
	rec := &memRecorder{}

	o := New(Config{RunID: "run-1", Topic: "X", Iterations: 2, Initial: initialSet()},
		Deps{Pipeline: p, Evaluator: e, Rewriter: r, Recorder: rec})

	state, _, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(state.History) != 2 {
		t.Fatalf("History has %d records, want 2", len(state.History))
	}
	if state.BestScore != 80 {
		t.Errorf("BestScore = %v, want 80", state.BestScore)
	}
	want := roles.NewSet(fixed, fixed, fixed)
	if !state.BestRoles.Equal(want) {
		t.Errorf("BestRoles = %+v, want the iteration-2 set", state.BestRoles)
	}
	if !state.History[1].Prompts.Equal(want) || !state.History[0].Prompts.Equal(initialSet()) {
		t.Error("records do not snapshot the set used in their iteration")
	}
	if state.History[0].Artifact != "A" || state.History[1].Artifact != "B" {
		t.Errorf("artifacts = %q, %q", state.History[0].Artifact, state.History[1].Artifact)
	}
	if state.History[0].Delta != 0 || state.History[1].Delta != 20 {
		t.Errorf("deltas = %v, %v; want 0, 20", state.History[0].Delta, state.History[1].Delta)
	}
	if state.Summary.TotalImprovement != 20 {
		t.Errorf("TotalImprovement = %v, want 20", state.Summary.TotalImprovement)
	}

	// Only iteration 1 rewrites: three roles, same feedback, localized labels.
	if len(r.calls) != 3 {
		t.Fatalf("rewrite called %d times, want 3", len(r.calls))
	}
	labels := []string{"Research Scientist", "Data Analyst", "Scientific Writer"}
	for i, c := range r.calls {
		if c.label != labels[i] {
			t.Errorf("rewrite %d label = %q, want %q", i, c.label, labels[i])
		}
		if c.feedback != e.results[0].Feedback {
			t.Errorf("rewrite %d feedback = %q", i, c.feedback)
		}
	}

	if len(rec.records) != 2 || rec.records[0].Iteration != 1 || rec.records[1].Iteration != 2 {
		t.Errorf("recorder saw %+v", rec.records)
	}
	if len(rec.summaries) != 1 {
		t.Fatalf("RecordSummary called %d times, want 1", len(rec.summaries))
	}
	report := rec.summaries[0]
	if report.RunID != "run-1" || report.Topic != "X" || len(report.Iterations) != 2 || report.BestScore != 80 {
		t.Errorf("report = %+v", report)
	}
	if !report.BestPrompts.Equal(want) {
		t.Error("report best prompts differ from state")
	}
}

func TestOptimizer_SingleIterationNeverRewrites(t *testing.T) {
	r := &fakeRewriter{}
	o := New(Config{Topic: "X", Iterations: 1, Initial: initialSet()},
		Deps{Pipeline: &fakePipeline{artifacts: []string{"A"}}, Evaluator: scores(42), Rewriter: r})

	state, _, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("rewrite called %d times, want 0", len(r.calls))
	}
	if state.Summary.AverageImprovement != 0 {
		t.Errorf("AverageImprovement = %v, want 0", state.Summary.AverageImprovement)
	}
	if state.BestScore != 42 || !state.BestRoles.Equal(initialSet()) {
		t.Errorf("best = %v %+v", state.BestScore, state.BestRoles)
	}
}

func TestOptimizer_FallbackScoreContinues(t *testing.T) {
	e := &fakeEvaluator{results: []judge.Result{
		{Score: score.FallbackScore, Feedback: "no overall line here", Parsed: false},
		{Score: 70, Feedback: "Overall: 70/100", Parsed: true},
	}}
	o := New(Config{Topic: "X", Iterations: 2, Initial: initialSet()},
		Deps{Pipeline: &fakePipeline{artifacts: []string{"A"}}, Evaluator: e, Rewriter: &fakeRewriter{}})

	state, _, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.History[0].Score != 50 || state.History[0].Parsed {
		t.Errorf("record 1 = %+v, want fallback score", state.History[0])
	}
	if len(state.History) != 2 {
		t.Errorf("run stopped after %d iterations", len(state.History))
	}
}

func TestOptimizer_JudgeWithoutOverallLine(t *testing.T) {
	replies := []string{"Relevance: 40/100\nFeedback: vague.", "Overall: 66/100"}
	n := 0
	m := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		n++
		return replies[n-1], nil
	})
	o := New(Config{Topic: "X", Iterations: 2, Initial: initialSet()},
		Deps{Pipeline: &fakePipeline{artifacts: []string{"A"}}, Evaluator: judge.New(m, nil), Rewriter: &fakeRewriter{}})

	state, _, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state.History[0].Score != score.FallbackScore {
		t.Errorf("iteration 1 score = %v, want %v", state.History[0].Score, score.FallbackScore)
	}
	if state.History[0].Feedback != replies[0] {
		t.Error("raw judge text should be kept as feedback")
	}
	if state.BestScore != 66 {
		t.Errorf("BestScore = %v, want 66", state.BestScore)
	}
}

func TestOptimizer_EmptyRepliesAreNotFatal(t *testing.T) {
	silent := model.Func(func(ctx context.Context, system, user string, temperature float32) (string, error) {
		return "", nil
	})
	rec := &memRecorder{}
	o := New(Config{Topic: "X", Iterations: 3, Initial: initialSet()}, Deps{
		Pipeline:  &fakePipeline{artifacts: []string{""}},
		Evaluator: judge.New(silent, nil),
		Rewriter:  rewrite.New(silent, nil, rewrite.DefaultTemperature),
		Recorder:  rec,
	})

	state, _, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(state.History) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(state.History))
	}
	for _, r := range state.History {
		if r.Score != score.FallbackScore || r.Parsed {
			t.Errorf("iteration %d: score = %v parsed = %v, want fallback", r.Iteration, r.Score, r.Parsed)
		}
		if r.Prompts != initialSet() {
			t.Errorf("iteration %d: empty rewrites should keep the initial prompts", r.Iteration)
		}
	}
	if len(rec.records) != 3 {
		t.Errorf("expected 3 recorded iterations, got %d", len(rec.records))
	}
}

func TestOptimizer_BestTracking(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		wantBest float64
		wantIter int // iteration whose set must be the best set
	}{
		{"improving", []float64{40, 50, 60}, 60, 3},
		{"peak in the middle", []float64{40, 70, 55}, 70, 2},
		{"ties keep the first", []float64{60, 60, 60}, 60, 1},
		{"tie after peak", []float64{50, 80, 80, 10}, 80, 2},
		{"declining", []float64{90, 80, 70}, 90, 1},
		{"negative unclamped", []float64{-5, -10}, -5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(Config{Topic: "X", Iterations: len(tt.scores), Initial: initialSet()},
				Deps{Pipeline: &fakePipeline{artifacts: []string{"A"}}, Evaluator: scores(tt.scores...), Rewriter: &fakeRewriter{}})

			state, _, err := collect(context.Background(), t, o)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(state.History) != len(tt.scores) {
				t.Fatalf("History has %d records, want %d", len(state.History), len(tt.scores))
			}
			if state.BestScore != tt.wantBest {
				t.Errorf("BestScore = %v, want %v", state.BestScore, tt.wantBest)
			}
			if !state.BestRoles.Equal(state.History[tt.wantIter-1].Prompts) {
				t.Errorf("BestRoles is not the set of iteration %d", tt.wantIter)
			}
			// Every rewrite generation differs, so the best set identifies one iteration.
			for i, rec := range state.History {
				if i+1 != tt.wantIter && rec.Prompts.Equal(state.BestRoles) {
					t.Errorf("iteration %d shares the best set", i+1)
				}
			}
		})
	}
}

func TestOptimizer_RewrittenSetFeedsNextIteration(t *testing.T) {
	p := &fakePipeline{artifacts: []string{"A"}}
	o := New(Config{Topic: "X", Iterations: 3, Initial: initialSet()},
		Deps{Pipeline: p, Evaluator: scores(10, 20, 30), Rewriter: &fakeRewriter{}})

	if _, _, err := collect(context.Background(), t, o); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(p.sets) != 3 {
		t.Fatalf("pipeline ran %d times", len(p.sets))
	}
	if got := p.sets[2].Get(roles.Writer).Goal; got != "Write++" {
		t.Errorf("iteration 3 writer goal = %q, want %q", got, "Write++")
	}
}

func TestOptimizer_CollaboratorErrors(t *testing.T) {
	boom := errors.New("quota exceeded")

	tests := []struct {
		name      string
		pipeline  *fakePipeline
		evaluator *fakeEvaluator
		rewriter  *fakeRewriter
		recorder  *memRecorder
		wantIter  int
		wantStep  Step
		wantRole  roles.ID
		wantHist  int
	}{
		{
			name:      "pipeline fails on iteration 2",
			pipeline:  &fakePipeline{artifacts: []string{"A"}, failOn: 2, err: boom},
			evaluator: scores(50),
			rewriter:  &fakeRewriter{},
			wantIter:  2,
			wantStep:  StepRun,
			wantHist:  1,
		},
		{
			name:      "judge fails",
			pipeline:  &fakePipeline{artifacts: []string{"A"}},
			evaluator: &fakeEvaluator{err: boom},
			rewriter:  &fakeRewriter{},
			wantIter:  1,
			wantStep:  StepEvaluate,
			wantHist:  0,
		},
		{
			name:      "rewrite model fails",
			pipeline:  &fakePipeline{artifacts: []string{"A"}},
			evaluator: scores(50),
			rewriter:  &fakeRewriter{err: boom},
			wantIter:  1,
			wantStep:  StepRewrite,
			wantRole:  roles.Researcher,
			wantHist:  1,
		},
		{
			name:      "recorder fails",
			pipeline:  &fakePipeline{artifacts: []string{"A"}},
			evaluator: scores(50),
			rewriter:  &fakeRewriter{},
			recorder:  &memRecorder{err: boom},
			wantIter:  1,
			wantStep:  StepRecord,
			wantHist:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := Deps{Pipeline: tt.pipeline, Evaluator: tt.evaluator, Rewriter: tt.rewriter}
			if tt.recorder != nil {
				deps.Recorder = tt.recorder
			}
			o := New(Config{Topic: "X", Iterations: 3, Initial: initialSet()}, deps)

			state, events, err := collect(context.Background(), t, o)
			if !errors.Is(err, boom) {
				t.Fatalf("Run() error = %v, want wrapped %v", err, boom)
			}
			var iterErr *IterationError
			if !errors.As(err, &iterErr) {
				t.Fatalf("Run() error is %T, want *IterationError", err)
			}
			if iterErr.Iteration != tt.wantIter || iterErr.Step != tt.wantStep || iterErr.Role != tt.wantRole {
				t.Errorf("IterationError = %+v", iterErr)
			}
			if len(state.History) != tt.wantHist {
				t.Errorf("History has %d records, want %d", len(state.History), tt.wantHist)
			}
			last := events[len(events)-1]
			if last.Type != EventError || last.Iteration != tt.wantIter {
				t.Errorf("last event = %+v, want error event", last)
			}
		})
	}
}

func TestOptimizer_CancelBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel while iteration 1 is running: the iteration still completes.
	p := &fakePipeline{artifacts: []string{"A"}, onRun: func(call int) {
		if call == 1 {
			cancel()
		}
	}}
	e := scores(55, 65)
	o := New(Config{Topic: "X", Iterations: 3, Initial: initialSet()},
		Deps{Pipeline: p, Evaluator: e, Rewriter: &fakeRewriter{}})

	state, events, err := collect(ctx, t, o)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(state.History) != 1 || len(e.calls) != 1 {
		t.Errorf("completed %d iterations, want exactly 1", len(state.History))
	}
	if state.BestScore != 55 {
		t.Errorf("BestScore = %v, want 55", state.BestScore)
	}
	if last := events[len(events)-1]; last.Type != EventCanceled {
		t.Errorf("last event = %s, want %s", last.Type, EventCanceled)
	}
}

func TestOptimizer_Validation(t *testing.T) {
	deps := Deps{Pipeline: &fakePipeline{artifacts: []string{"A"}}, Evaluator: scores(1), Rewriter: &fakeRewriter{}}

	tests := []struct {
		name string
		cfg  Config
		deps Deps
		want error
	}{
		{"zero iterations", Config{Topic: "X", Iterations: 0, Initial: initialSet()}, deps, ErrInvalidIterations},
		{"blank topic", Config{Topic: "  ", Iterations: 1, Initial: initialSet()}, deps, ErrEmptyTopic},
		{"empty role set", Config{Topic: "X", Iterations: 1}, deps, ErrEmptyRoleSet},
		{"missing pipeline", Config{Topic: "X", Iterations: 1, Initial: initialSet()}, Deps{Evaluator: scores(1), Rewriter: &fakeRewriter{}}, ErrMissingDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(tt.cfg, tt.deps)
			_, events, err := collect(context.Background(), t, o)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if len(events) != 0 {
				t.Errorf("got %d events before validation passed", len(events))
			}
		})
	}
}

func TestOptimizer_EventSequence(t *testing.T) {
	o := New(Config{Topic: "X", Iterations: 2, Initial: initialSet()},
		Deps{Pipeline: &fakePipeline{artifacts: []string{"A", "B"}}, Evaluator: scores(60, 50), Rewriter: &fakeRewriter{}, Locale: prompt.Korean()})

	_, events, err := collect(context.Background(), t, o)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	want := []EventType{
		EventStarted,
		EventIterationStart, EventPipelineStart, EventPipelineEnd, EventEvaluated, EventRecorded, EventNewBest,
		EventRewriteStart, EventRewriteEnd, EventRewriteStart, EventRewriteEnd, EventRewriteStart, EventRewriteEnd,
		EventIterationEnd,
		EventIterationStart, EventPipelineStart, EventPipelineEnd, EventEvaluated, EventRecorded,
		EventIterationEnd,
		EventCompleted,
	}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("event types =\n%v\nwant\n%v", types, want)
	}

	for _, e := range events {
		switch e.Type {
		case EventPipelineEnd:
			if e.Output == "" {
				t.Error("pipeline_end should carry the artifact")
			}
		case EventEvaluated:
			if e.Iteration == 2 && e.Delta != -10 {
				t.Errorf("iteration 2 delta = %v, want -10", e.Delta)
			}
		case EventRewriteStart:
			if e.Role == roles.Analyst && e.Message != "Improving 데이터 분석가 prompt" {
				t.Errorf("rewrite message = %q", e.Message)
			}
		case EventCompleted:
			if e.BestScore != 60 {
				t.Errorf("completed best = %v, want 60", e.BestScore)
			}
		}
	}
}

func TestOptimizer_CurrentIteration(t *testing.T) {
	var o *Optimizer
	var seen []int
	p := &fakePipeline{artifacts: []string{"A"}, onRun: func(call int) {
		seen = append(seen, o.CurrentIteration())
	}}
	o = New(Config{Topic: "X", Iterations: 3, Initial: initialSet()},
		Deps{Pipeline: p, Evaluator: scores(1), Rewriter: &fakeRewriter{}})

	if _, _, err := collect(context.Background(), t, o); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fmt.Sprint(seen) != "[1 2 3]" {
		t.Errorf("CurrentIteration during runs = %v", seen)
	}
}

func TestIterationError(t *testing.T) {
	base := errors.New("timeout")
	err := &IterationError{Iteration: 3, Step: StepRewrite, Role: roles.Writer, Err: base}
	if got := err.Error(); got != "iteration 3: rewrite step failed for writer: timeout" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, base) {
		t.Error("IterationError should unwrap to its cause")
	}

	err = &IterationError{Iteration: 1, Step: StepRun, Err: base}
	if got := err.Error(); got != "iteration 1: run step failed: timeout" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewErrorEvent(t *testing.T) {
	err := errors.New("test error")
	event := NewErrorEvent(5, 10, err)

	if event.Type != EventError {
		t.Errorf("expected type %s, got %s", EventError, event.Type)
	}
	if event.Iteration != 5 || event.MaxIter != 10 {
		t.Errorf("unexpected iteration fields: %+v", event)
	}
	if event.Error != err || event.Message != "test error" {
		t.Errorf("unexpected error fields: %+v", event)
	}
}
