// Package judge scores a pipeline artifact with a model and the rubric of
// the active locale.
package judge

import (
	"context"
	"fmt"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/score"
)

// DefaultTemperature is the sampling temperature for scoring requests.
const DefaultTemperature = 0.3

const (
	minScore = 0.0
	maxScore = 100.0
)

// Result is the outcome of one evaluation.
type Result struct {
	Score    float64
	Feedback string // verbatim judge response
	Parsed   bool   // false when the fallback score was used
	Clamped  bool   // true when Score was pulled into [0,100]
}

// Evaluator asks a model to score artifacts.
type Evaluator struct {
	model       model.Model
	locale      *prompt.Locale
	temperature float32
	clamp       bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(e *Evaluator) {
		e.temperature = t
	}
}

// WithClamp sets whether out-of-range scores are clamped. Clamping is on by default.
func WithClamp(clamp bool) Option {
	return func(e *Evaluator) {
		e.clamp = clamp
	}
}

// New creates an Evaluator. A nil locale selects English.
func New(m model.Model, locale *prompt.Locale, opts ...Option) *Evaluator {
	if locale == nil {
		locale = prompt.English()
	}
	e := &Evaluator{
		model:       m,
		locale:      locale,
		temperature: DefaultTemperature,
		clamp:       true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores artifact. A failed model call is returned as an error; an
// unparseable response is not, it yields score.FallbackScore.
func (e *Evaluator) Evaluate(ctx context.Context, artifact string) (Result, error) {
	req, err := prompt.BuildEvaluation(e.locale, artifact)
	if err != nil {
		return Result{}, err
	}

	raw, err := e.model.Complete(ctx, req.System, req.User, e.temperature)
	if err != nil {
		return Result{}, fmt.Errorf("judge model call failed: %w", err)
	}

	parsed := score.Parse(raw, score.Labels{
		Overall: e.locale.OverallLabel,
		Aliases: e.locale.OverallAliases,
	})

	res := Result{
		Score:    parsed.Score,
		Feedback: raw,
		Parsed:   parsed.Parsed,
	}
	if e.clamp {
		res.Score, res.Clamped = clamp(res.Score)
		if res.Clamped {
			log.Warn("judge score out of range, clamped",
				"score", parsed.Score, "clamped_to", res.Score)
		}
	}
	return res, nil
}

func clamp(v float64) (float64, bool) {
	switch {
	case v < minScore:
		return minScore, true
	case v > maxScore:
		return maxScore, true
	default:
		return v, false
	}
}
