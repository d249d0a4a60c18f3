// Package pipeline runs the three-role research crew that produces the
// artifact being optimized.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// DefaultTemperature is the sampling temperature of the crew's agents.
const DefaultTemperature = 0.7

// Runner produces an artifact for a topic from a role set.
type Runner interface {
	Run(ctx context.Context, topic string, set roles.Set) (string, error)
}

// Step describes one finished agent step.
type Step struct {
	Role     roles.ID
	Output   string
	Duration time.Duration
}

// StepFunc is called after each agent step completes.
type StepFunc func(Step)

// Crew runs researcher, analyst and writer in order. Every agent sees the
// outputs of the agents before it; the writer's output is the artifact.
type Crew struct {
	model       model.Model
	locale      *prompt.Locale
	temperature float32
	onStep      StepFunc
}

var _ Runner = (*Crew)(nil)

// Option configures a Crew.
type Option func(*Crew)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(c *Crew) {
		c.temperature = t
	}
}

// WithStepFunc registers a callback invoked after each agent step.
func WithStepFunc(fn StepFunc) Option {
	return func(c *Crew) {
		c.onStep = fn
	}
}

// New creates a Crew. A nil locale selects English.
func New(m model.Model, locale *prompt.Locale, opts ...Option) *Crew {
	if locale == nil {
		locale = prompt.English()
	}
	c := &Crew{
		model:       m,
		locale:      locale,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the crew and returns the final report.
func (c *Crew) Run(ctx context.Context, topic string, set roles.Set) (string, error) {
	var sections []string
	var output string

	for _, id := range roles.IDs() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		req, err := prompt.BuildAgentTask(c.locale, prompt.AgentContext{
			Role:    id,
			Spec:    set.Get(id),
			Topic:   topic,
			Context: strings.Join(sections, "\n\n"),
		})
		if err != nil {
			return "", err
		}

		label := c.locale.RoleLabel(id)
		log.Debug("running agent", "role", label)

		start := time.Now()
		output, err = c.model.Complete(ctx, req.System, req.User, c.temperature)
		if err != nil {
			return "", fmt.Errorf("%s step failed: %w", label, err)
		}
		output = strings.TrimSpace(output)

		step := Step{Role: id, Output: output, Duration: time.Since(start)}
		log.Debug("agent finished", "role", label, "duration", step.Duration, "chars", len(output))
		if c.onStep != nil {
			c.onStep(step)
		}

		sections = append(sections, fmt.Sprintf("## %s\n%s", label, output))
	}

	return output, nil
}
