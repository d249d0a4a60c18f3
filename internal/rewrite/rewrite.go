// Package rewrite turns judge feedback into improved role descriptions.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// DefaultTemperature is the sampling temperature for rewrite requests.
const DefaultTemperature = 0.8

// ErrMalformedRewrite is returned by Decode when the response is not a
// two-field JSON object.
var ErrMalformedRewrite = errors.New("malformed rewrite response")

// wireSpec uses pointers so that missing fields can be told apart from empty ones.
type wireSpec struct {
	Goal      *string `json:"goal"`
	Backstory *string `json:"backstory"`
}

// Decode parses a rewrite response into a Spec. A fenced code block wrapper
// is stripped first. Both fields must be present, be strings, and be non-empty.
func Decode(raw string) (roles.Spec, error) {
	body := StripFence(raw)
	if body == "" {
		return roles.Spec{}, fmt.Errorf("%w: empty response", ErrMalformedRewrite)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var w wireSpec
	if err := dec.Decode(&w); err != nil {
		return roles.Spec{}, fmt.Errorf("%w: %v", ErrMalformedRewrite, err)
	}
	if dec.More() {
		return roles.Spec{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedRewrite)
	}

	var missing []string
	if w.Goal == nil || strings.TrimSpace(*w.Goal) == "" {
		missing = append(missing, "goal")
	}
	if w.Backstory == nil || strings.TrimSpace(*w.Backstory) == "" {
		missing = append(missing, "backstory")
	}
	if len(missing) > 0 {
		return roles.Spec{}, fmt.Errorf("%w: missing %s", ErrMalformedRewrite, strings.Join(missing, " and "))
	}

	return roles.Spec{Goal: *w.Goal, Backstory: *w.Backstory}, nil
}

// Rewriter asks a model for an improved Spec.
type Rewriter struct {
	model       model.Model
	locale      *prompt.Locale
	temperature float32
}

// New creates a Rewriter. A nil locale selects English.
func New(m model.Model, locale *prompt.Locale, temperature float32) *Rewriter {
	if locale == nil {
		locale = prompt.English()
	}
	return &Rewriter{model: m, locale: locale, temperature: temperature}
}

// Rewrite returns an improved Spec for the role described by roleLabel.
//
// A response that cannot be decoded leaves the role unchanged: current is
// returned with a nil error and a warning is logged. Only a failing model
// call yields an error. No retries are made.
func (r *Rewriter) Rewrite(ctx context.Context, current roles.Spec, feedback, roleLabel string) (roles.Spec, error) {
	req, err := prompt.BuildRewrite(r.locale, prompt.RewriteContext{
		RoleLabel: roleLabel,
		Goal:      current.Goal,
		Backstory: current.Backstory,
		Feedback:  feedback,
	})
	if err != nil {
		return current, fmt.Errorf("failed to build rewrite prompt: %w", err)
	}

	raw, err := r.model.Complete(ctx, req.System, req.User, r.temperature)
	if err != nil {
		return current, fmt.Errorf("rewrite model call for %s failed: %w", roleLabel, err)
	}

	improved, err := Decode(raw)
	if err != nil {
		log.Warn("failed to parse improved prompt, keeping current prompt",
			"role", roleLabel, "error", err)
		return current, nil
	}

	log.Debug("improved prompt", "role", roleLabel)
	return improved, nil
}
