// Package model provides the language model backends used for judging,
// rewriting, and running the research pipeline.
package model

import "context"

// Model completes a single system/user exchange. An empty reply is not an
// error; callers decide what an empty answer means.
type Model interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}

// Func adapts a plain function to the Model interface.
type Func func(ctx context.Context, system, user string, temperature float32) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	return f(ctx, system, user, temperature)
}
