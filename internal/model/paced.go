package model

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Paced spaces out calls to a Model so that no more than a fixed number of
// requests start per minute. It does not retry.
type Paced struct {
	next    Model
	limiter *rate.Limiter
}

var _ Model = (*Paced)(nil)

// NewPaced wraps m with a requests-per-minute limit.
// A non-positive limit returns m unchanged.
func NewPaced(m Model, requestsPerMinute int) Model {
	if requestsPerMinute <= 0 {
		return m
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Paced{
		next:    m,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Complete waits for the limiter, then delegates.
func (p *Paced) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for model rate limit: %w", err)
	}
	return p.next.Complete(ctx, system, user, temperature)
}
