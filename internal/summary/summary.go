// Package summary computes the statistics reported at the end of a run.
package summary

import (
	"time"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

// Entry is the part of an iteration record the summary needs.
type Entry struct {
	Iteration int
	Score     float64
}

// Summary holds the end-of-run statistics.
type Summary struct {
	InitialScore       float64 `json:"initial_score"`
	FinalScore         float64 `json:"final_score"`
	BestScore          float64 `json:"best_score"`
	TotalImprovement   float64 `json:"total_improvement"`
	AverageImprovement float64 `json:"average_improvement_per_iteration"`
	IterationCount     int     `json:"total_iterations"`
}

// Summarize computes a Summary from history in iteration order. The average
// improvement is the mean of consecutive score differences and is zero for
// fewer than two entries. An empty history yields the zero Summary.
func Summarize(history []Entry) Summary {
	if len(history) == 0 {
		return Summary{}
	}

	first := history[0].Score
	last := history[len(history)-1].Score
	best := first
	for _, e := range history[1:] {
		if e.Score > best {
			best = e.Score
		}
	}

	s := Summary{
		InitialScore:     first,
		FinalScore:       last,
		BestScore:        best,
		TotalImprovement: last - first,
		IterationCount:   len(history),
	}
	if len(history) >= 2 {
		var sum float64
		for i := 1; i < len(history); i++ {
			sum += history[i].Score - history[i-1].Score
		}
		s.AverageImprovement = sum / float64(len(history)-1)
	}
	return s
}

// IterationEntry is one iteration as written to the summary file.
type IterationEntry struct {
	Iteration int       `json:"iteration"`
	Score     float64   `json:"score"`
	Prompts   roles.Set `json:"prompts"`
}

// Report is the persisted form of a finished run.
type Report struct {
	RunID      string    `json:"run_id,omitempty"`
	Topic      string    `json:"research_topic"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary
	BestPrompts roles.Set        `json:"best_prompts"`
	Iterations  []IterationEntry `json:"iterations"`
}

// Entries returns the score entries of the report's iterations.
func (r Report) Entries() []Entry {
	entries := make([]Entry, len(r.Iterations))
	for i, it := range r.Iterations {
		entries[i] = Entry{Iteration: it.Iteration, Score: it.Score}
	}
	return entries
}
