package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/optimizer"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
)

const bannerWidth = 60

// console prints optimizer events as plain progress lines.
type console struct {
	w       io.Writer
	newBest bool // set by EventNewBest within the current iteration
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

func (c *console) handle(e optimizer.Event) {
	switch e.Type {
	case optimizer.EventIterationStart:
		c.newBest = false
		rule := strings.Repeat("=", bannerWidth)
		fmt.Fprintf(c.w, "\n%s\nIteration %d/%d\n%s\n", rule, e.Iteration, e.MaxIter, rule)

	case optimizer.EventPipelineStart:
		fmt.Fprintln(c.w, "Running research pipeline...")

	case optimizer.EventPipelineEnd:
		fmt.Fprintln(c.w, "Evaluating output...")

	case optimizer.EventEvaluated:
		fmt.Fprintf(c.w, "Score: %.1f/100\n", e.Score)
		if e.Iteration > 1 {
			fmt.Fprintf(c.w, "Improvement: %+.1f\n", e.Delta)
		}

	case optimizer.EventNewBest:
		c.newBest = true
		fmt.Fprintf(c.w, "New best score: %.1f/100\n", e.Score)

	case optimizer.EventRewriteStart:
		fmt.Fprintf(c.w, "%s...\n", e.Message)

	case optimizer.EventIterationEnd:
		if !c.newBest {
			fmt.Fprintf(c.w, "Best score remains %.1f/100\n", e.BestScore)
		}

	case optimizer.EventCompleted:
		fmt.Fprintf(c.w, "\n%s\n", e.Message)

	case optimizer.EventCanceled:
		fmt.Fprintf(c.w, "\n%s after %d iteration(s)\n", e.Message, e.Iteration)

	case optimizer.EventError:
		fmt.Fprintf(c.w, "\nError: %s\n", e.Message)
	}
}

// printBestPrompts prints every role of the best set under its label.
func printBestPrompts(w io.Writer, locale *prompt.Locale, set roles.Set, score float64) {
	if set.IsZero() {
		return
	}
	fmt.Fprintf(w, "\nBest prompts (score %.1f/100)\n", score)
	for _, id := range roles.IDs() {
		spec := set.Get(id)
		fmt.Fprintf(w, "\n[%s]\n", locale.RoleLabel(id))
		fmt.Fprintf(w, "  Goal: %s\n", spec.Goal)
		fmt.Fprintf(w, "  Backstory: %s\n", spec.Backstory)
	}
}
