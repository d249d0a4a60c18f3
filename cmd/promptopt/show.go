package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
)

func showCmd(configPath *string) *cobra.Command {
	var feedback bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the scores and best prompts of a run",
		Long: `Show the per-iteration scores, the summary and the best prompts of a run.
A unique prefix of the run ID is enough.

Example:
  promptopt show 3f2a9c1b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, *configPath, args[0], feedback)
		},
	}
	cmd.Flags().BoolVarP(&feedback, "feedback", "f", false, "Include the judge feedback of every iteration")
	return cmd
}

func runShow(cmd *cobra.Command, configPath, id string, withFeedback bool) error {
	database, err := openDB(configPath)
	if err != nil {
		return err
	}
	defer func() {
		log.CloseError("database", database.Close())
	}()

	ctx := cmd.Context()
	run, err := database.FindRun(ctx, id)
	if err != nil {
		return fmt.Errorf("run %s: %w", id, err)
	}
	iterations, err := database.ListIterations(ctx, run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:     %s\n", run.ID)
	fmt.Fprintf(out, "Topic:   %s\n", run.Topic)
	fmt.Fprintf(out, "Status:  %s %s\n", statusIcon(run.Status), run.Status)
	fmt.Fprintf(out, "Started: %s\n", run.CreatedAt.Local().Format(timeLayout))
	if run.OutputDir != "" {
		fmt.Fprintf(out, "Output:  %s\n", run.OutputDir)
	}
	if run.Error != "" {
		fmt.Fprintf(out, "Error:   %s\n", run.Error)
	}

	if len(iterations) == 0 {
		fmt.Fprintln(out, "\nNo iterations recorded")
		return nil
	}

	fmt.Fprintln(out, "\nIterations:")
	entries := make([]summary.Entry, len(iterations))
	for i, it := range iterations {
		entries[i] = summary.Entry{Iteration: it.Index, Score: it.Score}
		line := fmt.Sprintf("  %2d. %5.1f/100", it.Index, it.Score)
		if i > 0 {
			line += fmt.Sprintf("  (%+.1f)", it.Delta)
		}
		if !it.Parsed {
			line += "  [fallback score]"
		}
		fmt.Fprintln(out, line)
		if withFeedback && it.Feedback != "" {
			writeIndented(out, "      ", it.Feedback)
		}
	}

	fmt.Fprintln(out)
	if err := summary.Render(out, summary.Summarize(entries)); err != nil {
		return err
	}

	if run.BestRoles.IsZero() {
		return nil
	}
	locale, err := prompt.ByName(run.Locale)
	if err != nil {
		locale = prompt.English()
	}
	fmt.Fprintf(out, "\nBest prompts (score %.1f/100):\n", run.BestScore)
	for _, rid := range roles.IDs() {
		spec := run.BestRoles.Get(rid)
		fmt.Fprintf(out, "\n[%s]\n", locale.RoleLabel(rid))
		fmt.Fprintf(out, "  Goal: %s\n", spec.Goal)
		fmt.Fprintf(out, "  Backstory: %s\n", spec.Backstory)
	}
	return nil
}
