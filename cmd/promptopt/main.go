// Package main is the entry point for the promptopt CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The optimizer checks for cancellation between iterations.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(runApp).ExecuteContext(ctx)
}

// runFunc starts an optimization. Tests replace it to check flag handling.
type runFunc func(ctx context.Context, cfg app.Config, useTUI bool) error

func newRootCmd(runOpt runFunc) *cobra.Command {
	var (
		cfg    app.Config
		useTUI bool
	)

	rootCmd := &cobra.Command{
		Use:   "promptopt [topic]",
		Short: "Optimize the prompts of a three-agent research pipeline",
		Long: `promptopt improves the role prompts of a researcher, analyst and writer
pipeline. Each iteration runs the pipeline on a research topic, has a judge
model score the report, and rewrites every role prompt from the judge's
feedback. The best-scoring prompt set is saved at the end.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Topic = args[0]
			}
			cfg.Out = cmd.OutOrStdout()
			return runOpt(cmd.Context(), cfg, useTUI)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&cfg.Iterations, "iterations", "n", 0, "Number of iterations (default from config, 5)")
	flags.StringVarP(&cfg.Locale, "locale", "l", "", "Prompt language: en or ko")
	flags.StringVarP(&cfg.Prompts, "prompts", "p", "", "Starting prompts: a YAML/JSON file, \"default\" or \"reference\"")
	flags.StringVarP(&cfg.OutputDir, "output", "o", "", "Directory for per-iteration results")
	flags.StringVar(&cfg.BestPath, "best", "", "File the best prompts are saved to")
	flags.BoolVar(&useTUI, "tui", false, "Show progress in a terminal UI")
	flags.BoolVar(&cfg.Baseline, "baseline", false, "Run and score the starting prompts once without optimizing")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.PersistentFlags().StringVar(&cfg.ConfigPath, "config", "", "Config file (default ~/.config/promptopt/config.json)")

	rootCmd.AddCommand(historyCmd(&cfg.ConfigPath))
	rootCmd.AddCommand(showCmd(&cfg.ConfigPath))

	return rootCmd
}

func runApp(ctx context.Context, cfg app.Config, useTUI bool) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	var res *app.Result
	if useTUI {
		res, err = a.RunTUI(ctx)
	} else {
		res, err = a.Run(ctx)
	}
	if err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("run %s stopped: %w", res.RunID, res.Err)
	}
	return nil
}
