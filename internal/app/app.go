// Package app wires configuration, models, storage and the optimizer into a
// single run, with either console output or the TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/config"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/db"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/judge"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/model"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/optimizer"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/pipeline"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/prompt"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/recorder"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/rewrite"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/roles"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/summary"
	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/tui"
)

// DefaultTopic is the research topic used when none is given.
const DefaultTopic = "The impact of artificial intelligence on scientific research productivity"

// LogFile is the file logs are written to, inside the output directory,
// while the TUI owns the terminal.
const LogFile = "promptopt.log"

// Config holds command-line overrides for creating a new App. Zero values
// keep the value from the config file.
type Config struct {
	// ConfigPath is the config file to load. Empty means the standard location.
	ConfigPath string

	Topic      string
	Iterations int
	Locale     string
	Prompts    string // file path, "default" or "reference"
	OutputDir  string
	BestPath   string
	LogLevel   string

	// Baseline runs a single iteration without saving best prompts.
	Baseline bool

	// Out receives console output. Defaults to os.Stdout.
	Out io.Writer
}

// App runs one optimization.
type App struct {
	cfg      *config.Config
	topic    string
	baseline bool
	out      io.Writer
	locale   *prompt.Locale

	db  *db.DB
	run *db.Run

	// For testing: a single model used for every role, skipping the
	// credential check.
	modelOverride model.Model
}

// Result holds the outcome of a run.
type Result struct {
	RunID    string
	State    *optimizer.State
	BestPath string // empty when best prompts were not saved
	Err      error
}

// New loads configuration, applies overrides and validates the result.
func New(cfg Config) (*App, error) {
	var appConfig *config.Config
	var err error
	if cfg.ConfigPath != "" {
		appConfig, err = config.LoadFromPath(cfg.ConfigPath)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyOverrides(appConfig, cfg); err != nil {
		return nil, err
	}

	if err := log.SetLevelName(appConfig.LogLevel); err != nil {
		return nil, err
	}

	locale, err := prompt.ByName(appConfig.Locale)
	if err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = DefaultTopic
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &App{
		cfg:      appConfig,
		topic:    topic,
		baseline: cfg.Baseline,
		out:      out,
		locale:   locale,
	}, nil
}

// applyOverrides merges command-line values into the loaded config and
// validates the result.
func applyOverrides(c *config.Config, o Config) error {
	if o.Iterations != 0 {
		c.Iterations = o.Iterations
	}
	if o.Baseline {
		c.Iterations = 1
	}
	if o.Locale != "" {
		c.Locale = o.Locale
	}
	if o.Prompts != "" {
		c.InitialPrompts = o.Prompts
	}
	if o.OutputDir != "" {
		c.OutputDir = filepath.Clean(o.OutputDir)
	}
	if o.BestPath != "" {
		c.BestPromptsPath = filepath.Clean(o.BestPath)
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SetModel injects a model used for every role. Intended for tests.
func (a *App) SetModel(m model.Model) {
	a.modelOverride = m
}

// Topic returns the research topic of the run.
func (a *App) Topic() string {
	return a.topic
}

// RunID returns the current run ID, or empty string if not started.
func (a *App) RunID() string {
	if a.run != nil {
		return a.run.ID
	}
	return ""
}

// models returns the judge, rewrite and pipeline models. Credentials are
// checked here, before anything is written.
func (a *App) models() (judgeModel, rewriteModel, pipelineModel model.Model, err error) {
	if a.modelOverride != nil {
		return a.modelOverride, a.modelOverride, a.modelOverride, nil
	}

	if err := a.cfg.CheckCredentials(); err != nil {
		return nil, nil, nil, err
	}

	mc := a.cfg.Model
	build := func(name string) (model.Model, error) {
		switch mc.Provider {
		case config.ProviderClaude:
			return model.NewPaced(model.NewClaude(model.ClaudeConfig{
				Binary: mc.ClaudeBinary,
				Model:  name,
			}), mc.RequestsPerMinute), nil
		default:
			m, err := model.NewOpenAI(a.cfg.APIKey(),
				model.WithModel(name),
				model.WithBaseURL(mc.BaseURL),
				model.WithOrganization(mc.Organization),
			)
			if err != nil {
				return nil, err
			}
			return model.NewPaced(m, mc.RequestsPerMinute), nil
		}
	}

	if judgeModel, err = build(mc.JudgeModel); err != nil {
		return nil, nil, nil, err
	}
	if rewriteModel, err = build(mc.RewriteModel); err != nil {
		return nil, nil, nil, err
	}
	if pipelineModel, err = build(mc.PipelineModel); err != nil {
		return nil, nil, nil, err
	}
	return judgeModel, rewriteModel, pipelineModel, nil
}

// initialPrompts loads the starting role set from a file or a built-in name.
func (a *App) initialPrompts() (roles.Set, error) {
	switch a.cfg.InitialPrompts {
	case "", "default", "reference":
		return roles.Builtin(a.cfg.InitialPrompts, a.cfg.Locale)
	default:
		set, err := roles.Load(a.cfg.InitialPrompts)
		if err != nil {
			return roles.Set{}, fmt.Errorf("failed to load initial prompts: %w", err)
		}
		return set, nil
	}
}

// prepare builds every collaborator and registers the run. The caller must
// call cleanup.
func (a *App) prepare(ctx context.Context) (*optimizer.Optimizer, error) {
	judgeModel, rewriteModel, pipelineModel, err := a.models()
	if err != nil {
		return nil, err
	}

	initial, err := a.initialPrompts()
	if err != nil {
		return nil, err
	}

	database, err := db.New(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = database

	a.run = &db.Run{
		ID:         uuid.New().String(),
		Topic:      a.topic,
		Locale:     a.locale.Name,
		Iterations: a.cfg.Iterations,
		OutputDir:  a.cfg.OutputDir,
	}
	if err := a.db.CreateRun(ctx, a.run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	mc := a.cfg.Model
	crew := pipeline.New(pipelineModel, a.locale,
		pipeline.WithTemperature(mc.PipelineTemperature),
		pipeline.WithStepFunc(func(s pipeline.Step) {
			log.Debug("agent step finished", "role", s.Role, "duration", s.Duration, "chars", len(s.Output))
		}),
	)

	return optimizer.New(optimizer.Config{
		RunID:      a.run.ID,
		Topic:      a.topic,
		Iterations: a.cfg.Iterations,
		Initial:    initial,
	}, optimizer.Deps{
		Pipeline:  crew,
		Evaluator: judge.New(judgeModel, a.locale, judge.WithTemperature(mc.JudgeTemperature), judge.WithClamp(a.cfg.ClampScores)),
		Rewriter:  rewrite.New(rewriteModel, a.locale, mc.RewriteTemperature),
		Recorder: recorder.Multi(
			recorder.NewFileRecorder(a.cfg.OutputDir),
			recorder.NewStoreRecorder(a.db, a.run.ID),
		),
		Locale: a.locale,
	}), nil
}

// cleanup releases resources.
func (a *App) cleanup() {
	if a.db != nil {
		log.CloseError("database", a.db.Close())
		a.db = nil
	}
}

// finish marks a failed run in the database and, on success, saves and
// prints the best prompts.
func (a *App) finish(state *optimizer.State, runErr error) *Result {
	res := &Result{RunID: a.run.ID, State: state, Err: runErr}

	if runErr != nil {
		status := db.RunFailed
		if errors.Is(runErr, context.Canceled) {
			status = db.RunCanceled
		}
		// The run context may be canceled already.
		if err := a.db.FinishRun(context.Background(), a.run.ID, status, runErr.Error()); err != nil {
			log.Warn("failed to mark run finished", "run", a.run.ID, "error", err)
		}
		if len(state.History) > 0 {
			a.printResults(state)
		}
		return res
	}

	a.printResults(state)

	if a.baseline {
		return res
	}
	if err := recorder.SaveBest(a.cfg.BestPromptsPath, state.BestRoles); err != nil {
		res.Err = fmt.Errorf("failed to save best prompts: %w", err)
		return res
	}
	res.BestPath = a.cfg.BestPromptsPath
	fmt.Fprintf(a.out, "\nBest prompts saved to %s\n", a.cfg.BestPromptsPath)
	return res
}

// printResults prints the summary table and the best role set.
func (a *App) printResults(state *optimizer.State) {
	fmt.Fprintln(a.out)
	if err := summary.Render(a.out, state.Summary); err != nil {
		log.Warn("failed to render summary", "error", err)
	}
	printBestPrompts(a.out, a.locale, state.BestRoles, state.BestScore)
}

// Run executes the optimization with console output.
func (a *App) Run(ctx context.Context) (*Result, error) {
	opt, err := a.prepare(ctx)
	defer a.cleanup()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Run %s\nTopic: %s\n", a.run.ID, a.topic)

	console := newConsole(a.out)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range opt.Events() {
			console.handle(event)
		}
	}()

	state, runErr := opt.Run(ctx)
	<-done

	return a.finish(state, runErr), nil
}

// RunTUI executes the optimization under the TUI. Logs go to LogFile in
// the output directory while the TUI is up. Quitting the TUI cancels the
// run between iterations.
func (a *App) RunTUI(ctx context.Context) (*Result, error) {
	opt, err := a.prepare(ctx)
	defer a.cleanup()
	if err != nil {
		return nil, err
	}

	restore, err := redirectLogs(filepath.Join(a.cfg.OutputDir, LogFile))
	if err != nil {
		a.abort(err)
		return nil, err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		wg     sync.WaitGroup
		state  *optimizer.State
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		state, runErr = opt.Run(runCtx)
	}()

	tuiErr := tui.Run(opt.Events())

	// Stop the run when the TUI exits, then wait for the current iteration.
	cancelRun()
	wg.Wait()
	restore()

	if tuiErr != nil {
		err := fmt.Errorf("tui failed: %w", tuiErr)
		a.abort(err)
		return nil, err
	}
	return a.finish(state, runErr), nil
}

// abort marks a registered run as failed when the app gives up on it
// outside the optimizer.
func (a *App) abort(err error) {
	if a.db == nil || a.run == nil {
		return
	}
	if ferr := a.db.FinishRun(context.Background(), a.run.ID, db.RunFailed, err.Error()); ferr != nil {
		log.Warn("failed to mark run finished", "run", a.run.ID, "error", ferr)
	}
}

// redirectLogs points the logger at a file and returns a function that
// restores stderr.
func redirectLogs(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		log.CloseError("log file", f.Close())
	}, nil
}
