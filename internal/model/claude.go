package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
)

// ErrCommandNotFound is returned when the claude binary is not found in PATH.
var ErrCommandNotFound = errors.New("claude command not found")

// CommandCreator is a function type for creating exec.Cmd instances.
// It allows mocking command execution in tests.
type CommandCreator func(ctx context.Context, name string, args ...string) *exec.Cmd

func defaultCommandCreator(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// ClaudeConfig holds configuration for the claude CLI backend.
type ClaudeConfig struct {
	Binary   string // defaults to "claude"
	Model    string
	MaxTurns int
}

// Claude is a Model that runs the claude CLI in print mode.
// The CLI has no sampling temperature flag, so temperature is ignored.
type Claude struct {
	binary   string
	model    string
	maxTurns int

	commandCreator CommandCreator
}

var _ Model = (*Claude)(nil)

// NewClaude creates a claude CLI backend.
func NewClaude(cfg ClaudeConfig) *Claude {
	binary := cfg.Binary
	if binary == "" {
		binary = "claude"
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 1
	}
	return &Claude{
		binary:         binary,
		model:          cfg.Model,
		maxTurns:       maxTurns,
		commandCreator: defaultCommandCreator,
	}
}

// SetCommandCreator sets a custom command creator (for testing).
func (c *Claude) SetCommandCreator(creator CommandCreator) {
	c.commandCreator = creator
}

// claudeResult is the single JSON object printed by --output-format json.
type claudeResult struct {
	Type      string  `json:"type"`
	Subtype   string  `json:"subtype"`
	IsError   bool    `json:"is_error"`
	Result    string  `json:"result"`
	SessionID string  `json:"session_id"`
	CostUSD   float64 `json:"total_cost_usd"`
	NumTurns  int     `json:"num_turns"`
}

// Complete runs one non-interactive claude session.
func (c *Claude) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	args := []string{
		"-p",
		"--output-format", "json",
		"--max-turns", strconv.Itoa(c.maxTurns),
	}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	if system != "" {
		args = append(args, "--system-prompt", system)
	}
	args = append(args, user)

	cmd := c.commandCreator(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running claude", "model", c.model, "temperature_ignored", temperature)

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", ErrCommandNotFound
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("claude exited with error: %s", msg)
			}
			return "", fmt.Errorf("claude exited with code %d", exitErr.ExitCode())
		}
		return "", fmt.Errorf("claude process error: %w", err)
	}

	var res claudeResult
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &res); err != nil {
		return "", fmt.Errorf("failed to parse claude output: %w", err)
	}
	if res.IsError {
		return "", fmt.Errorf("claude returned an error result (%s): %s", res.Subtype, res.Result)
	}
	log.Debug("claude session finished", "session", res.SessionID, "cost_usd", res.CostUSD, "turns", res.NumTurns)
	return res.Result, nil
}

// LookPath reports whether the configured binary can be found.
func (c *Claude) LookPath() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return ErrCommandNotFound
	}
	return nil
}
