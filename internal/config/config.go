// Package config provides configuration loading and validation for promptopt.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Standard config file location.
const defaultConfigPath = "~/.config/promptopt/config.json"

// Model providers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// ErrMissingCredentials is returned by CheckCredentials when the model
// provider cannot be reached with the current environment.
var ErrMissingCredentials = errors.New("missing model credentials")

// Config holds all promptopt configuration settings.
type Config struct {
	OutputDir       string      `json:"output_dir"`
	DatabasePath    string      `json:"database_path"`
	Iterations      int         `json:"iterations"`
	Locale          string      `json:"locale"`
	BestPromptsPath string      `json:"best_prompts_path"`
	InitialPrompts  string      `json:"initial_prompts"` // file path, "default" or "reference"
	ClampScores     bool        `json:"clamp_scores"`
	LogLevel        string      `json:"log_level"`
	Model           ModelConfig `json:"model"`

	// expandedPaths tracks whether ExpandPaths has been called.
	expandedPaths bool
}

// ModelConfig holds the model backend configuration.
type ModelConfig struct {
	Provider            string  `json:"provider"`
	JudgeModel          string  `json:"judge_model"`
	RewriteModel        string  `json:"rewrite_model"`
	PipelineModel       string  `json:"pipeline_model"`
	APIKeyEnv           string  `json:"api_key_env"`
	BaseURL             string  `json:"base_url"`
	Organization        string  `json:"organization"`
	RequestsPerMinute   int     `json:"requests_per_minute"` // 0 disables pacing
	JudgeTemperature    float32 `json:"judge_temperature"`
	RewriteTemperature  float32 `json:"rewrite_temperature"`
	PipelineTemperature float32 `json:"pipeline_temperature"`
	ClaudeBinary        string  `json:"claude_binary"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "optimization_results",
		DatabasePath:    "~/.local/share/promptopt/history.db",
		Iterations:      5,
		Locale:          "en",
		BestPromptsPath: "best_prompts.yaml",
		InitialPrompts:  "default",
		ClampScores:     true,
		LogLevel:        "info",
		Model: ModelConfig{
			Provider:            ProviderOpenAI,
			JudgeModel:          "gpt-4o",
			RewriteModel:        "gpt-4o",
			PipelineModel:       "gpt-4o-mini",
			APIKeyEnv:           "OPENAI_API_KEY",
			JudgeTemperature:    0.3,
			RewriteTemperature:  0.8,
			PipelineTemperature: 0.7,
			ClaudeBinary:        "claude",
		},
	}
}

// Load reads config from the standard location (~/.config/promptopt/config.json),
// falling back to defaults if the file doesn't exist.
// Missing fields use default values (not zero values).
func Load() (*Config, error) {
	configPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// If the file doesn't exist, returns default config.
// If the file exists but is invalid, returns an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.ExpandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into a temporary struct for merging.
	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfig(cfg, &fileCfg)

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fileConfig is used for parsing JSON with pointer fields to detect what was set.
type fileConfig struct {
	OutputDir       *string          `json:"output_dir"`
	DatabasePath    *string          `json:"database_path"`
	Iterations      *int             `json:"iterations"`
	Locale          *string          `json:"locale"`
	BestPromptsPath *string          `json:"best_prompts_path"`
	InitialPrompts  *string          `json:"initial_prompts"`
	ClampScores     *bool            `json:"clamp_scores"`
	LogLevel        *string          `json:"log_level"`
	Model           *fileModelConfig `json:"model"`
}

type fileModelConfig struct {
	Provider            *string  `json:"provider"`
	JudgeModel          *string  `json:"judge_model"`
	RewriteModel        *string  `json:"rewrite_model"`
	PipelineModel       *string  `json:"pipeline_model"`
	APIKeyEnv           *string  `json:"api_key_env"`
	BaseURL             *string  `json:"base_url"`
	Organization        *string  `json:"organization"`
	RequestsPerMinute   *int     `json:"requests_per_minute"`
	JudgeTemperature    *float32 `json:"judge_temperature"`
	RewriteTemperature  *float32 `json:"rewrite_temperature"`
	PipelineTemperature *float32 `json:"pipeline_temperature"`
	ClaudeBinary        *string  `json:"claude_binary"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

// mergeConfig merges file config values into the default config.
// Only non-nil values from the file config are applied.
func mergeConfig(cfg *Config, fileCfg *fileConfig) {
	setString(&cfg.OutputDir, fileCfg.OutputDir)
	setString(&cfg.DatabasePath, fileCfg.DatabasePath)
	if fileCfg.Iterations != nil {
		cfg.Iterations = *fileCfg.Iterations
	}
	setString(&cfg.Locale, fileCfg.Locale)
	setString(&cfg.BestPromptsPath, fileCfg.BestPromptsPath)
	setString(&cfg.InitialPrompts, fileCfg.InitialPrompts)
	if fileCfg.ClampScores != nil {
		cfg.ClampScores = *fileCfg.ClampScores
	}
	setString(&cfg.LogLevel, fileCfg.LogLevel)

	if m := fileCfg.Model; m != nil {
		setString(&cfg.Model.Provider, m.Provider)
		setString(&cfg.Model.JudgeModel, m.JudgeModel)
		setString(&cfg.Model.RewriteModel, m.RewriteModel)
		setString(&cfg.Model.PipelineModel, m.PipelineModel)
		setString(&cfg.Model.APIKeyEnv, m.APIKeyEnv)
		setString(&cfg.Model.BaseURL, m.BaseURL)
		setString(&cfg.Model.Organization, m.Organization)
		if m.RequestsPerMinute != nil {
			cfg.Model.RequestsPerMinute = *m.RequestsPerMinute
		}
		setFloat(&cfg.Model.JudgeTemperature, m.JudgeTemperature)
		setFloat(&cfg.Model.RewriteTemperature, m.RewriteTemperature)
		setFloat(&cfg.Model.PipelineTemperature, m.PipelineTemperature)
		setString(&cfg.Model.ClaudeBinary, m.ClaudeBinary)
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Iterations < 1 {
		errs = append(errs, errors.New("iterations must be >= 1"))
	}

	switch c.Locale {
	case "en", "ko":
	default:
		errs = append(errs, fmt.Errorf("locale must be \"en\" or \"ko\", got %q", c.Locale))
	}

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must be non-empty"))
	}

	if c.BestPromptsPath == "" {
		errs = append(errs, errors.New("best_prompts_path must be non-empty"))
	}

	switch c.Model.Provider {
	case ProviderOpenAI:
		if c.Model.APIKeyEnv == "" {
			errs = append(errs, errors.New("model.api_key_env must be non-empty"))
		}
	case ProviderClaude:
		if c.Model.ClaudeBinary == "" {
			errs = append(errs, errors.New("model.claude_binary must be non-empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("model.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderClaude, c.Model.Provider))
	}

	if c.Model.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("model.requests_per_minute must be >= 0"))
	}

	for name, t := range map[string]float32{
		"model.judge_temperature":    c.Model.JudgeTemperature,
		"model.rewrite_temperature":  c.Model.RewriteTemperature,
		"model.pipeline_temperature": c.Model.PipelineTemperature,
	} {
		if t < 0 || t > 2 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 2, got %v", name, t))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// CheckCredentials verifies that the configured model provider can be
// used. It is meant to run once before any iteration starts.
func (c *Config) CheckCredentials() error {
	switch c.Model.Provider {
	case ProviderOpenAI:
		if c.APIKey() == "" {
			return fmt.Errorf("%w: environment variable %s is not set", ErrMissingCredentials, c.Model.APIKeyEnv)
		}
	case ProviderClaude:
		if _, err := exec.LookPath(c.Model.ClaudeBinary); err != nil {
			return fmt.Errorf("%w: %s not found in PATH", ErrMissingCredentials, c.Model.ClaudeBinary)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrMissingCredentials, c.Model.Provider)
	}
	return nil
}

// APIKey returns the API key from the configured environment variable.
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Model.APIKeyEnv))
}

// ExpandPaths expands ~ to home directory in all path fields.
func (c *Config) ExpandPaths() error {
	if c.expandedPaths {
		return nil
	}

	var err error

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.DatabasePath, err = expandPath(c.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to expand database_path: %w", err)
	}

	c.BestPromptsPath, err = expandPath(c.BestPromptsPath)
	if err != nil {
		return fmt.Errorf("failed to expand best_prompts_path: %w", err)
	}

	if isPromptsFile(c.InitialPrompts) {
		c.InitialPrompts, err = expandPath(c.InitialPrompts)
		if err != nil {
			return fmt.Errorf("failed to expand initial_prompts: %w", err)
		}
	}

	c.expandedPaths = true
	return nil
}

// isPromptsFile reports whether the initial_prompts value names a file
// rather than a built-in set.
func isPromptsFile(s string) bool {
	switch s {
	case "", "default", "reference":
		return false
	}
	return true
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
