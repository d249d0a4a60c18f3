package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yoyogo96/ai-scientist-prompt-optimization/internal/log"
)

// ErrMissingAPIKey is returned when no OpenAI API key is configured.
var ErrMissingAPIKey = errors.New("missing the OpenAI API key")

// DefaultOpenAIModel is used when no model name is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAI is a Model backed by the OpenAI chat completions API.
type OpenAI struct {
	client *goopenai.Client
	model  string
}

var _ Model = (*OpenAI)(nil)

type openAIOptions struct {
	model        string
	baseURL      string
	organization string
	httpClient   *http.Client
}

// OpenAIOption configures an OpenAI backend.
type OpenAIOption func(*openAIOptions)

// WithModel sets the chat model name.
func WithModel(name string) OpenAIOption {
	return func(o *openAIOptions) {
		if name != "" {
			o.model = name
		}
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(o *openAIOptions) {
		o.baseURL = url
	}
}

// WithOrganization sets the OpenAI organization header.
func WithOrganization(org string) OpenAIOption {
	return func(o *openAIOptions) {
		o.organization = org
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *openAIOptions) {
		o.httpClient = c
	}
}

// NewOpenAI creates an OpenAI backend. The token is required.
func NewOpenAI(token string, opts ...OpenAIOption) (*OpenAI, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingAPIKey
	}

	o := &openAIOptions{
		model:      DefaultOpenAIModel,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}

	config := goopenai.DefaultConfig(token)
	if o.baseURL != "" {
		config.BaseURL = o.baseURL
	}
	config.OrgID = o.organization
	if o.httpClient != nil {
		config.HTTPClient = o.httpClient
	}

	return &OpenAI{
		client: goopenai.NewClientWithConfig(config),
		model:  o.model,
	}, nil
}

// Name returns the configured model name.
func (m *OpenAI) Name() string {
	return m.model
}

// Complete sends one chat completion request and returns the first choice.
func (m *OpenAI) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := m.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion (%s): %w", m.model, err)
	}
	if len(resp.Choices) == 0 {
		log.Warn("openai returned no choices", "model", m.model)
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
