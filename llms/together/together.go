package together

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"github.com/viant/vendly/config"
	"github.com/viant/vendly/llms"
)

const (
	// DefaultBaseURL is Together's OpenAI-compatible API endpoint.
	DefaultBaseURL = "https://api.together.xyz/v1"

	envAPIKey = "TOGETHER_API_KEY"
)

// ErrAPIKeyRequired is returned when no API key was supplied and the
// TOGETHER_API_KEY environment variable is unset.
var ErrAPIKeyRequired = errors.New("together: api key required, set TOGETHER_API_KEY or pass it explicitly")

// Option configures the Together chat model.
type Option func(*Chat)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Chat) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// Chat is an llms.ChatModel backed by Together's OpenAI-compatible API.
type Chat struct {
	client  *openai.Client
	model   string
	baseURL string
}

// New creates a Together chat model. The API key falls back to
// TOGETHER_API_KEY when empty.
func New(apiKey, model string, opts ...Option) (*Chat, error) {
	apiKey = config.Lookup(apiKey, envAPIKey, "")
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if model == "" {
		return nil, errors.New("together: model is required")
	}
	c := &Chat{model: model, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL
	c.client = openai.NewClientWithConfig(cfg)
	return c, nil
}

// Model returns the configured model name.
func (c *Chat) Model() string { return c.model }

// Generate produces completions for the conversation.
func (c *Chat) Generate(ctx context.Context, request llms.ChatRequest) (*llms.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = c.model
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   request.MaxTokens,
		Temperature: float32(request.Temperature),
		Stop:        request.Stop,
	}
	for _, m := range request.Messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &llms.ChatResponse{
		Usage: llms.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		out.Generations = append(out.Generations, llms.Generation{Text: choice.Message.Content})
	}
	return out, nil
}
