package ai21

import (
	"context"
	"fmt"

	"github.com/viant/vendly/llms"
)

// Chat is an llms.ChatModel backed by the AI21 studio chat endpoint.
type Chat struct {
	client *Client
	model  string
}

// New creates an AI21 chat model. Connection settings resolve from cfg, the
// process environment, then defaults.
func New(model string, cfg Config) (*Chat, error) {
	if model == "" {
		return nil, fmt.Errorf("ai21: model is required")
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Chat{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *Chat) Model() string { return c.model }

// Generate produces completions for the conversation.
func (c *Chat) Generate(ctx context.Context, request llms.ChatRequest) (*llms.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = c.model
	}
	req := Request{
		Model:       model,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Stop:        request.Stop,
	}
	for _, m := range request.Messages {
		req.Messages = append(req.Messages, Message{Role: m.Role, Content: m.Content})
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
