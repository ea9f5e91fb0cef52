package llms

import "context"

// Chat roles understood by the wrapped providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generation is a single model completion.
type Generation struct {
	Text string `json:"text"`
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatRequest describes one generation call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// ChatResponse carries the provider's completions.
type ChatResponse struct {
	Generations []Generation
	Usage       Usage
}

// ChatModel generates completions for a chat conversation.
type ChatModel interface {
	Generate(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}
