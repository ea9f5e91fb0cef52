package ai21

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/viant/vendly/config"
)

const (
	defaultAPIHost = "https://api.ai21.com"
	chatEndpoint   = "/studio/v1/chat/completions"
	defaultTimeout = 300 * time.Second

	envAPIKey     = "AI21_API_KEY"
	envAPIHost    = "AI21_API_URL"
	envTimeout    = "AI21_TIMEOUT_SEC"
	envNumRetries = "AI21_NUM_RETRIES"
)

// ErrAPIKeyRequired is returned when no API key was supplied and the
// AI21_API_KEY environment variable is unset.
var ErrAPIKeyRequired = errors.New("ai21: api key required, set AI21_API_KEY or pass it explicitly")

// Config holds AI21 connection settings. Every field resolves from the
// explicit value, then the process environment, then a hard-coded default.
type Config struct {
	APIKey     string
	APIHost    string
	Timeout    time.Duration
	NumRetries int
}

// ResolveConfig fills unset fields from AI21_API_KEY, AI21_API_URL,
// AI21_TIMEOUT_SEC and AI21_NUM_RETRIES, then defaults.
func ResolveConfig(cfg Config) (Config, error) {
	cfg.APIKey = config.Lookup(cfg.APIKey, envAPIKey, "")
	if cfg.APIKey == "" {
		return cfg, ErrAPIKeyRequired
	}
	cfg.APIHost = config.Lookup(cfg.APIHost, envAPIHost, defaultAPIHost)
	timeout, err := config.LookupSeconds(cfg.Timeout, envTimeout, defaultTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.Timeout = timeout
	retries, err := config.LookupInt(cfg.NumRetries, envNumRetries, 0)
	if err != nil {
		return cfg, err
	}
	cfg.NumRetries = retries
	return cfg, nil
}

// Request represents the request structure for the AI21 chat API.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// Message is one chat turn on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response structure from the AI21 chat API.
type Response struct {
	ID      string        `json:"id"`
	Choices []Choice      `json:"choices"`
	Usage   ResponseUsage `json:"usage"`
}

// Choice is a single completion in the AI21 response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ResponseUsage reports token accounting for one call.
type ResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// apiError is a non-2xx response from the AI21 API.
type apiError struct {
	StatusCode int
	Detail     string
}

func (e *apiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ai21 API error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("ai21 API error (%d)", e.StatusCode)
}

// Client is a raw HTTP client for the AI21 studio chat endpoint. Retry on
// transient failure lives here, in the vendor client; adapter layers above
// never retry.
type Client struct {
	Config     Config
	HTTPClient *http.Client
}

// NewClient creates an AI21 client from resolved configuration.
func NewClient(cfg Config) (*Client, error) {
	resolved, err := ResolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		Config:     resolved,
		HTTPClient: &http.Client{Timeout: resolved.Timeout},
	}, nil
}

// CreateChatCompletion posts one chat completion request, retrying transient
// failures up to NumRetries additional attempts.
func (c *Client) CreateChatCompletion(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Config.NumRetries; attempt++ {
		resp, err := c.do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.APIHost+chatEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Config.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(data, &errResp)
		return nil, &apiError{StatusCode: resp.StatusCode, Detail: errResp.Detail}
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func retryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	// Transport-level failures are retryable; payload handling errors are not.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
