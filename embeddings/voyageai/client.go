package voyageai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/viant/vendly/embeddings"
)

const (
	defaultBaseURL     = "https://api.voyageai.com/v1"
	embeddingsEndpoint = "/embeddings"
	defaultHTTPTimeout = 30 * time.Second
	envAPIKey          = "VOYAGE_API_KEY"
)

// ErrAPIKeyRequired is returned when no API key was supplied and the
// VOYAGE_API_KEY environment variable is unset.
var ErrAPIKeyRequired = errors.New("voyageai: api key required, set VOYAGE_API_KEY or pass it explicitly")

// Request represents the request structure for the VoyageAI embeddings API.
type Request struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	InputType  string   `json:"input_type,omitempty"`
	Truncation *bool    `json:"truncation,omitempty"`
}

// Response represents the response structure from the VoyageAI embeddings API.
type Response struct {
	Object string          `json:"object"`
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  EmbeddingUsage  `json:"usage"`
}

// EmbeddingData represents a single embedding in the VoyageAI response.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingUsage represents token usage information in the VoyageAI response.
type EmbeddingUsage struct {
	TotalTokens int `json:"total_tokens"`
}

// ClientOption configures the raw VoyageAI client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.HTTPClient = client
		}
	}
}

// WithTruncation sets the truncation flag sent with every request.
func WithTruncation(truncation bool) ClientOption {
	return func(c *Client) { c.Truncation = &truncation }
}

// Client is a raw HTTP client for the VoyageAI embeddings endpoint.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	Truncation *bool
	HTTPClient *http.Client
}

// NewClient creates a VoyageAI client. The API key falls back to the
// VOYAGE_API_KEY environment variable when not supplied.
func NewClient(apiKey, model string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv(envAPIKey)
	}
	if c.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if c.Model == "" {
		return nil, fmt.Errorf("voyageai: model is required")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Embed creates embeddings for the given texts in one request. It implements
// embeddings.BatchClient; splitting above the per-request limit is owned by
// the caller.
func (c *Client) Embed(ctx context.Context, texts []string, inputType embeddings.InputType) ([][]float32, error) {
	req := Request{Input: texts, Model: c.Model, InputType: string(inputType), Truncation: c.Truncation}
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+embeddingsEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Detail != "" {
			return nil, fmt.Errorf("voyageai API error: %s", errResp.Detail)
		}
		return nil, fmt.Errorf("voyageai API error: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var embeddingResp Response
	if err := json.Unmarshal(data, &embeddingResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out := make([][]float32, len(embeddingResp.Data))
	for i := range embeddingResp.Data {
		out[i] = embeddingResp.Data[i].Embedding
	}
	return out, nil
}
