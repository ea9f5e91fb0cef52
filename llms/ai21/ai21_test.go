package ai21

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/viant/vendly/llms"
)

func TestResolveConfig(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envAPIHost, "")
	t.Setenv(envTimeout, "")
	t.Setenv(envNumRetries, "")

	if _, err := ResolveConfig(Config{}); err != ErrAPIKeyRequired {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}

	t.Setenv(envAPIKey, "env-key")
	cfg, err := ResolveConfig(Config{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("expected env api key, got %s", cfg.APIKey)
	}
	if cfg.APIHost != defaultAPIHost {
		t.Fatalf("expected default host, got %s", cfg.APIHost)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.NumRetries != 0 {
		t.Fatalf("expected zero retries, got %d", cfg.NumRetries)
	}

	t.Setenv(envAPIHost, "https://env.ai21.example")
	t.Setenv(envTimeout, "60")
	t.Setenv(envNumRetries, "2")
	cfg, err = ResolveConfig(Config{APIKey: "explicit-key"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.APIKey != "explicit-key" {
		t.Fatalf("explicit key should win, got %s", cfg.APIKey)
	}
	if cfg.APIHost != "https://env.ai21.example" {
		t.Fatalf("expected env host, got %s", cfg.APIHost)
	}
	if cfg.Timeout != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %v", cfg.Timeout)
	}
	if cfg.NumRetries != 2 {
		t.Fatalf("expected 2 retries, got %d", cfg.NumRetries)
	}
}

func TestChat_Generate(t *testing.T) {
	var gotReq Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatEndpoint {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Response{
			ID: "chat-1",
			Choices: []Choice{
				{Index: 0, Message: Message{Role: "assistant", Content: "hello there"}, FinishReason: "stop"},
			},
			Usage: ResponseUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	}))
	defer server.Close()

	chat, err := New("jamba-instruct", Config{APIKey: "test-key", APIHost: server.URL})
	if err != nil {
		t.Fatalf("new chat: %v", err)
	}
	resp, err := chat.Generate(context.Background(), llms.ChatRequest{
		Messages:  []llms.Message{{Role: llms.RoleUser, Content: "hi"}},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotReq.Model != "jamba-instruct" {
		t.Fatalf("expected configured model, got %s", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hi" {
		t.Fatalf("unexpected messages: %v", gotReq.Messages)
	}
	if len(resp.Generations) != 1 || resp.Generations[0].Text != "hello there" {
		t.Fatalf("unexpected generations: %v", resp.Generations)
	}
	if resp.Usage.TotalTokens != 5 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(Response{
			Choices: []Choice{{Message: Message{Content: "ok"}}},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", APIHost: server.URL, NumRetries: 3})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.CreateChatCompletion(context.Background(), Request{Model: "jamba-instruct"})
	if err != nil {
		t.Fatalf("create chat completion: %v", err)
	}
	if resp.Choices[0].Message.Content != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid api key"})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "bad-key", APIHost: server.URL, NumRetries: 3})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateChatCompletion(context.Background(), Request{Model: "jamba-instruct"}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}
