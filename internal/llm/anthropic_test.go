package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/trustie/internal/model"
)

func TestAnthropicBackend_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Tools) != 0 {
			t.Errorf("Expected no tools without web search, got %d", len(req.Tools))
		}
		if req.System != "be brief" {
			t.Errorf("Expected system prompt to be forwarded, got %q", req.System)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_123", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "  Paris is the capital.  "}],
			"usage": {"input_tokens": 40, "output_tokens": 10}
		}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Complete(context.Background(), Request{System: "be brief", Prompt: "capital of France?"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "Paris is the capital." {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("Expected 50 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicBackend_Complete_WebSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Tools) != 1 {
			t.Fatalf("Expected 1 tool, got %d", len(req.Tools))
		}
		if req.Tools[0].Type != "web_search_20250305" {
			t.Errorf("Expected web_search_20250305 tool, got %s", req.Tools[0].Type)
		}
		if req.Tools[0].MaxUses != 2 {
			t.Errorf("Expected max_uses 2, got %d", req.Tools[0].MaxUses)
		}

		_, _ = w.Write([]byte(`{
			"model": "claude-sonnet-4-20250514",
			"content": [
				{"type": "text", "text": "Let me search. "},
				{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search"},
				{"type": "web_search_tool_result", "tool_use_id": "srvtoolu_1"},
				{"type": "text", "text": "[{\"url\": \"https://example.com\"}]"}
			],
			"usage": {"input_tokens": 10, "output_tokens": 5, "server_tool_use": {"web_search_requests": 1}}
		}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL, MaxSearches: 3})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Complete(context.Background(), Request{Prompt: "q", WebSearch: true, MaxSearches: 2})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if !strings.HasPrefix(resp.Text, "Let me search.") || !strings.HasSuffix(resp.Text, `"https://example.com"}]`) {
		t.Errorf("Expected text blocks concatenated in order, got %q", resp.Text)
	}
	if resp.Searches != 1 {
		t.Errorf("Expected 1 search, got %d", resp.Searches)
	}
}

func TestAnthropicBackend_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	_, err = backend.Complete(context.Background(), Request{Prompt: "q"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "rate_limit_error") {
		t.Errorf("Expected error type in message, got %v", err)
	}
}

func TestAnthropicBackend_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Complete(context.Background(), Request{Prompt: "q"}); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestAnthropicBackend_Complete_NoText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "server_tool_use"}]}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Complete(context.Background(), Request{Prompt: "q"}); err == nil {
		t.Fatal("Expected error for reply without text blocks, got nil")
	}
}

func TestNewAnthropicBackend_MissingKey(t *testing.T) {
	_, err := NewAnthropicBackend(Config{})
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}
