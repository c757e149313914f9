package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaBackend_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Options.NumPredict != 256 {
			t.Errorf("Expected num_predict 256, got %d", req.Options.NumPredict)
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1",
			Response:        "[]",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	resp, err := backend.Complete(context.Background(), Request{Prompt: "extract", MaxTokens: 256})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "[]" {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOllamaBackend_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'llama3.1' not found"}`))
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	_, err = backend.Complete(context.Background(), Request{Prompt: "q"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected upstream message in error, got %v", err)
	}
}

func TestOllamaBackend_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Complete(context.Background(), Request{Prompt: "q"}); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestNewOllamaBackend_NoModel(t *testing.T) {
	if _, err := NewOllamaBackend(Config{}); err == nil {
		t.Error("Expected error when model is not specified")
	}
}
