package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Narrate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}
		if !strings.Contains(req.Prompt, "Verdict: suspicious") {
			t.Error("prompt should carry the verdict")
		}

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.1",
			Response:        "The detectors rated this content as moderately risky.",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:         server.URL,
		Model:           "llama3.1",
		Timeout:         5,
		StrictCitations: true,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	resp, err := provider.Narrate(context.Background(), NarrateRequest{Record: *sampleRecord()})
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}

	if resp.Text != "The detectors rated this content as moderately risky." {
		t.Errorf("unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("expected 30 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "llama3.1" {
		t.Errorf("unexpected model: %s", resp.Model)
	}
}

func TestOllamaProvider_StrictCitations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    "llama3.1",
			Response: "Proof at https://invented.example.com/source",
			Done:     true,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:         server.URL,
		Model:           "llama3.1",
		Timeout:         5,
		StrictCitations: true,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	if _, err := provider.Narrate(context.Background(), NarrateRequest{Record: *sampleRecord()}); err == nil {
		t.Error("expected citation rejection in strict mode")
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	_, err = provider.Narrate(context.Background(), NarrateRequest{Record: *sampleRecord()})
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	if _, err := provider.Narrate(context.Background(), NarrateRequest{Record: *sampleRecord()}); err == nil {
		t.Error("expected error when no model is configured")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected path /api/tags, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if !provider.IsAvailable(context.Background()) {
		t.Error("expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable after server close")
	}
}
