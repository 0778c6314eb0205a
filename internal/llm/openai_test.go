package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type openaiChatStub struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func openaiStub(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}

		var resp openaiChatStub
		resp.Choices = make([]struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = text
		resp.Usage.TotalTokens = 42
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenAIProvider_Narrate(t *testing.T) {
	server := openaiStub(t, "Text analysis drove the elevated risk score.")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:          "test-key",
		BaseURL:         server.URL,
		Model:           "gpt-4o-mini",
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

	if resp.Text != "Text analysis drove the elevated risk score." {
		t.Errorf("unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("expected 42 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %s", resp.Model)
	}
}

func TestOpenAIProvider_StrictCitations(t *testing.T) {
	server := openaiStub(t, "Verified against https://phantom.example.net/study")
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:          "test-key",
		BaseURL:         server.URL,
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

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	if _, err := provider.Narrate(context.Background(), NarrateRequest{Record: *sampleRecord()}); err == nil {
		t.Error("expected API error")
	}
}
