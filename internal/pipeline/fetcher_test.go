package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veracitor/veracity/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "veracity-test/1.0",
		MaxBodyBytes: 1_000_000,
	}
}

func testRateConfig() model.RateLimitConfig {
	return model.RateLimitConfig{RequestsPerSecond: 100, Burst: 10}
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "veracity-test/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>article body</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), testRateConfig())
	content, err := f.Fetch(context.Background(), server.URL+"/news/story.html")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if !strings.Contains(string(content.Bytes), "article body") {
		t.Errorf("body not captured: %q", content.Bytes)
	}
	if content.MIME != "text/html" {
		t.Errorf("MIME = %q, want charset stripped", content.MIME)
	}
	if content.Filename != "story.html" {
		t.Errorf("Filename = %q", content.Filename)
	}
	if !strings.HasPrefix(content.SourceURL, server.URL) {
		t.Errorf("SourceURL = %q", content.SourceURL)
	}
}

func TestFetcher_BodyCapped(t *testing.T) {
	large := strings.Repeat("x", 10_000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(large))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 1024
	f := NewFetcher(cfg, testRateConfig())

	content, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(content.Bytes) != 1024 {
		t.Errorf("body length %d, want capped at 1024", len(content.Bytes))
	}
}

func TestFetcher_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), testRateConfig())
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404")
	} else if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestFetcher_RedirectsFollowed(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		_, _ = w.Write([]byte("moved content"))
	}))
	defer target.Close()

	f := NewFetcher(testHTTPConfig(), testRateConfig())
	content, err := f.Fetch(context.Background(), target.URL+"/old")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(content.Bytes), "moved content") {
		t.Error("redirect not followed")
	}
	if !strings.HasSuffix(content.SourceURL, "/new") {
		t.Errorf("SourceURL should be the final URL, got %q", content.SourceURL)
	}
}

func TestFetcher_TooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), testRateConfig())
	if _, err := f.Fetch(context.Background(), server.URL+"/loop"); err == nil {
		t.Fatal("expected redirect loop to fail")
	}
}

func TestFetcher_RobotsDisallow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RespectRobots = true
	f := NewFetcher(cfg, testRateConfig())

	if _, err := f.Fetch(context.Background(), server.URL+"/private/page"); err == nil {
		t.Fatal("expected robots.txt disallow to block the fetch")
	} else if !strings.Contains(err.Error(), "robots.txt") {
		t.Errorf("error should name robots.txt, got %v", err)
	}

	if _, err := f.Fetch(context.Background(), server.URL+"/public/page"); err != nil {
		t.Errorf("allowed path should fetch: %v", err)
	}
}

func TestFetcher_RobotsUnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RespectRobots = true
	f := NewFetcher(cfg, testRateConfig())

	if _, err := f.Fetch(context.Background(), server.URL+"/page"); err != nil {
		t.Errorf("missing robots.txt should allow fetch: %v", err)
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/media/clip.mp4", "clip.mp4"},
		{"https://example.com/", ""},
		{"https://example.com", ""},
		{"https://example.com/articles/2026/story", "story"},
	}
	for _, tt := range tests {
		if got := filenameFromURL(tt.url); got != tt.want {
			t.Errorf("filenameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMediaTypeOf(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"text/html; charset=utf-8", "text/html"},
		{"IMAGE/JPEG", "image/jpeg"},
		{"", ""},
		{"application/json", "application/json"},
	}
	for _, tt := range tests {
		if got := mediaTypeOf(tt.header); got != tt.want {
			t.Errorf("mediaTypeOf(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
