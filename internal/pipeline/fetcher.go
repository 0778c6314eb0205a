package pipeline

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/veracitor/veracity/internal/detect"
	"github.com/veracitor/veracity/internal/logging"
	"github.com/veracitor/veracity/internal/model"
	"github.com/veracitor/veracity/internal/util"
	"github.com/veracitor/veracity/internal/worker"
)

// Fetcher retrieves content bytes for analysis. Ingestion only — it never
// performs verification lookups.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
}

// NewFetcher creates a fetcher from the HTTP and rate-limit configuration.
// robots may be nil to skip robots.txt compliance checks.
func NewFetcher(cfg model.HTTPConfig, limits model.RateLimitConfig) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
		limiter:   worker.NewLimiter(limits.RequestsPerSecond, limits.Burst),
	}
}

// Fetch retrieves the content at rawURL, honoring robots.txt and the
// per-domain rate limit.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (detect.Content, error) {
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return detect.Content{}, fmt.Errorf("fetch %s: disallowed by robots.txt", rawURL)
		}
		if crawlDelay > 0 && crawlDelay <= 10*time.Second {
			select {
			case <-time.After(crawlDelay):
			case <-ctx.Done():
				return detect.Content{}, ctx.Err()
			}
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return detect.Content{}, fmt.Errorf("rate limit %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return detect.Content{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,image/*,video/*,audio/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return detect.Content{}, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return detect.Content{}, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return detect.Content{}, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	logging.Logger.Debug("fetched content", "url", finalURL, "bytes", len(body))

	return detect.Content{
		Bytes:     body,
		SourceURL: finalURL,
		Filename:  filenameFromURL(finalURL),
		MIME:      mediaTypeOf(resp.Header.Get("Content-Type")),
	}, nil
}

// filenameFromURL extracts the last path segment when it looks like a file
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// mediaTypeOf strips charset parameters from a Content-Type header
func mediaTypeOf(header string) string {
	if idx := strings.Index(header, ";"); idx >= 0 {
		header = header[:idx]
	}
	return strings.TrimSpace(strings.ToLower(header))
}
