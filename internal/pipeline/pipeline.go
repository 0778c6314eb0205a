// Package pipeline wires ingestion, detector execution, fusion, and
// rendering into the flow behind the CLI commands.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veracitor/veracity/internal/analysis"
	"github.com/veracitor/veracity/internal/cache"
	"github.com/veracitor/veracity/internal/chain"
	"github.com/veracitor/veracity/internal/detect"
	"github.com/veracitor/veracity/internal/llm"
	"github.com/veracitor/veracity/internal/logging"
	"github.com/veracitor/veracity/internal/model"
)

// Pipeline orchestrates the complete analysis flow: fetch or read the
// content, run detectors concurrently, fuse into a verdict, optionally
// narrate, and render reports.
type Pipeline struct {
	fetcher  *Fetcher
	runner   *detect.Runner
	engine   *analysis.Engine
	totals   *analysis.Totals
	store    chain.Store
	cache    cache.Cache
	narrator *llm.Narrator
	renderer *Renderer
	config   *model.Config
}

// NewPipeline builds a pipeline from the configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	store, err := openChainStore(cfg.Chain)
	if err != nil {
		return nil, fmt.Errorf("open chain store: %w", err)
	}

	totals := analysis.NewTotals()
	engine, err := analysis.NewEngine(cfg, chain.NewLedger(store), totals)
	if err != nil {
		store.Close()
		return nil, err
	}

	detectors := []detect.Detector{
		detect.NewTextDetector(),
		detect.NewVisualDetector(),
		detect.NewAudioDetector(),
		detect.NewCredibilityDetector(&cfg.Credibility),
		detect.NewPsychologicalDetector(),
	}

	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var narrator *llm.Narrator
	if cfg.LLM.Provider != "" {
		n, err := llm.NewNarrator(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logging.Logger.Warn("narrative provider unavailable", "err", err)
		} else {
			narrator = n
		}
	}

	return &Pipeline{
		fetcher:  NewFetcher(cfg.HTTP, cfg.RateLimit),
		runner:   detect.NewRunner(detectors, cfg.Concurrency.DetectorWorkers, cfg.Concurrency.DetectorTimeout),
		engine:   engine,
		totals:   totals,
		store:    store,
		cache:    resultCache,
		narrator: narrator,
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
	}, nil
}

func openChainStore(cfg model.ChainConfig) (chain.Store, error) {
	if cfg.Backend == "memory" {
		return chain.NewMemoryStore(), nil
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create chain dir: %w", err)
		}
	}
	return chain.OpenSQLite(cfg.Path)
}

// AnalyzeURL fetches the URL and analyzes its content
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*model.AnalysisRecord, error) {
	content, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return p.analyzeContent(ctx, content, content.SourceURL)
}

// AnalyzeFile reads a local file and analyzes its content
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.AnalysisRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	content := detect.Content{
		Bytes:    data,
		Filename: filepath.Base(path),
		MIME:     mimeFromExtension(path),
	}
	return p.analyzeContent(ctx, content, "file://"+filepath.Base(path))
}

// Analyze runs detectors on already-loaded content. Exposed for callers
// that obtained the bytes themselves.
func (p *Pipeline) Analyze(ctx context.Context, content detect.Content, identity string) (*model.AnalysisRecord, error) {
	return p.analyzeContent(ctx, content, identity)
}

func (p *Pipeline) analyzeContent(ctx context.Context, content detect.Content, identity string) (*model.AnalysisRecord, error) {
	cacheKey := cache.Key(chain.CanonicalIdentity(identity), content.Bytes)

	if p.cache != nil {
		if cached, ok := p.lookupCache(cacheKey); ok {
			logging.Logger.Debug("cache hit", "identity", cached.Identity)
			return cached, nil
		}
	}

	results := p.runner.Run(ctx, content)

	record, err := p.engine.Analyze(analysis.Request{
		Content:  content.Bytes,
		Identity: identity,
		Results:  results,
	})
	if err != nil {
		return nil, err
	}

	// Narrative comes after classification and never feeds back into it.
	if p.narrator != nil && p.narrator.IsEnabled() {
		narrative, err := p.narrator.Generate(ctx, record)
		if err != nil {
			logging.Logger.Warn("narrative generation failed", "err", err)
		} else if narrative != nil {
			record.Narrative = narrative
		}
	}

	if p.cache != nil {
		p.storeCache(cacheKey, record)
	}

	return record, nil
}

// VerifyChain checks custody chain integrity for an identity
func (p *Pipeline) VerifyChain(identity string) (bool, error) {
	return p.engine.VerifyChain(identity)
}

// History returns the custody chain for an identity, root first
func (p *Pipeline) History(identity string) ([]model.FingerprintRecord, error) {
	return p.engine.History(identity)
}

// Stats returns the dashboard counters accumulated this session
func (p *Pipeline) Stats() analysis.Snapshot {
	return p.totals.Snapshot()
}

// RenderReport renders the record to the configured outputs
func (p *Pipeline) RenderReport(record *model.AnalysisRecord, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(record, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(record, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if record.Narrative != nil && record.Narrative.Enabled && mdPath != "" {
		narrativePath := strings.TrimSuffix(mdPath, ".md") + ".narrative.md"
		if err := p.renderer.RenderNarrative(record.Narrative, narrativePath); err != nil {
			logging.Logger.Warn("failed to write narrative", "err", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Narrative: %s\n", narrativePath)
		}
	}

	p.renderer.RenderSummary(record)
	return nil
}

// Close releases pipeline resources
func (p *Pipeline) Close() error {
	return p.store.Close()
}

func (p *Pipeline) lookupCache(key string) (*model.AnalysisRecord, bool) {
	data, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	var record model.AnalysisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &record, true
}

func (p *Pipeline) storeCache(key string, record *model.AnalysisRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := p.cache.Set(key, data, 0); err != nil {
		logging.Logger.Debug("cache store failed", "err", err)
	}
}

// mimeFromExtension guesses a coarse media type for local files
func mimeFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".txt", ".md":
		return "text/plain"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return ""
	}
}
