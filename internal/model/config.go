package model

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Config is the complete Veracity configuration
type Config struct {
	Weights     WeightsConfig     `yaml:"weights" json:"weights"`
	Thresholds  ThresholdsConfig  `yaml:"thresholds" json:"thresholds"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Chain       ChainConfig       `yaml:"chain" json:"chain"`
	Credibility CredibilityConfig `yaml:"credibility" json:"credibility"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" json:"rate_limit"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// WeightsConfig holds the per-modality base weights. They must sum to 1.0
// across all six modalities; effective weight is base * detector confidence.
type WeightsConfig struct {
	Text          float64 `yaml:"text" json:"text"`
	Visual        float64 `yaml:"visual" json:"visual"`
	Audio         float64 `yaml:"audio" json:"audio"`
	Existence     float64 `yaml:"existence" json:"existence"`
	Credibility   float64 `yaml:"credibility" json:"credibility"`
	Psychological float64 `yaml:"psychological" json:"psychological"`
}

// For returns the base weight for a modality.
func (w WeightsConfig) For(m Modality) float64 {
	switch m {
	case ModalityText:
		return w.Text
	case ModalityVisual:
		return w.Visual
	case ModalityAudio:
		return w.Audio
	case ModalityExistence:
		return w.Existence
	case ModalityCredibility:
		return w.Credibility
	case ModalityPsychological:
		return w.Psychological
	default:
		return 0
	}
}

// Sum returns the total base weight across all modalities.
func (w WeightsConfig) Sum() float64 {
	return w.Text + w.Visual + w.Audio + w.Existence + w.Credibility + w.Psychological
}

// Validate checks that the base weights form a proper distribution.
func (w WeightsConfig) Validate() error {
	for _, m := range Modalities {
		if v := w.For(m); v < 0 || v > 1 {
			return fmt.Errorf("weight for %s out of range: %v", m, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("modality weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// ThresholdsConfig holds the verdict band cut points. The values are
// tunable configuration, not physical constants; the defaults match the
// existing dashboard semantics.
type ThresholdsConfig struct {
	// Fake is the inclusive lower bound of the fake band.
	Fake float64 `yaml:"fake" json:"fake"`
	// Suspicious is the inclusive lower bound of the suspicious band.
	Suspicious float64 `yaml:"suspicious" json:"suspicious"`
	// InsufficientEvidence is the fallback fused score when no modality
	// carried weight.
	InsufficientEvidence float64 `yaml:"insufficient_evidence" json:"insufficient_evidence"`
}

// Validate checks band ordering.
func (t ThresholdsConfig) Validate() error {
	if t.Suspicious < 0 || t.Fake > 1 || t.Suspicious >= t.Fake {
		return fmt.Errorf("invalid verdict bands: suspicious=%v fake=%v", t.Suspicious, t.Fake)
	}
	return nil
}

// HTTPConfig controls content ingestion
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" json:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
}

// CacheConfig controls the analysis result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ChainConfig controls fingerprint chain persistence
type ChainConfig struct {
	// Backend selects the store: "sqlite" or "memory".
	Backend string `yaml:"backend" json:"backend"`
	// Path is the sqlite database location.
	Path string `yaml:"path" json:"path"`
}

// CredibilityConfig classifies source domains into trust tiers for the
// baseline credibility detector.
type CredibilityConfig struct {
	TrustedDomains    []string             `yaml:"trusted_domains" json:"trusted_domains"`
	ReputableDomains  []string             `yaml:"reputable_domains" json:"reputable_domains"`
	FlaggedDomains    []string             `yaml:"flagged_domains" json:"flagged_domains"`
	PathPatterns      []CredibilityPattern `yaml:"path_patterns,omitempty" json:"path_patterns,omitempty"`
}

// CredibilityPattern maps a URL path regexp to a tier name.
type CredibilityPattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Tier    string `yaml:"tier" json:"tier"` // "trusted", "reputable", "flagged"
}

// ConcurrencyConfig controls parallel execution
type ConcurrencyConfig struct {
	// Workers is the batch worker pool size.
	Workers int `yaml:"workers" json:"workers"`
	// DetectorWorkers bounds concurrent detector invocations per analysis.
	DetectorWorkers int `yaml:"detector_workers" json:"detector_workers"`
	// DetectorTimeout is the per-analysis deadline for all detectors; any
	// detector that has not settled by then is treated as unavailable.
	DetectorTimeout time.Duration `yaml:"detector_timeout" json:"detector_timeout"`
}

// RateLimitConfig controls per-domain fetch rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LLMConfig configures the optional narrative generator.
// The narrative never affects scoring.
type LLMConfig struct {
	Provider        string `yaml:"provider" json:"provider"` // "openai", "anthropic", "ollama", ""
	Model           string `yaml:"model" json:"model"`
	APIKey          string `yaml:"-" json:"-"`
	BaseURL         string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout         int    `yaml:"timeout" json:"timeout"` // seconds
	StrictCitations bool   `yaml:"strict_citations" json:"strict_citations"`
	MaxTokens       int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Weights: WeightsConfig{
			Text:          0.30,
			Visual:        0.25,
			Audio:         0.15,
			Existence:     0.10,
			Credibility:   0.10,
			Psychological: 0.10,
		},
		Thresholds: ThresholdsConfig{
			Fake:                 0.70,
			Suspicious:           0.40,
			InsufficientEvidence: 0.50,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Veracity/0.2 (+https://github.com/veracitor/veracity)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(home, ".veracity", "cache"),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Chain: ChainConfig{
			Backend: "sqlite",
			Path:    filepath.Join(home, ".veracity", "chain.db"),
		},
		Credibility: CredibilityConfig{
			TrustedDomains: []string{
				"reuters.com", "apnews.com", "bbc.com", "bbc.co.uk",
				"nature.com", "science.org", "who.int", "europa.eu",
			},
			ReputableDomains: []string{
				"nytimes.com", "theguardian.com", "washingtonpost.com",
				"economist.com", "npr.org", "wikipedia.org",
			},
			FlaggedDomains: []string{},
		},
		Concurrency: ConcurrencyConfig{
			Workers:         4,
			DetectorWorkers: 6,
			DetectorTimeout: 20 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			Burst:             5,
		},
		LLM: LLMConfig{
			Provider:        "",
			Timeout:         30,
			StrictCitations: true,
			MaxTokens:       1000,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks the configuration for contract violations.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	return c.Thresholds.Validate()
}
