// Package llm generates optional prose narratives for finished analysis
// records. The narrative is presentation only: it is produced after
// fusion and classification and can never change a verdict or a score.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// Provider is a narrative backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate generates a prose narrative for an analysis record
	Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error)

	// IsAvailable checks whether the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// NarrateRequest is the input for narrative generation
type NarrateRequest struct {
	// Record is the completed analysis to narrate
	Record model.AnalysisRecord

	// Prompt overrides the default prompt when non-empty
	Prompt string

	// Model selects a provider-specific model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// NarrateResponse is the provider's output
type NarrateResponse struct {
	// Text is the generated narrative
	Text string

	// Model is the model that produced it
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds narrative provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// StrictCitations rejects narratives that cite any URL. The model
	// sees only score data, so every URL it produces is invented.
	StrictCitations bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns defaults with narration disabled
func DefaultConfig() Config {
	return Config{
		Provider:        "",
		Timeout:         30,
		StrictCitations: true,
		MaxTokens:       1000,
	}
}

// BuildPrompt constructs the default narration prompt from a record
func BuildPrompt(record model.AnalysisRecord) string {
	var b strings.Builder

	b.WriteString(`You are narrating an automated content authenticity assessment. The assessment fuses detector scores; it does NOT establish truth or falsity.

RULES:
1. Describe only the scores and indicators listed below.
2. Do NOT cite URLs, name outlets, or reference outside sources.
3. Do NOT claim the content is true or false; describe what the detectors measured.
4. If evidence was missing or insufficient, say so plainly.

Assessment:
`)
	fmt.Fprintf(&b, "- Verdict: %s\n", record.Verdict)
	fmt.Fprintf(&b, "- Fused risk score: %.2f (0 authentic .. 1 fake)\n", record.FusedScore)
	fmt.Fprintf(&b, "- Evidence confidence: %.2f\n", record.Confidence)
	if record.Fusion.InsufficientEvidence {
		b.WriteString("- No modality produced usable evidence; the score is a neutral fallback.\n")
	}
	if record.AdultFlag {
		b.WriteString("- Adult content was flagged, which overrides the score-based verdict.\n")
	}

	for _, m := range record.PerModality {
		if !m.Available || m.Error != "" {
			fmt.Fprintf(&b, "- %s evidence: unavailable\n", m.Modality)
			continue
		}
		fmt.Fprintf(&b, "- %s evidence: score %.2f, confidence %.2f\n", m.Modality, m.Score, m.Confidence)
	}

	if len(record.Explanation.TechnicalIndicators) > 0 {
		b.WriteString("\nTechnical indicators:\n")
		for _, ind := range record.Explanation.TechnicalIndicators {
			fmt.Fprintf(&b, "- %s\n", ind)
		}
	}

	b.WriteString("\nWrite a 3-4 sentence narrative of this assessment for a non-technical reader.")
	return b.String()
}
