package llm

import (
	"context"
	"fmt"

	"github.com/veracitor/veracity/internal/model"
)

// Narrator wraps a provider and enforces the citation policy on its
// output before it reaches a report.
type Narrator struct {
	provider Provider
	config   Config
}

// NewNarrator creates a narrator from configuration. A config with no
// provider yields a disabled narrator, not an error.
func NewNarrator(config Config) (*Narrator, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Narrator{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (n *Narrator) IsEnabled() bool {
	return n != nil && n.provider != nil
}

// Generate produces a narrative for the record. The record itself is
// never modified; callers attach the result if they want it.
func (n *Narrator) Generate(ctx context.Context, record *model.AnalysisRecord) (*model.Narrative, error) {
	if !n.IsEnabled() {
		return nil, nil
	}

	resp, err := n.provider.Narrate(ctx, NarrateRequest{
		Record:    *record,
		Model:     n.config.Model,
		MaxTokens: n.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("narrate: %w", err)
	}

	narrative := &model.Narrative{
		Enabled:  true,
		Provider: n.provider.Name(),
		Model:    resp.Model,
		Text:     resp.Text,
	}

	// The model only sees score data, so any URL in its output is
	// fabricated. Strict mode already rejected those; outside strict
	// mode they are surfaced as warnings.
	if !n.config.StrictCitations {
		for _, cited := range extractURLs(resp.Text) {
			narrative.Warnings = append(narrative.Warnings, "unverifiable citation: "+cited)
		}
	}

	return narrative, nil
}
