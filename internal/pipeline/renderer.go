package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

const reportFooter = "Generated by veracity. Scores describe fused detector evidence, not ground truth."

// Renderer writes analysis records as JSON, Markdown, and terminal
// summaries.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the record in the dashboard wire format
func (r *Renderer) RenderJSON(record *model.AnalysisRecord, path string) error {
	data, err := json.MarshalIndent(record.Wire(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(record *model.AnalysisRecord, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Authenticity Report\n\n")
	fmt.Fprintf(&b, "**Content:** %s\n\n", record.Identity)
	fmt.Fprintf(&b, "**Verdict:** %s\n\n", verdictBadge(record.Verdict))
	fmt.Fprintf(&b, "**Fake score:** %.2f &nbsp; **Confidence:** %.2f\n\n", record.FusedScore, record.Confidence)

	if record.Fusion.InsufficientEvidence {
		b.WriteString("> No modality produced usable evidence; the score is a neutral fallback.\n\n")
	}
	if record.AdultFlag {
		b.WriteString("> Adult content detected. This overrides the score-based verdict.\n\n")
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(record.Explanation.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Evidence\n\n")
	b.WriteString("| Modality | Score | Confidence | Status |\n")
	b.WriteString("|----------|-------|------------|--------|\n")
	for _, m := range record.PerModality {
		status := "ok"
		if !m.Available {
			status = "unavailable"
		} else if m.Error != "" {
			status = "error"
		}
		if status == "ok" {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %s |\n", m.Modality, m.Score, m.Confidence, status)
		} else {
			fmt.Fprintf(&b, "| %s | - | - | %s |\n", m.Modality, status)
		}
	}
	b.WriteString("\n")

	if len(record.Explanation.TechnicalIndicators) > 0 {
		b.WriteString("## Technical Indicators\n\n")
		for _, ind := range record.Explanation.TechnicalIndicators {
			fmt.Fprintf(&b, "- %s\n", ind)
		}
		b.WriteString("\n")
	}

	if len(record.Explanation.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range record.Explanation.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if record.Fingerprint != nil {
		b.WriteString("## Chain of Custody\n\n")
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", record.Fingerprint.ContentHash)
		if record.Fingerprint.PreviousHash != "" {
			fmt.Fprintf(&b, "- Previous: `%s`\n", record.Fingerprint.PreviousHash)
		}
		fmt.Fprintf(&b, "- Sequence: %d\n", record.Fingerprint.Seq)
		if record.Fingerprint.ModificationDetected {
			b.WriteString("- **Content differs from an earlier fingerprint of this identity.**\n")
		}
		if record.Fingerprint.IntegrityUnknown {
			b.WriteString("- **Fingerprint history could not be verified; modification status unknown.**\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "*Analyzed: %s*\n", record.AnalyzedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	if r.includeFooter {
		b.WriteString("\n---\n")
		b.WriteString(reportFooter)
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderNarrative writes the optional prose narrative
func (r *Renderer) RenderNarrative(narrative *model.Narrative, path string) error {
	var b strings.Builder

	b.WriteString("# Narrative\n\n")
	b.WriteString(narrative.Text)
	b.WriteString("\n")

	if len(narrative.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range narrative.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	fmt.Fprintf(&b, "\n*Generated by %s (%s). Informational only; the verdict above is score-based.*\n",
		narrative.Provider, narrative.Model)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints the one-screen terminal summary
func (r *Renderer) RenderSummary(record *model.AnalysisRecord) {
	fmt.Printf("\n%s\n", record.Identity)
	fmt.Printf("  Verdict:    %s\n", verdictBadge(record.Verdict))
	fmt.Printf("  Fake score: %.2f\n", record.FusedScore)
	fmt.Printf("  Confidence: %.2f\n", record.Confidence)

	var present, missing []string
	for _, m := range record.PerModality {
		if m.Available && m.Error == "" {
			present = append(present, string(m.Modality))
		} else {
			missing = append(missing, string(m.Modality))
		}
	}
	if len(present) > 0 {
		fmt.Printf("  Evidence:   %s\n", strings.Join(present, ", "))
	}
	if len(missing) > 0 {
		fmt.Printf("  Missing:    %s\n", strings.Join(missing, ", "))
	}

	fmt.Printf("  %s\n", record.Explanation.Summary)
}

func verdictBadge(v model.Verdict) string {
	switch v {
	case model.VerdictFake:
		return "FAKE ⛔"
	case model.VerdictSuspicious:
		return "SUSPICIOUS ⚠️"
	case model.VerdictAdultFlagged:
		return "ADULT FLAGGED 🔞"
	default:
		return "AUTHENTIC ✅"
	}
}
