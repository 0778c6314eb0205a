// Package explain turns fusion output into a human-readable rationale:
// a one-line summary, ranked technical indicators, and recommendations
// from a fixed rule table. Output is fully deterministic — required for
// reproducible audits.
package explain

import (
	"fmt"

	"github.com/veracitor/veracity/internal/model"
)

// modalityLabels are the human-readable channel names used in summaries.
var modalityLabels = map[model.Modality]string{
	model.ModalityText:          "text authenticity analysis",
	model.ModalityVisual:        "visual deepfake analysis",
	model.ModalityAudio:         "audio deepfake analysis",
	model.ModalityExistence:     "existence verification",
	model.ModalityCredibility:   "source credibility analysis",
	model.ModalityPsychological: "psychological manipulation analysis",
}

// verdictPhrases are the templated verdict descriptions for summaries.
var verdictPhrases = map[model.Verdict]string{
	model.VerdictAuthentic:    "Content appears authentic",
	model.VerdictSuspicious:   "Content shows suspicious elements",
	model.VerdictFake:         "Content shows strong indicators of being fake or manipulated",
	model.VerdictAdultFlagged: "Content flagged for adult material",
}

// maxIndicatorSignals is how many top contributing signals feed the
// technical indicator list.
const maxIndicatorSignals = 3

// maxRecommendations caps the recommendation list.
const maxRecommendations = 5

// placeholderIndicator is emitted when no modality contributed.
const placeholderIndicator = "no modality evidence available for this content"

// recommendationRule is one declarative condition → recommendation entry.
// Rules are evaluated in fixed priority order.
type recommendationRule struct {
	verdict model.Verdict  // empty = any verdict
	missing model.Modality // empty = no missing-modality condition
	text    string
}

// recommendationRules is the fixed rule table. Order is priority order.
var recommendationRules = []recommendationRule{
	{verdict: model.VerdictAdultFlagged, text: "content withheld under adult content policy; manual review required"},
	{verdict: model.VerdictFake, text: "do not share this content; seek independent verification"},
	{verdict: model.VerdictFake, text: "report to fact-checking organizations"},
	{verdict: model.VerdictSuspicious, text: "verify with additional trusted sources before sharing"},
	{verdict: model.VerdictSuspicious, text: "wait for more information before amplifying"},
	{verdict: model.VerdictAuthentic, text: "no action required; routine verification with trusted sources still recommended"},
	{missing: model.ModalityExistence, text: "cross-reference with primary sources; existence verification was unavailable"},
	{missing: model.ModalityCredibility, text: "evaluate the publisher directly; source credibility was not assessed"},
	{missing: model.ModalityText, text: "textual analysis was unavailable; treat written claims with caution"},
	{missing: model.ModalityVisual, text: "visual analysis was unavailable; inspect imagery manually"},
	{missing: model.ModalityAudio, text: "audio analysis was unavailable; verify voice content independently"},
	{missing: model.ModalityPsychological, text: "manipulation screening was unavailable; consider emotional framing critically"},
}

// Explainer generates explanations for fused verdicts
type Explainer struct{}

// NewExplainer creates a new explainer
func NewExplainer() *Explainer {
	return &Explainer{}
}

// Explain builds the explanation for a fusion result. results supplies
// the per-modality features referenced by fusion.Contributing; chainWarn
// adds a tamper-audit indicator when the stored fingerprint history could
// not be verified.
func (e *Explainer) Explain(fusion model.FusionResult, verdict model.Verdict, results []model.ModalityResult, chainWarn bool) model.Explanation {
	return model.Explanation{
		Summary:             e.summary(fusion, verdict),
		TechnicalIndicators: e.technicalIndicators(fusion, results, chainWarn),
		Recommendations:     e.recommendations(fusion, verdict),
	}
}

// summary names the verdict and the single highest-weighted contributing
// modality.
func (e *Explainer) summary(fusion model.FusionResult, verdict model.Verdict) string {
	phrase := verdictPhrases[verdict]

	top, ok := topContributor(fusion)
	if !ok {
		return fmt.Sprintf("%s (fused score %.2f); insufficient evidence: no modality signals were available.", phrase, fusion.FusedScore)
	}
	return fmt.Sprintf("%s (fused score %.2f); primary signal: %s.", phrase, fusion.FusedScore, modalityLabels[top])
}

// technicalIndicators flattens the features of the top contributing
// signals into human-readable strings.
func (e *Explainer) technicalIndicators(fusion model.FusionResult, results []model.ModalityResult, chainWarn bool) []string {
	byModality := make(map[model.Modality]*model.ModalityResult, len(results))
	for i := range results {
		byModality[results[i].Modality] = &results[i]
	}

	var indicators []string
	count := 0
	for _, signal := range fusion.Contributing {
		if signal.Weight == 0 || count >= maxIndicatorSignals {
			continue
		}
		count++

		r := byModality[signal.Modality]
		if r == nil || len(r.Features) == 0 {
			indicators = append(indicators, fmt.Sprintf("%s: risk %.2f (weight %.2f)", signal.Modality, signal.Risk, signal.Weight))
			continue
		}
		for _, f := range r.Features {
			indicators = append(indicators, fmt.Sprintf("%s: %s=%s", signal.Modality, f.Name, f.Value))
		}
	}

	if len(indicators) == 0 {
		indicators = append(indicators, placeholderIndicator)
	}
	if chainWarn {
		indicators = append(indicators, "fingerprint history could not be verified; modification status unknown")
	}

	return indicators
}

// recommendations evaluates the fixed rule table in priority order,
// deduplicates, and caps the result.
func (e *Explainer) recommendations(fusion model.FusionResult, verdict model.Verdict) []string {
	missing := make(map[model.Modality]bool, len(fusion.Missing))
	for _, m := range fusion.Missing {
		missing[m] = true
	}

	seen := make(map[string]bool)
	var recs []string
	for _, rule := range recommendationRules {
		if len(recs) >= maxRecommendations {
			break
		}
		if rule.verdict != "" && rule.verdict != verdict {
			continue
		}
		if rule.missing != "" && !missing[rule.missing] {
			continue
		}
		if seen[rule.text] {
			continue
		}
		seen[rule.text] = true
		recs = append(recs, rule.text)
	}

	return recs
}

// topContributor returns the highest-ranked signal with nonzero weight.
func topContributor(fusion model.FusionResult) (model.Modality, bool) {
	for _, s := range fusion.Contributing {
		if s.Weight > 0 {
			return s.Modality, true
		}
	}
	return "", false
}
