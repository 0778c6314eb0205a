package fusion

import (
	"sort"

	"github.com/veracitor/veracity/internal/model"
)

// Engine aggregates normalized, weighted modality signals into one fused
// risk score. Pure and synchronous: no I/O, no retries, no blocking.
type Engine struct {
	insufficientScore float64
}

// NewEngine creates a fusion engine. insufficientScore is the documented
// fallback fused score when no modality carried weight (default 0.5).
func NewEngine(insufficientScore float64) *Engine {
	return &Engine{insufficientScore: insufficientScore}
}

// AdultFlag reports whether any modality flagged adult content. The flag
// is categorical policy, carried alongside the score and never averaged
// into it.
func AdultFlag(results []model.ModalityResult) bool {
	for i := range results {
		if results[i].AdultFlagged() {
			return true
		}
	}
	return false
}

// Fuse combines the signals into a FusionResult. Weights are renormalized
// among available signals so they sum to 1.0; missing modalities shift
// weight to the evidence that is present instead of being imputed.
func (e *Engine) Fuse(signals []model.NormalizedSignal, adultFlag bool) model.FusionResult {
	var totalWeight float64
	for _, s := range signals {
		totalWeight += s.Weight
	}

	present := make(map[model.Modality]bool, len(signals))
	for _, s := range signals {
		if s.Weight > 0 {
			present[s.Modality] = true
		}
	}

	var missing []model.Modality
	for _, m := range model.Modalities {
		if !present[m] {
			missing = append(missing, m)
		}
	}

	if totalWeight == 0 {
		// Insufficient evidence: explicitly distinct from a genuine
		// low-risk result.
		return model.FusionResult{
			FusedScore:           e.insufficientScore,
			Contributing:         sortSignals(signals),
			Missing:              missing,
			AdultFlag:            adultFlag,
			Confidence:           0,
			InsufficientEvidence: true,
		}
	}

	var fused float64
	for _, s := range signals {
		fused += (s.Weight / totalWeight) * s.Risk
	}

	return model.FusionResult{
		FusedScore:   fused,
		Contributing: sortSignals(signals),
		Missing:      missing,
		AdultFlag:    adultFlag,
		// Base weights sum to 1.0, so the raw effective-weight total is
		// the fraction of evidence weight actually present.
		Confidence: totalWeight,
	}
}

// sortSignals orders signals descending by weight*risk for explanation
// ranking; ties broken by fixed modality order for determinism.
func sortSignals(signals []model.NormalizedSignal) []model.NormalizedSignal {
	out := make([]model.NormalizedSignal, len(signals))
	copy(out, signals)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Contribution(), out[j].Contribution()
		if ci != cj {
			return ci > cj
		}
		return out[i].Modality.Rank() < out[j].Modality.Rank()
	})
	return out
}
