package fusion

import "github.com/veracitor/veracity/internal/model"

// Classifier maps a fused score to a discrete verdict band. Deterministic
// and total: every fused score in [0,1] maps to exactly one verdict.
type Classifier struct {
	thresholds model.ThresholdsConfig
}

// NewClassifier creates a classifier with the given band cut points
func NewClassifier(thresholds model.ThresholdsConfig) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify assigns the verdict. The adult flag is evaluated before and
// independently of the score bands. Bands are closed on the lower bound:
// score >= fake → fake, suspicious <= score < fake → suspicious,
// score < suspicious → authentic.
func (c *Classifier) Classify(fusion model.FusionResult, adultFlag bool) model.Verdict {
	if adultFlag {
		return model.VerdictAdultFlagged
	}

	switch {
	case fusion.FusedScore >= c.thresholds.Fake:
		return model.VerdictFake
	case fusion.FusedScore >= c.thresholds.Suspicious:
		return model.VerdictSuspicious
	default:
		return model.VerdictAuthentic
	}
}
