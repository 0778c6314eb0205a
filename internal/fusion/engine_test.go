package fusion

import (
	"math"
	"testing"

	"github.com/veracitor/veracity/internal/model"
)

func defaultWeights() model.WeightsConfig {
	return model.DefaultConfig().Weights
}

func available(m model.Modality, score, confidence float64) model.ModalityResult {
	return model.ModalityResult{Modality: m, Score: score, Confidence: confidence, Available: true}
}

func unavailable(m model.Modality) model.ModalityResult {
	return model.ModalityResult{Modality: m, Available: false}
}

func fuseResults(t *testing.T, results []model.ModalityResult) model.FusionResult {
	t.Helper()
	signals, err := NewNormalizer(defaultWeights()).Normalize(results)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return NewEngine(0.5).Fuse(signals, AdultFlag(results))
}

func TestFuse_WeightedAverage(t *testing.T) {
	// text 0.30*1.0=0.30, visual 0.25*0.8=0.20; renormalized weights
	// 0.6 and 0.4 give fused = 0.6*0.9 + 0.4*0.2 = 0.62.
	fusion := fuseResults(t, []model.ModalityResult{
		available(model.ModalityText, 0.9, 1.0),
		available(model.ModalityVisual, 0.2, 0.8),
	})

	if math.Abs(fusion.FusedScore-0.62) > 1e-9 {
		t.Errorf("expected fused score 0.62, got %v", fusion.FusedScore)
	}
	if math.Abs(fusion.Confidence-0.5) > 1e-9 {
		t.Errorf("expected confidence 0.50, got %v", fusion.Confidence)
	}
	if fusion.InsufficientEvidence {
		t.Error("evidence was present")
	}
	if len(fusion.Missing) != 4 {
		t.Errorf("expected 4 missing modalities, got %v", fusion.Missing)
	}
}

func TestFuse_SingleModality(t *testing.T) {
	// One available modality carries all renormalized weight.
	fusion := fuseResults(t, []model.ModalityResult{
		available(model.ModalityAudio, 0.73, 0.5),
		unavailable(model.ModalityText),
	})

	if math.Abs(fusion.FusedScore-0.73) > 1e-9 {
		t.Errorf("expected fused score 0.73, got %v", fusion.FusedScore)
	}
}

func TestFuse_NoEvidence(t *testing.T) {
	var results []model.ModalityResult
	for _, m := range model.Modalities {
		results = append(results, unavailable(m))
	}

	fusion := fuseResults(t, results)

	if !fusion.InsufficientEvidence {
		t.Error("expected insufficient evidence flag")
	}
	if fusion.FusedScore != 0.5 {
		t.Errorf("expected fallback score 0.5, got %v", fusion.FusedScore)
	}
	if fusion.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", fusion.Confidence)
	}
	if len(fusion.Missing) != len(model.Modalities) {
		t.Errorf("all modalities should be missing, got %v", fusion.Missing)
	}
}

func TestFuse_ZeroConfidenceExcludes(t *testing.T) {
	// Confidence 0 zeroes the effective weight, same as unavailable.
	fusion := fuseResults(t, []model.ModalityResult{
		available(model.ModalityText, 1.0, 0),
		available(model.ModalityVisual, 0.3, 1.0),
	})

	if math.Abs(fusion.FusedScore-0.3) > 1e-9 {
		t.Errorf("zero-confidence signal should not contribute, got %v", fusion.FusedScore)
	}
	for _, m := range fusion.Missing {
		if m == model.ModalityText {
			return
		}
	}
	t.Error("text should be reported missing when its weight is zero")
}

func TestFuse_BoundsPreserved(t *testing.T) {
	cases := [][]model.ModalityResult{
		{available(model.ModalityText, 0, 1), available(model.ModalityAudio, 0, 1)},
		{available(model.ModalityText, 1, 1), available(model.ModalityAudio, 1, 1)},
		{available(model.ModalityText, 0.1, 0.2), available(model.ModalityExistence, 0.95, 0.9)},
	}

	for i, results := range cases {
		fusion := fuseResults(t, results)
		if fusion.FusedScore < 0 || fusion.FusedScore > 1 {
			t.Errorf("case %d: fused score %v outside [0,1]", i, fusion.FusedScore)
		}
	}
}

func TestFuse_MonotoneInSignal(t *testing.T) {
	low := fuseResults(t, []model.ModalityResult{
		available(model.ModalityText, 0.2, 1.0),
		available(model.ModalityVisual, 0.5, 1.0),
	})
	high := fuseResults(t, []model.ModalityResult{
		available(model.ModalityText, 0.8, 1.0),
		available(model.ModalityVisual, 0.5, 1.0),
	})

	if high.FusedScore <= low.FusedScore {
		t.Errorf("raising one score must raise the fused score: %v vs %v", low.FusedScore, high.FusedScore)
	}
}

func TestFuse_ContributionOrdering(t *testing.T) {
	fusion := fuseResults(t, []model.ModalityResult{
		available(model.ModalityText, 0.1, 0.1),
		available(model.ModalityVisual, 0.9, 1.0),
		available(model.ModalityCredibility, 0.8, 0.9),
	})

	contrib := fusion.Contributing
	for i := 1; i < len(contrib); i++ {
		if contrib[i-1].Contribution() < contrib[i].Contribution() {
			t.Errorf("contributions not sorted at %d: %v < %v", i, contrib[i-1].Contribution(), contrib[i].Contribution())
		}
	}
	if contrib[0].Modality != model.ModalityVisual {
		t.Errorf("visual should rank first, got %s", contrib[0].Modality)
	}
}

func TestFuse_TieBreakByModalityOrder(t *testing.T) {
	// Identical contributions fall back to the fixed modality order.
	signals := []model.NormalizedSignal{
		{Modality: model.ModalityAudio, Risk: 0.5, Weight: 0.1},
		{Modality: model.ModalityText, Risk: 0.5, Weight: 0.1},
	}
	fusion := NewEngine(0.5).Fuse(signals, false)

	if fusion.Contributing[0].Modality != model.ModalityText {
		t.Errorf("text precedes audio on ties, got %s", fusion.Contributing[0].Modality)
	}
}

func TestAdultFlag(t *testing.T) {
	clean := []model.ModalityResult{available(model.ModalityVisual, 0.1, 1.0)}
	if AdultFlag(clean) {
		t.Error("no adult feature present")
	}

	flagged := []model.ModalityResult{
		{
			Modality: model.ModalityVisual, Score: 0.05, Confidence: 1.0, Available: true,
			Features: []model.Feature{{Name: model.FeatureAdultContent, Value: "true"}},
		},
	}
	if !AdultFlag(flagged) {
		t.Error("adult feature should set the flag")
	}
}
