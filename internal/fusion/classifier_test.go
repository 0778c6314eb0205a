package fusion

import (
	"testing"

	"github.com/veracitor/veracity/internal/model"
)

func TestClassify_Bands(t *testing.T) {
	classifier := NewClassifier(model.DefaultConfig().Thresholds)

	cases := []struct {
		score float64
		want  model.Verdict
	}{
		{0.00, model.VerdictAuthentic},
		{0.39, model.VerdictAuthentic},
		{0.399999, model.VerdictAuthentic},
		{0.40, model.VerdictSuspicious}, // lower bound inclusive
		{0.55, model.VerdictSuspicious},
		{0.699999, model.VerdictSuspicious},
		{0.70, model.VerdictFake}, // lower bound inclusive
		{0.95, model.VerdictFake},
		{1.00, model.VerdictFake},
	}

	for _, tc := range cases {
		got := classifier.Classify(model.FusionResult{FusedScore: tc.score}, false)
		if got != tc.want {
			t.Errorf("score %v: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestClassify_AdultOverride(t *testing.T) {
	classifier := NewClassifier(model.DefaultConfig().Thresholds)

	// The flag wins regardless of score, even at 0.05.
	for _, score := range []float64{0.05, 0.5, 0.99} {
		got := classifier.Classify(model.FusionResult{FusedScore: score}, true)
		if got != model.VerdictAdultFlagged {
			t.Errorf("score %v with adult flag: expected adult_flagged, got %s", score, got)
		}
	}
}

func TestClassify_InsufficientEvidenceIsSuspicious(t *testing.T) {
	classifier := NewClassifier(model.DefaultConfig().Thresholds)

	// The 0.5 fallback lands in the suspicious band.
	got := classifier.Classify(model.FusionResult{FusedScore: 0.5, InsufficientEvidence: true}, false)
	if got != model.VerdictSuspicious {
		t.Errorf("fallback score should classify as suspicious, got %s", got)
	}
}
