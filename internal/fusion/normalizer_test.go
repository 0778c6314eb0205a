package fusion

import (
	"errors"
	"math"
	"testing"

	"github.com/veracitor/veracity/internal/model"
)

func TestNormalize_WeightsScaleWithConfidence(t *testing.T) {
	normalizer := NewNormalizer(defaultWeights())

	signals, err := normalizer.Normalize([]model.ModalityResult{
		available(model.ModalityText, 0.7, 0.5),
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Risk != 0.7 {
		t.Errorf("risk should equal the raw score, got %v", signals[0].Risk)
	}
	// 0.30 base weight * 0.5 confidence
	if math.Abs(signals[0].Weight-0.15) > 1e-9 {
		t.Errorf("expected weight 0.15, got %v", signals[0].Weight)
	}
}

func TestNormalize_UnavailableGetsZeroWeight(t *testing.T) {
	normalizer := NewNormalizer(defaultWeights())

	signals, err := normalizer.Normalize([]model.ModalityResult{
		unavailable(model.ModalityVisual),
		{Modality: model.ModalityAudio, Score: 0.9, Confidence: 0.9, Available: true, Error: "decoder crashed"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	for _, s := range signals {
		if s.Weight != 0 || s.Risk != 0 {
			t.Errorf("%s: unavailable or errored result must carry no weight, got %+v", s.Modality, s)
		}
	}
}

func TestNormalize_RejectsOutOfRange(t *testing.T) {
	normalizer := NewNormalizer(defaultWeights())

	cases := []struct {
		name   string
		result model.ModalityResult
		field  string
	}{
		{"score above one", available(model.ModalityText, 1.2, 0.5), "score"},
		{"negative score", available(model.ModalityText, -0.1, 0.5), "score"},
		{"confidence above one", available(model.ModalityVisual, 0.5, 1.5), "confidence"},
		{"negative confidence", available(model.ModalityVisual, 0.5, -0.5), "confidence"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalizer.Normalize([]model.ModalityResult{tc.result})
			if err == nil {
				t.Fatal("expected InvalidSignalError")
			}
			var sigErr *InvalidSignalError
			if !errors.As(err, &sigErr) {
				t.Fatalf("expected InvalidSignalError, got %T", err)
			}
			if sigErr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, sigErr.Field)
			}
		})
	}
}

func TestNormalize_BoundaryValuesAccepted(t *testing.T) {
	normalizer := NewNormalizer(defaultWeights())

	_, err := normalizer.Normalize([]model.ModalityResult{
		available(model.ModalityText, 0, 0),
		available(model.ModalityVisual, 1, 1),
	})
	if err != nil {
		t.Errorf("0 and 1 are in range: %v", err)
	}
}

func TestNormalize_DoesNotValidateUnavailable(t *testing.T) {
	// Out-of-range values on an unavailable result are ignored; the
	// result never enters fusion.
	normalizer := NewNormalizer(defaultWeights())

	_, err := normalizer.Normalize([]model.ModalityResult{
		{Modality: model.ModalityAudio, Score: 99, Confidence: -5, Available: false},
	})
	if err != nil {
		t.Errorf("unavailable results are excluded, not validated: %v", err)
	}
}
