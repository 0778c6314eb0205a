package model

import "testing"

func TestModality_Rank(t *testing.T) {
	if ModalityText.Rank() != 0 {
		t.Errorf("text should rank first, got %d", ModalityText.Rank())
	}
	if ModalityPsychological.Rank() != 5 {
		t.Errorf("psychological should rank last of the known set, got %d", ModalityPsychological.Rank())
	}
	if Modality("telepathy").Rank() != len(Modalities) {
		t.Error("unknown modalities must sort after all known ones")
	}

	for i := 1; i < len(Modalities); i++ {
		if Modalities[i].Rank() <= Modalities[i-1].Rank() {
			t.Errorf("fixed ordering not strictly increasing at %s", Modalities[i])
		}
	}
}

func TestModalityResult_Feature(t *testing.T) {
	r := ModalityResult{Features: []Feature{
		{Name: "container", Value: "jpeg"},
		{Name: "synthetic_name_markers", Value: "2"},
	}}

	if v, ok := r.Feature("container"); !ok || v != "jpeg" {
		t.Errorf("Feature(container) = %q, %v", v, ok)
	}
	if _, ok := r.Feature("absent"); ok {
		t.Error("missing feature reported as present")
	}
}

func TestModalityResult_AdultFlagged(t *testing.T) {
	tests := []struct {
		name     string
		features []Feature
		want     bool
	}{
		{"flag true", []Feature{{Name: FeatureAdultContent, Value: "true"}}, true},
		{"flag false", []Feature{{Name: FeatureAdultContent, Value: "false"}}, false},
		{"no features", nil, false},
		{"other features", []Feature{{Name: "container", Value: "png"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ModalityResult{Features: tt.features}
			if got := r.AdultFlagged(); got != tt.want {
				t.Errorf("AdultFlagged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizedSignal_Contribution(t *testing.T) {
	s := NormalizedSignal{Modality: ModalityText, Risk: 0.8, Weight: 0.25}
	if got := s.Contribution(); got != 0.2 {
		t.Errorf("Contribution() = %v, want 0.2", got)
	}
}

func TestAnalysisRecord_CredibilityScore(t *testing.T) {
	r := AnalysisRecord{PerModality: []ModalityResult{
		{Modality: ModalityText, Score: 0.4, Available: true},
		{Modality: ModalityCredibility, Score: 0.1, Available: true},
	}}
	if got, ok := r.CredibilityScore(); !ok || got != 0.1 {
		t.Errorf("CredibilityScore() = %v, %v", got, ok)
	}

	failed := AnalysisRecord{PerModality: []ModalityResult{
		{Modality: ModalityCredibility, Score: 0.1, Available: false, Error: "no source URL"},
	}}
	if _, ok := failed.CredibilityScore(); ok {
		t.Error("unavailable credibility must not report a score")
	}
}

func TestAnalysisRecord_ModalityScore(t *testing.T) {
	r := AnalysisRecord{PerModality: []ModalityResult{
		{Modality: ModalityVisual, Score: 0.7, Available: true},
	}}
	if got := r.ModalityScore(ModalityVisual); got != 0.7 {
		t.Errorf("ModalityScore(visual) = %v", got)
	}
	if got := r.ModalityScore(ModalityAudio); got != -1 {
		t.Errorf("absent modality should return -1, got %v", got)
	}
}
