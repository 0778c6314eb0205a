package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleRecord() AnalysisRecord {
	visual := ModalityResult{Modality: ModalityVisual, Score: 0.82, Confidence: 0.9, Available: true}
	cred := ModalityResult{Modality: ModalityCredibility, Score: 0.3, Confidence: 0.8, Available: true}
	audio := ModalityResult{Modality: ModalityAudio, Available: false, Error: "detector unavailable"}

	return AnalysisRecord{
		Identity:    "https://example.com/story",
		Verdict:     VerdictFake,
		FusedScore:  0.78,
		Confidence:  0.61,
		AdultFlag:   false,
		PerModality: []ModalityResult{visual, cred, audio},
		Fingerprint: &FingerprintRecord{
			Identity:    "https://example.com/story",
			Seq:         2,
			ContentHash: "deadbeef",
		},
		Explanation: Explanation{
			Summary:             "Content is likely fabricated or synthetic.",
			TechnicalIndicators: []string{"visual: risk 0.82 (weight 0.22)"},
			Recommendations:     []string{"Do not share this content."},
		},
		AnalyzedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestWire_FieldMapping(t *testing.T) {
	r := sampleRecord()
	w := r.Wire()

	if w.ContentID != r.Identity {
		t.Errorf("ContentID = %q, want identity", w.ContentID)
	}
	if w.Verdict != VerdictFake || w.FakeScore != 0.78 || w.Confidence != 0.61 {
		t.Errorf("verdict fields wrong: %+v", w)
	}
	if w.BlockchainHash != "deadbeef" {
		t.Errorf("BlockchainHash = %q, want fingerprint content hash", w.BlockchainHash)
	}
	if w.CredibilityScore == nil || *w.CredibilityScore != 0.3 {
		t.Errorf("CredibilityScore = %v, want 0.3", w.CredibilityScore)
	}
	if w.Explanation.Metrics.VisualScore == nil || *w.Explanation.Metrics.VisualScore != 0.82 {
		t.Errorf("VisualScore = %v, want 0.82", w.Explanation.Metrics.VisualScore)
	}
	if w.Explanation.Metrics.AudioScore != nil {
		t.Error("failed audio modality must not surface a metric")
	}
	if w.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("Timestamp = %q", w.Timestamp)
	}
}

func TestWire_JSONKeys(t *testing.T) {
	r := sampleRecord()
	data, err := json.Marshal(r.Wire())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)

	for _, key := range []string{
		`"content_id"`, `"verdict"`, `"fake_score"`, `"confidence"`,
		`"adult_content"`, `"credibility_score"`, `"blockchain_hash"`,
		`"explanation"`, `"summary"`, `"detailed_analysis"`,
		`"technical_indicators"`, `"recommendations"`, `"metrics"`,
		`"visual_score"`, `"timestamp"`,
	} {
		if !strings.Contains(body, key) {
			t.Errorf("wire JSON missing key %s", key)
		}
	}
	if strings.Contains(body, `"audio_score"`) {
		t.Error("absent audio metric must be omitted, not zero")
	}
}

func TestWire_OptionalFieldsOmitted(t *testing.T) {
	r := AnalysisRecord{
		Identity:   "sha256:abc",
		Verdict:    VerdictSuspicious,
		FusedScore: 0.5,
		AnalyzedAt: time.Now(),
	}
	data, err := json.Marshal(r.Wire())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)

	for _, key := range []string{`"credibility_score"`, `"blockchain_hash"`, `"cultural_context"`, `"psychological_impact"`, `"traceability"`} {
		if strings.Contains(body, key) {
			t.Errorf("empty optional field %s must be omitted", key)
		}
	}
}

func TestWire_ExtrasPassThrough(t *testing.T) {
	r := sampleRecord()
	r.Extras = Extras{
		CulturalContext: map[string]any{"region": "EU"},
		Traceability:    map[string]any{"request_id": "r-42"},
	}

	w := r.Wire()
	if w.CulturalContext["region"] != "EU" {
		t.Error("cultural context not passed through")
	}
	if w.Traceability["request_id"] != "r-42" {
		t.Error("traceability not passed through")
	}
	if w.PsychologicalImpact != nil {
		t.Error("unset extras must stay nil")
	}
}

func TestWire_ZeroVisualScoreStillReported(t *testing.T) {
	r := AnalysisRecord{
		Identity: "x",
		PerModality: []ModalityResult{
			{Modality: ModalityVisual, Score: 0, Confidence: 0.9, Available: true},
		},
		AnalyzedAt: time.Now(),
	}

	w := r.Wire()
	if w.Explanation.Metrics.VisualScore == nil || *w.Explanation.Metrics.VisualScore != 0 {
		t.Error("a genuine zero visual score must be reported, not omitted")
	}
}
