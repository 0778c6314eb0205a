package model

import "time"

// Verdict is the discrete classification band for a fused score
type Verdict string

const (
	VerdictAuthentic  Verdict = "authentic"
	VerdictSuspicious Verdict = "suspicious"
	VerdictFake       Verdict = "fake"

	// VerdictAdultFlagged is the categorical override, outside the
	// authentic < suspicious < fake ordering.
	VerdictAdultFlagged Verdict = "adult_flagged"
)

// FingerprintRecord is one link in the append-only custody chain for a
// content identity. Never mutated after creation; tamper detection is
// retroactive comparison.
type FingerprintRecord struct {
	Identity     string    `json:"identity"`      // Canonicalized source URL or content ID
	Seq          int       `json:"seq"`           // Position in the chain, 0 = root
	ContentHash  string    `json:"content_hash"`  // Hex SHA-256 of the content bytes
	PreviousHash string    `json:"previous_hash"` // Digest of the prior record; empty for root
	CreatedAt    time.Time `json:"created_at"`

	// ModificationDetected is true when the digest differs from the last
	// known record for the same identity.
	ModificationDetected bool `json:"modification_detected"`

	// IntegrityUnknown is set when the stored history could not be
	// verified (ChainIntegrityError) and the record was created against
	// the current content only.
	IntegrityUnknown bool `json:"integrity_unknown,omitempty"`
}

// Explanation is the human-readable rationale for a verdict
type Explanation struct {
	Summary             string   `json:"summary"`
	TechnicalIndicators []string `json:"technical_indicators"`
	Recommendations     []string `json:"recommendations"`
}

// Extras are opaque pass-through objects supplied by collaborators and
// emitted verbatim on the wire record. The engine never interprets them.
type Extras struct {
	CulturalContext     map[string]any `json:"cultural_context,omitempty"`
	PsychologicalImpact map[string]any `json:"psychological_impact,omitempty"`
	Traceability        map[string]any `json:"traceability,omitempty"`
}

// AnalysisRecord is the externally visible result of one analysis.
// Owned by the caller after return; the engine holds no reference to it.
type AnalysisRecord struct {
	Identity    string             `json:"identity"`
	Verdict     Verdict            `json:"verdict"`
	FusedScore  float64            `json:"fused_score"`
	Confidence  float64            `json:"confidence"`
	AdultFlag   bool               `json:"adult_content"`
	PerModality []ModalityResult   `json:"per_modality"`
	Fusion      FusionResult       `json:"fusion"`
	Fingerprint *FingerprintRecord `json:"fingerprint,omitempty"`
	Explanation Explanation        `json:"explanation"`
	Extras      Extras             `json:"extras,omitempty"`
	AnalyzedAt  time.Time          `json:"analyzed_at"`

	// Narrative is the optional LLM-generated prose summary.
	// It never affects the verdict or the score.
	Narrative *Narrative `json:"narrative,omitempty"`
}

// CredibilityScore returns the raw credibility modality score if that
// modality was available.
func (r *AnalysisRecord) CredibilityScore() (float64, bool) {
	for _, m := range r.PerModality {
		if m.Modality == ModalityCredibility && m.Available && m.Error == "" {
			return m.Score, true
		}
	}
	return 0, false
}

// ModalityScore returns the raw score for a modality, or -1 when absent.
func (r *AnalysisRecord) ModalityScore(modality Modality) float64 {
	for _, m := range r.PerModality {
		if m.Modality == modality && m.Available && m.Error == "" {
			return m.Score
		}
	}
	return -1
}

// Narrative is an optional LLM-generated prose rendering of the record.
// CRITICAL: generated after classification, never feeds back into it.
type Narrative struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Text     string   `json:"text,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
