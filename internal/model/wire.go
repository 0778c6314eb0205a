package model

// WireRecord is the JSON shape consumed by the frontend and dashboard.
// Key names are fixed by the existing dashboard contract; do not rename.
type WireRecord struct {
	ContentID           string          `json:"content_id"`
	Verdict             Verdict         `json:"verdict"`
	FakeScore           float64         `json:"fake_score"`
	Confidence          float64         `json:"confidence"`
	AdultContent        bool            `json:"adult_content"`
	CredibilityScore    *float64        `json:"credibility_score,omitempty"`
	BlockchainHash      string          `json:"blockchain_hash,omitempty"`
	Explanation         WireExplanation `json:"explanation"`
	CulturalContext     map[string]any  `json:"cultural_context,omitempty"`
	PsychologicalImpact map[string]any  `json:"psychological_impact,omitempty"`
	Traceability        map[string]any  `json:"traceability,omitempty"`
	Timestamp           string          `json:"timestamp"`
}

// WireExplanation nests indicators and per-modality metrics the way the
// dashboard renders them.
type WireExplanation struct {
	Summary          string           `json:"summary"`
	DetailedAnalysis WireDetails      `json:"detailed_analysis"`
	Recommendations  []string         `json:"recommendations"`
	Metrics          WireScoreMetrics `json:"metrics"`
}

// WireDetails holds the flattened technical indicator strings.
type WireDetails struct {
	TechnicalIndicators []string `json:"technical_indicators"`
}

// WireScoreMetrics exposes the raw visual/audio scores when those
// modalities reported.
type WireScoreMetrics struct {
	VisualScore *float64 `json:"visual_score,omitempty"`
	AudioScore  *float64 `json:"audio_score,omitempty"`
}

// Wire converts the record into the frontend wire shape.
func (r *AnalysisRecord) Wire() WireRecord {
	w := WireRecord{
		ContentID:           r.Identity,
		Verdict:             r.Verdict,
		FakeScore:           r.FusedScore,
		Confidence:          r.Confidence,
		AdultContent:        r.AdultFlag,
		CulturalContext:     r.Extras.CulturalContext,
		PsychologicalImpact: r.Extras.PsychologicalImpact,
		Traceability:        r.Extras.Traceability,
		Timestamp:           r.AnalyzedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Explanation: WireExplanation{
			Summary: r.Explanation.Summary,
			DetailedAnalysis: WireDetails{
				TechnicalIndicators: r.Explanation.TechnicalIndicators,
			},
			Recommendations: r.Explanation.Recommendations,
		},
	}

	if cred, ok := r.CredibilityScore(); ok {
		w.CredibilityScore = &cred
	}
	if r.Fingerprint != nil {
		w.BlockchainHash = r.Fingerprint.ContentHash
	}
	if v := r.ModalityScore(ModalityVisual); v >= 0 {
		w.Explanation.Metrics.VisualScore = &v
	}
	if a := r.ModalityScore(ModalityAudio); a >= 0 {
		w.Explanation.Metrics.AudioScore = &a
	}

	return w
}
