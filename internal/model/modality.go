package model

// Modality identifies one independent evidence channel
type Modality string

const (
	ModalityText          Modality = "text"          // Text-authenticity detector
	ModalityVisual        Modality = "visual"        // Image/video deepfake detector
	ModalityAudio         Modality = "audio"         // Audio deepfake detector
	ModalityExistence     Modality = "existence"     // Existence verification against external sources
	ModalityCredibility   Modality = "credibility"   // Source credibility classification
	ModalityPsychological Modality = "psychological" // Psychological manipulation detection
)

// Modalities is the fixed ordering of evidence channels.
// Used for deterministic tie-breaking and missing-modality reporting.
var Modalities = []Modality{
	ModalityText,
	ModalityVisual,
	ModalityAudio,
	ModalityExistence,
	ModalityCredibility,
	ModalityPsychological,
}

// Rank returns the position of the modality in the fixed ordering.
// Unknown modalities sort last.
func (m Modality) Rank() int {
	for i, known := range Modalities {
		if m == known {
			return i
		}
	}
	return len(Modalities)
}

// FeatureAdultContent is the feature name detectors set to flag adult
// content. Its presence with value "true" triggers the categorical
// classification override.
const FeatureAdultContent = "adult_content"

// Feature is one named observation a detector reports alongside its score
type Feature struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ModalityResult is the uniform shape every detector result must satisfy
// before it enters fusion. Produced by adapters; immutable once handed
// to the engine.
type ModalityResult struct {
	Modality   Modality  `json:"modality"`
	Score      float64   `json:"score"`      // Risk-oriented, [0,1]
	Confidence float64   `json:"confidence"` // Detector's own confidence, [0,1]
	Available  bool      `json:"available"`  // False when the detector failed or timed out
	Features   []Feature `json:"features,omitempty"`
	Error      string    `json:"error,omitempty"` // Detector-reported failure, informational only
}

// Feature returns the value of the named feature and whether it was reported.
func (r *ModalityResult) Feature(name string) (string, bool) {
	for _, f := range r.Features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// AdultFlagged reports whether the detector flagged adult content.
func (r *ModalityResult) AdultFlagged() bool {
	v, ok := r.Feature(FeatureAdultContent)
	return ok && v == "true"
}

// NormalizedSignal is a modality result mapped onto the common risk scale
// with its effective fusion weight. Derived, never persisted.
type NormalizedSignal struct {
	Modality Modality `json:"modality"`
	Risk     float64  `json:"risk"`
	Weight   float64  `json:"weight"`
}

// Contribution is the ranking key for explanation ordering.
func (s NormalizedSignal) Contribution() float64 {
	return s.Weight * s.Risk
}

// FusionResult aggregates the available normalized signals into one
// fused risk score.
type FusionResult struct {
	// FusedScore is the weighted average of available risks on [0,1].
	// 0.5 when no signal carried weight (insufficient evidence).
	FusedScore float64 `json:"fused_score"`

	// Contributing holds the input signals sorted descending by
	// weight*risk, ties broken by fixed modality order.
	Contributing []NormalizedSignal `json:"contributing"`

	// Missing lists modalities that contributed no weight, in fixed order.
	Missing []Modality `json:"missing_modalities"`

	// AdultFlag is carried out-of-band: adult content is a categorical
	// policy matter, never averaged into the score.
	AdultFlag bool `json:"adult_flag"`

	// Confidence is the fraction of total base evidence weight that was
	// actually present, scaled by detector confidence.
	Confidence float64 `json:"confidence"`

	// InsufficientEvidence is true when the fallback score was used.
	InsufficientEvidence bool `json:"insufficient_evidence"`
}
