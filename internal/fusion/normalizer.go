package fusion

import (
	"fmt"

	"github.com/veracitor/veracity/internal/model"
)

// InvalidSignalError reports an adapter contract violation: a score or
// confidence outside [0,1]. Never clamped — surfacing adapter bugs early
// beats a silently biased verdict.
type InvalidSignalError struct {
	Modality model.Modality
	Field    string
	Value    float64
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal from %s: %s=%v outside [0,1]", e.Modality, e.Field, e.Value)
}

// Normalizer maps raw modality results onto the common risk scale and
// assigns effective fusion weights
type Normalizer struct {
	weights model.WeightsConfig
}

// NewNormalizer creates a normalizer with the given base weights
func NewNormalizer(weights model.WeightsConfig) *Normalizer {
	return &Normalizer{weights: weights}
}

// Normalize converts each available, non-errored result into a
// NormalizedSignal. Unavailable or errored modalities get weight 0 and a
// zero risk that fusion will renormalize away — they are excluded, never
// imputed. Out-of-range scores fail with InvalidSignalError.
func (n *Normalizer) Normalize(results []model.ModalityResult) ([]model.NormalizedSignal, error) {
	signals := make([]model.NormalizedSignal, 0, len(results))

	for _, r := range results {
		if !r.Available || r.Error != "" {
			signals = append(signals, model.NormalizedSignal{
				Modality: r.Modality,
				Risk:     0,
				Weight:   0,
			})
			continue
		}

		if r.Score < 0 || r.Score > 1 {
			return nil, &InvalidSignalError{Modality: r.Modality, Field: "score", Value: r.Score}
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, &InvalidSignalError{Modality: r.Modality, Field: "confidence", Value: r.Confidence}
		}

		// Adapters already emit risk-oriented scores; the normalizer
		// trusts the contract and does not know model internals.
		signals = append(signals, model.NormalizedSignal{
			Modality: r.Modality,
			Risk:     r.Score,
			Weight:   n.weights.For(r.Modality) * r.Confidence,
		})
	}

	return signals, nil
}
