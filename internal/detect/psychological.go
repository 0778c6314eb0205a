package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// Trigger lexicons for the baseline psychological manipulation detector.
// Category names are stable: they surface in explanation features.
var emotionalTriggers = map[string][]string{
	"fear": {
		"danger", "threat", "crisis", "emergency", "warning", "alert",
		"terrifying", "frightening", "alarming", "shocking",
	},
	"anger": {
		"outrage", "infuriating", "disgusting", "appalling", "unacceptable",
		"furious", "offended",
	},
	"sadness": {
		"heartbreaking", "tragic", "devastating", "mourning", "grief", "suffering",
	},
	"euphoria": {
		"amazing", "incredible", "fantastic", "miracle", "breakthrough", "victory",
	},
}

var persuasionTechniques = map[string][]string{
	"urgency": {
		"urgent", "act now", "don't wait", "limited time", "expires soon", "hurry",
	},
	"false_authority": {
		"experts agree", "research proves", "scientists confirm", "official sources",
	},
	"social_proof": {
		"everyone knows", "most people", "going viral", "trending", "millions agree",
	},
	"scarcity": {
		"exclusive", "one of a kind", "rare opportunity", "only a few",
	},
}

// PsychologicalDetector scores emotional manipulation pressure in text
// content. Same Content contract as the other adapters; deterministic.
type PsychologicalDetector struct{}

// NewPsychologicalDetector creates the baseline manipulation detector
func NewPsychologicalDetector() *PsychologicalDetector {
	return &PsychologicalDetector{}
}

// Modality returns the psychological channel
func (d *PsychologicalDetector) Modality() model.Modality {
	return model.ModalityPsychological
}

// Detect scores trigger and persuasion density in the content text
func (d *PsychologicalDetector) Detect(ctx context.Context, content Content) (model.ModalityResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModalityResult{}, err
	}

	text := string(content.Bytes)
	if isHTML(content, text) {
		if extracted, err := VisibleText(text); err == nil && extracted != "" {
			text = extracted
		}
	}
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return model.ModalityResult{}, fmt.Errorf("%w: no analyzable text", ErrDetectorUnavailable)
	}

	words := len(strings.Fields(lower))
	if words == 0 {
		return model.ModalityResult{}, fmt.Errorf("%w: no analyzable text", ErrDetectorUnavailable)
	}

	emotionHits, dominantEmotion := lexiconHits(lower, emotionalTriggers)
	persuasionHits, dominantTechnique := lexiconHits(lower, persuasionTechniques)

	// Density per 100 words, so long articles aren't penalized for
	// mentioning one alarming word.
	per100 := 100.0 / float64(words)
	score := min(float64(emotionHits)*per100*0.8, 0.6) + min(float64(persuasionHits)*per100*1.2, 0.4)
	score = min(score, 1.0)

	confidence := 0.6
	if words < 50 {
		confidence = 0.35
	}

	features := []model.Feature{
		{Name: "emotional_trigger_hits", Value: fmt.Sprintf("%d", emotionHits)},
		{Name: "persuasion_hits", Value: fmt.Sprintf("%d", persuasionHits)},
	}
	if dominantEmotion != "" {
		features = append(features, model.Feature{Name: "dominant_emotion", Value: dominantEmotion})
	}
	if dominantTechnique != "" {
		features = append(features, model.Feature{Name: "dominant_technique", Value: dominantTechnique})
	}

	return model.ModalityResult{
		Score:      score,
		Confidence: confidence,
		Features:   features,
	}, nil
}

// lexiconHits counts matches across categories and names the category
// with the most matches. Iterates category names in sorted order so the
// dominant pick is deterministic on ties.
func lexiconHits(lower string, lexicon map[string][]string) (int, string) {
	total := 0
	best := ""
	bestHits := 0

	for _, category := range sortedKeys(lexicon) {
		hits := 0
		for _, term := range lexicon[category] {
			hits += strings.Count(lower, term)
		}
		total += hits
		if hits > bestHits {
			bestHits = hits
			best = category
		}
	}

	return total, best
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
