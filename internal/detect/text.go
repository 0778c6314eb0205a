package detect

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/veracitor/veracity/internal/model"
)

// fabricationCues are phrasing patterns common in fabricated or
// sensationalized text. Each match raises the risk score; the list is a
// baseline, not a trained model.
var fabricationCues = []string{
	"you won't believe", "doctors hate", "they don't want you to know",
	"the truth about", "what they aren't telling you", "wake up",
	"mainstream media won't", "banned", "censored", "exposed",
	"secret cure", "miracle cure", "100% proven", "undeniable proof",
	"share before it's deleted", "do your own research",
}

// unverifiableAttributions are sourcing phrases that assert authority
// without a checkable source.
var unverifiableAttributions = []string{
	"sources say", "experts agree", "studies show", "it is known",
	"people are saying", "insiders claim", "reportedly",
	"anonymous sources", "a friend of mine",
}

// TextDetector is the baseline text-authenticity adapter. It extracts
// visible text (from HTML when applicable), splits it into sentences,
// and scores fabrication cue density. Deterministic by construction.
type TextDetector struct{}

// NewTextDetector creates the baseline text detector
func NewTextDetector() *TextDetector {
	return &TextDetector{}
}

// Modality returns the text channel
func (d *TextDetector) Modality() model.Modality {
	return model.ModalityText
}

// Detect scores the textual content for fabrication indicators
func (d *TextDetector) Detect(ctx context.Context, content Content) (model.ModalityResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModalityResult{}, err
	}

	text := string(content.Bytes)
	if isHTML(content, text) {
		extracted, err := VisibleText(text)
		if err == nil && extracted != "" {
			text = extracted
		}
	}

	if !utf8.ValidString(text) || strings.TrimSpace(text) == "" {
		return model.ModalityResult{}, fmt.Errorf("%w: no analyzable text", ErrDetectorUnavailable)
	}

	sentences := SplitSentences(text)
	lower := strings.ToLower(text)

	cueHits := countHits(lower, fabricationCues)
	attribHits := countHits(lower, unverifiableAttributions)
	exclamations := strings.Count(text, "!")
	capsRatio := capitalizedRunRatio(text)

	// Cue density dominates; shouting and unverifiable sourcing add on.
	score := 0.0
	if len(sentences) > 0 {
		score += min(float64(cueHits)/float64(len(sentences))*3.0, 0.6)
		score += min(float64(attribHits)/float64(len(sentences))*2.0, 0.2)
		score += min(float64(exclamations)/float64(len(sentences))*0.5, 0.1)
	} else {
		score += min(float64(cueHits)*0.2, 0.6)
	}
	score += min(capsRatio*0.5, 0.1)
	score = min(score, 1.0)

	// Short texts give the heuristics little to work with.
	confidence := 0.7
	if len(sentences) < 3 {
		confidence = 0.4
	}

	return model.ModalityResult{
		Score:      score,
		Confidence: confidence,
		Features: []model.Feature{
			{Name: "sentences", Value: fmt.Sprintf("%d", len(sentences))},
			{Name: "fabrication_cues", Value: fmt.Sprintf("%d", cueHits)},
			{Name: "unverifiable_attributions", Value: fmt.Sprintf("%d", attribHits)},
			{Name: "exclamation_marks", Value: fmt.Sprintf("%d", exclamations)},
		},
	}, nil
}

// VisibleText extracts text nodes from HTML, skipping scripts and styles
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String(), nil
}

// SplitSentences splits text into sentences (simple heuristic)
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				sentence := strings.TrimSpace(current.String())
				if len(sentence) >= 20 && len(sentence) <= 500 {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= 20 && len(sentence) <= 500 {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

func isHTML(content Content, text string) bool {
	if strings.Contains(content.MIME, "html") {
		return true
	}
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}

func countHits(lower string, cues []string) int {
	hits := 0
	for _, cue := range cues {
		hits += strings.Count(lower, cue)
	}
	return hits
}

// capitalizedRunRatio approximates how much of the text is SHOUTED.
func capitalizedRunRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	caps := 0
	for _, w := range words {
		if len(w) >= 4 && w == strings.ToUpper(w) && strings.ContainsAny(w, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			caps++
		}
	}
	return float64(caps) / float64(len(words))
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
