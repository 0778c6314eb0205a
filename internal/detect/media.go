package detect

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/veracitor/veracity/internal/model"
)

// Name markers that raise suspicion for media files. Synthetic-media
// markers raise the risk score; adult markers set the categorical flag.
var syntheticNameMarkers = []string{
	"deepfake", "faceswap", "face_swap", "synthetic", "ai_generated",
	"aigen", "generated", "voice_clone", "cloned",
}

var adultNameMarkers = []string{
	"adult", "nsfw", "xxx", "explicit",
}

// magicSignature maps leading bytes to a container label.
type magicSignature struct {
	prefix []byte
	offset int
	label  string
}

var imageSignatures = []magicSignature{
	{prefix: []byte{0xFF, 0xD8, 0xFF}, label: "jpeg"},
	{prefix: []byte{0x89, 'P', 'N', 'G'}, label: "png"},
	{prefix: []byte("GIF8"), label: "gif"},
	{prefix: []byte("RIFF"), label: "webp"},
	{prefix: []byte("BM"), label: "bmp"},
}

var videoSignatures = []magicSignature{
	{prefix: []byte("ftyp"), offset: 4, label: "mp4"},
	{prefix: []byte{0x1A, 0x45, 0xDF, 0xA3}, label: "webm"},
	{prefix: []byte("RIFF"), label: "avi"},
}

var audioSignatures = []magicSignature{
	{prefix: []byte("ID3"), label: "mp3"},
	{prefix: []byte{0xFF, 0xFB}, label: "mp3"},
	{prefix: []byte("RIFF"), label: "wav"},
	{prefix: []byte("OggS"), label: "ogg"},
	{prefix: []byte("fLaC"), label: "flac"},
}

// VisualDetector is the baseline image/video adapter. It inspects the
// container signature, declared type, and filename markers — a stand-in
// for the external deepfake model behind the same contract.
type VisualDetector struct{}

// NewVisualDetector creates the baseline visual detector
func NewVisualDetector() *VisualDetector {
	return &VisualDetector{}
}

// Modality returns the visual channel
func (d *VisualDetector) Modality() model.Modality {
	return model.ModalityVisual
}

// Detect scores the media container and naming for manipulation markers
func (d *VisualDetector) Detect(ctx context.Context, content Content) (model.ModalityResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModalityResult{}, err
	}
	if !isMediaContent(content, "image/", "video/", imageExtensions, videoExtensions) {
		return model.ModalityResult{}, fmt.Errorf("%w: content is not image or video", ErrDetectorUnavailable)
	}

	return scoreMedia(content, append(imageSignatures, videoSignatures...)), nil
}

// AudioDetector is the baseline audio adapter, mirroring VisualDetector
// for sound containers.
type AudioDetector struct{}

// NewAudioDetector creates the baseline audio detector
func NewAudioDetector() *AudioDetector {
	return &AudioDetector{}
}

// Modality returns the audio channel
func (d *AudioDetector) Modality() model.Modality {
	return model.ModalityAudio
}

// Detect scores the audio container and naming for manipulation markers
func (d *AudioDetector) Detect(ctx context.Context, content Content) (model.ModalityResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModalityResult{}, err
	}
	if !isMediaContent(content, "audio/", "", audioExtensions, nil) {
		return model.ModalityResult{}, fmt.Errorf("%w: content is not audio", ErrDetectorUnavailable)
	}

	return scoreMedia(content, audioSignatures), nil
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
var videoExtensions = []string{".mp4", ".webm", ".avi", ".mov", ".mkv"}
var audioExtensions = []string{".mp3", ".wav", ".ogg", ".flac", ".m4a"}

func isMediaContent(content Content, mimePrefix, altMimePrefix string, exts, altExts []string) bool {
	if mimePrefix != "" && strings.HasPrefix(content.MIME, mimePrefix) {
		return true
	}
	if altMimePrefix != "" && strings.HasPrefix(content.MIME, altMimePrefix) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(content.Filename))
	for _, e := range append(exts, altExts...) {
		if ext == e {
			return true
		}
	}
	return false
}

func scoreMedia(content Content, signatures []magicSignature) model.ModalityResult {
	var features []model.Feature
	score := 0.0

	container := sniffContainer(content.Bytes, signatures)
	if container == "" {
		// Declared media type but unrecognized container bytes.
		score += 0.4
		features = append(features, model.Feature{Name: "container", Value: "unrecognized"})
	} else {
		features = append(features, model.Feature{Name: "container", Value: container})
	}

	if len(content.Bytes) < 1024 {
		// Too small to be a genuine capture.
		score += 0.3
		features = append(features, model.Feature{Name: "truncated_payload", Value: "true"})
	}

	nameLower := strings.ToLower(content.Filename + " " + content.SourceURL)
	markers := 0
	for _, marker := range syntheticNameMarkers {
		if strings.Contains(nameLower, marker) {
			markers++
		}
	}
	if markers > 0 {
		score += min(float64(markers)*0.35, 0.7)
		features = append(features, model.Feature{Name: "synthetic_name_markers", Value: fmt.Sprintf("%d", markers)})
	}

	for _, marker := range adultNameMarkers {
		if strings.Contains(nameLower, marker) {
			features = append(features, model.Feature{Name: model.FeatureAdultContent, Value: "true"})
			break
		}
	}

	return model.ModalityResult{
		Score:      min(score, 1.0),
		Confidence: 0.5, // Container heuristics are weak evidence
		Features:   features,
	}
}

func sniffContainer(data []byte, signatures []magicSignature) string {
	for _, sig := range signatures {
		end := sig.offset + len(sig.prefix)
		if len(data) >= end && bytes.Equal(data[sig.offset:end], sig.prefix) {
			return sig.label
		}
	}
	return ""
}
