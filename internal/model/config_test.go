package model

import (
	"math"
	"strings"
	"testing"
)

func TestWeightsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights WeightsConfig
		wantErr string
	}{
		{
			name:    "defaults valid",
			weights: DefaultConfig().Weights,
		},
		{
			name:    "uniform valid",
			weights: WeightsConfig{Text: 1.0 / 6, Visual: 1.0 / 6, Audio: 1.0 / 6, Existence: 1.0 / 6, Credibility: 1.0 / 6, Psychological: 1.0 / 6},
		},
		{
			name:    "sum too low",
			weights: WeightsConfig{Text: 0.5},
			wantErr: "sum to 1.0",
		},
		{
			name:    "sum too high",
			weights: WeightsConfig{Text: 0.5, Visual: 0.5, Audio: 0.5},
			wantErr: "sum to 1.0",
		},
		{
			name:    "negative weight",
			weights: WeightsConfig{Text: 1.2, Visual: -0.2},
			wantErr: "out of range",
		},
		{
			name:    "single modality carries everything",
			weights: WeightsConfig{Text: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWeightsConfig_For(t *testing.T) {
	w := DefaultConfig().Weights

	tests := []struct {
		modality Modality
		want     float64
	}{
		{ModalityText, 0.30},
		{ModalityVisual, 0.25},
		{ModalityAudio, 0.15},
		{ModalityExistence, 0.10},
		{ModalityCredibility, 0.10},
		{ModalityPsychological, 0.10},
		{Modality("telepathy"), 0},
	}

	for _, tt := range tests {
		if got := w.For(tt.modality); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("For(%s) = %v, want %v", tt.modality, got, tt.want)
		}
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("default weights sum to %v", w.Sum())
	}
}

func TestThresholdsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ThresholdsConfig
		wantErr bool
	}{
		{"defaults", DefaultConfig().Thresholds, false},
		{"inverted bands", ThresholdsConfig{Fake: 0.4, Suspicious: 0.7}, true},
		{"equal bands", ThresholdsConfig{Fake: 0.5, Suspicious: 0.5}, true},
		{"fake above one", ThresholdsConfig{Fake: 1.5, Suspicious: 0.4}, true},
		{"negative suspicious", ThresholdsConfig{Fake: 0.7, Suspicious: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Weights.Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		t.Errorf("default thresholds invalid: %v", err)
	}
	if cfg.Thresholds.Fake != 0.70 || cfg.Thresholds.Suspicious != 0.40 {
		t.Errorf("unexpected default bands: %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.InsufficientEvidence != 0.5 {
		t.Errorf("unexpected fallback score: %v", cfg.Thresholds.InsufficientEvidence)
	}
	if cfg.Concurrency.Workers <= 0 || cfg.Concurrency.DetectorWorkers <= 0 {
		t.Errorf("concurrency defaults must be positive: %+v", cfg.Concurrency)
	}
	if cfg.Chain.Backend != "sqlite" {
		t.Errorf("expected sqlite chain backend default, got %q", cfg.Chain.Backend)
	}
}
