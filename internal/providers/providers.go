// Package providers defines the speech-recognition and translation
// collaborators consumed by the pipeline, with a deterministic mock pair
// and an OpenAI-compatible HTTP pair selected once at startup.
package providers

import (
	"context"
	"log/slog"

	"autobbq/internal/config"
	"autobbq/internal/subtitle"
)

// ASR produces ordered, timed English cues from a media file.
type ASR interface {
	Transcribe(ctx context.Context, mediaPath string, durationSec float64) ([]subtitle.Cue, error)
}

// Translator translates a list of texts, preserving order and length.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// Build selects the concrete providers from configuration. Config
// validation has already guaranteed the provider names are known.
func Build(cfg *config.Config, logger *slog.Logger) (ASR, Translator) {
	client := NewOpenAIClient(cfg.OpenAI, logger)

	var asr ASR = MockASR{}
	if cfg.Providers.ASR == "openai" {
		asr = &OpenAIASR{client: client}
	}

	var translator Translator = MockTranslator{}
	if cfg.Providers.Translation == "openai" {
		translator = &OpenAITranslator{client: client}
	}
	return asr, translator
}
