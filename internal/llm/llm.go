// Package llm provides the text generation backends the engine can drive.
package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tatianab/storyteller/internal/config"
)

// ErrOffline is returned by the offline backend for every request.
var ErrOffline = errors.New("generation backend is offline")

// Backend turns a prompt plus optional background into a continuation.
type Backend interface {
	Generate(ctx context.Context, prompt, background string) (string, error)
	Close() error
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Backend, error) {
	logger = logger.With().Str("component", "llm").Str("backend", cfg.Backend).Str("model", cfg.Model).Logger()

	switch cfg.Backend {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is not set")
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, logger)
	case "ollama":
		return NewOpenAI("ollama", cfg.OllamaURL, cfg.Model, cfg.Temperature, cfg.MaxTokens, logger), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAI(cfg.OpenAIAPIKey, "", cfg.Model, cfg.Temperature, cfg.MaxTokens, logger), nil
	case "offline":
		return Offline{}, nil
	}
	return nil, errors.Errorf("unknown backend %q", cfg.Backend)
}

// Offline never generates anything, so every turn uses its fallback text.
type Offline struct{}

func (Offline) Generate(context.Context, string, string) (string, error) {
	return "", ErrOffline
}

func (Offline) Close() error { return nil }
