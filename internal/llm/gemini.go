package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger zerolog.Logger
}

func NewGemini(ctx context.Context, apiKey, modelName string, temperature float32, maxTokens int, logger zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))
	return &Gemini{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt, background string) (string, error) {
	parts := []genai.Part{}
	if background != "" {
		parts = append(parts, genai.Text("Background:\n"+background))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response type from Gemini")
	}
	g.logger.Debug().Int("chars", len(text)).Msg("gemini response")
	return string(text), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
