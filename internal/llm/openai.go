package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to any OpenAI-compatible chat endpoint, including a local
// Ollama server.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      zerolog.Logger
}

// NewOpenAI returns a client for baseURL, or the public OpenAI API when
// baseURL is empty.
func NewOpenAI(apiKey, baseURL, model string, temperature float32, maxTokens int, logger zerolog.Logger) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (o *OpenAI) Generate(ctx context.Context, prompt, background string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if background != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Background:\n" + background,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	o.logger.Debug().Int("chars", len(resp.Choices[0].Message.Content)).Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("chat completion response")
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Close() error { return nil }
