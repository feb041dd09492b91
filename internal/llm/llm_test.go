package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/storyteller/internal/config"
)

func TestOpenAIAgainstCompatibleServer(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"The door creaks open."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	b := NewOpenAI("ollama", srv.URL, "llama2:7b-chat", 0.8, 100, zerolog.Nop())
	out, err := b.Generate(context.Background(), "Story Prompt: open the door", "People met:\n- guard")
	require.NoError(t, err)
	assert.Equal(t, "The door creaks open.", out)

	assert.Equal(t, "llama2:7b-chat", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Story Prompt: open the door", got.Messages[1].Content)
}

func TestOpenAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewOpenAI("ollama", srv.URL, "m", 0.8, 100, zerolog.Nop())
	_, err := b.Generate(context.Background(), "p", "")
	assert.Error(t, err)
}

func TestNewBackends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Backend = "offline"
	b, err := New(ctx, &cfg, zerolog.Nop())
	require.NoError(t, err)
	_, err = b.Generate(ctx, "p", "")
	assert.True(t, errors.Is(err, ErrOffline))

	cfg.Backend = "gemini"
	cfg.GeminiAPIKey = ""
	_, err = New(ctx, &cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.Backend = "carrier-pigeon"
	_, err = New(ctx, &cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.Backend = "ollama"
	b, err = New(ctx, &cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, b.Close())
}
