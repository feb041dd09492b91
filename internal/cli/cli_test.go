package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
	"github.com/tatianab/storyteller/internal/models"
)

func TestPrintSummary(t *testing.T) {
	cfg := config.Default()
	cfg.SaveDir = t.TempDir()
	eng := engine.New(&cfg, llm.Offline{}, engine.OpenerFromConfig(&cfg), zerolog.Nop())
	eng.NewSession("fantasy", "", models.DefaultPlayerStats())
	_, err := eng.ProcessTurn(context.Background(), "go north")
	require.NoError(t, err)
	eng.AddQuest("find the key")

	var buf bytes.Buffer
	printSummary(&buf, eng)
	out := buf.String()

	assert.Contains(t, out, "(fantasy)")
	assert.Contains(t, out, "Turns: 1  Segments: 3")
	assert.Contains(t, out, "Health: 100")
	assert.Contains(t, out, "Active quests: find the key")
	assert.Contains(t, out, "Recent story:")
}

func TestNewLoggerConsole(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = "-"
	cfg.LogLevel = "debug"
	logger, closer, err := newLogger(&cfg)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range RootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"play", "sessions", "summary"})
}
