package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
)

func startedModel(t *testing.T) model {
	t.Helper()
	cfg := config.Default()
	cfg.SaveDir = t.TempDir()
	eng := engine.New(&cfg, llm.Offline{}, engine.OpenerFromConfig(&cfg), zerolog.Nop())

	m := NewModel(eng, false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)

	msg := m.startSession("scifi", "derelict station")()
	next, _ = m.Update(msg)
	return next.(model)
}

// run feeds a command's message back into the model, as the program loop would.
func run(t *testing.T, m model, input string) model {
	t.Helper()
	next, cmd := m.handleCommand(input)
	m = next.(model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(model)
	}
	return m
}

func TestParseGenre(t *testing.T) {
	g, s := parseGenre("Horror old lighthouse")
	assert.Equal(t, "horror", g)
	assert.Equal(t, "old lighthouse", s)

	g, s = parseGenre("   ")
	assert.Equal(t, "fantasy", g)
	assert.Equal(t, "", s)
}

func TestSessionStart(t *testing.T) {
	m := startedModel(t)
	assert.Equal(t, statePlaying, m.state)
	assert.Contains(t, m.gameLog, "cryogenic pod")
	assert.Contains(t, m.sidebar, "Health: 100")
}

func TestMetaCommandsDoNotReachEngine(t *testing.T) {
	m := startedModel(t)
	segments := m.engine.Session().Log.Len()

	for _, c := range []string{"help", "inventory", "stats", "summary"} {
		m = run(t, m, c)
	}
	assert.Equal(t, segments, m.engine.Session().Log.Len())
	assert.Contains(t, m.gameLog, "Available commands")
	assert.Contains(t, m.gameLog, "a ration pack")
	assert.Contains(t, m.gameLog, "Charisma: 10")
}

func TestQuit(t *testing.T) {
	m := startedModel(t)
	_, cmd := m.handleCommand("QUIT")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlayerActionUsesFallbackOffline(t *testing.T) {
	m := startedModel(t)
	m = run(t, m, "go north")

	assert.Equal(t, statePlaying, m.state)
	assert.Contains(t, m.gameLog, "You move in that direction.")
	assert.Equal(t, 3, m.engine.Session().Log.Len())
}

func TestSaveAndLoadCommands(t *testing.T) {
	m := startedModel(t)
	m = run(t, m, "save slot1")
	assert.Contains(t, m.gameLog, `Saved as "slot1".`)

	m = run(t, m, "load missing")
	assert.Contains(t, m.gameLog, `No saved game named "missing".`)

	m = run(t, m, "load slot1")
	assert.Contains(t, m.gameLog, `Loaded "slot1".`)

	// three words is a story action, not a save
	before := m.engine.Session().Log.Len()
	m = run(t, m, "save the princess")
	assert.Equal(t, before+2, m.engine.Session().Log.Len())
}

func TestMetaCommandWordsInsideActionsArePlayed(t *testing.T) {
	m := startedModel(t)
	before := m.engine.Session().Log.Len()

	m = run(t, m, "help the wounded knight")
	assert.Equal(t, before+2, m.engine.Session().Log.Len())
	assert.NotContains(t, m.gameLog, "Available commands")

	next, cmd := m.handleCommand("quit the thieves guild")
	m = next.(model)
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, turnProcessedMsg{}, msg)
	next, _ = m.Update(msg)
	m = next.(model)
	assert.Equal(t, before+4, m.engine.Session().Log.Len())
}

func TestQuestCommands(t *testing.T) {
	m := startedModel(t)
	segments := m.engine.Session().Log.Len()

	m = run(t, m, "quest add Find the lost key")
	assert.Contains(t, m.gameLog, "New quest: Find the lost key")
	assert.Contains(t, m.sidebar, "- Find the lost key")

	m = run(t, m, "quest")
	assert.Contains(t, m.gameLog, "Active quests:")
	assert.Contains(t, m.gameLog, "- Find the lost key")

	m = run(t, m, "quest done Find the lost key")
	assert.Contains(t, m.gameLog, "Quest completed: Find the lost key")
	s := m.engine.Session()
	assert.Empty(t, s.ActiveQuests)
	assert.Equal(t, []string{"Find the lost key"}, s.CompletedQuests)
	assert.Equal(t, segments, s.Log.Len())

	// anything else starting with "quest" is an action
	m = run(t, m, "quest for the grail")
	assert.Equal(t, segments+2, m.engine.Session().Log.Len())
}
