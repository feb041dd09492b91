package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/models"
)

type sessionState int

const (
	stateChooseGenre sessionState = iota
	stateLoading
	statePlaying
	stateThinking
)

const helpText = `Available commands:
- Type any action to play (e.g., 'go north', 'attack the dragon')
- 'help': Show this help message
- 'inventory': Check your inventory
- 'stats': View your character stats
- 'summary': Recap the story so far
- 'quest': List quests; 'quest add <name>' / 'quest done <name>' to track them
- 'save [name]': Save the game
- 'load [name]': Load a saved game
- 'quit': Exit the game`

type model struct {
	state     sessionState
	engine    *engine.Engine
	textInput textinput.Model
	viewport  viewport.Model
	gameLog   string
	sidebar   string
	opening   bool
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AFD7"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

// NewModel returns the TUI model. With opening set, a generated opening
// scene is requested after the genre is chosen.
func NewModel(eng *engine.Engine, opening bool) model {
	ti := textinput.New()
	ti.Placeholder = "Genre and optional setting, e.g. 'horror lighthouse'"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 60

	return model{
		state:     stateChooseGenre,
		engine:    eng,
		textInput: ti,
		opening:   opening,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type sessionStartedMsg struct {
	scene string
}

type turnProcessedMsg struct {
	result *engine.TurnResult
	err    error
}

type persistedMsg struct {
	verb string
	name string
	err  error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state == stateChooseGenre {
				genre, setting := parseGenre(m.textInput.Value())
				m.textInput.Reset()
				m.state = stateLoading
				return m, m.startSession(genre, setting)
			}
			if m.state == statePlaying {
				input := strings.TrimSpace(m.textInput.Value())
				if input == "" {
					return m, nil
				}
				m.textInput.Reset()
				m.appendLog(userStyle.Width(m.logWidth()).Render("> " + input))
				return m.handleCommand(input)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == statePlaying || m.state == stateThinking {
			m.viewport.SetContent(m.gameLog)
		}

	case sessionStartedMsg:
		m.state = statePlaying
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(m.logWidth(), m.height-6)
		}
		s := m.engine.Session()
		g, _ := models.LookupGenre(s.Genre)
		header := gameStyle.Bold(true).Render("Genre: " + g.Name)
		m.gameLog = header
		m.appendLog(gameStyle.Width(m.logWidth()).Render(msg.scene))
		m.textInput.Placeholder = "What would you like to do?"
		m.refreshSidebar()
		return m, nil

	case turnProcessedMsg:
		m.state = statePlaying
		if msg.err != nil {
			m.appendLog(warnStyle.Render(msg.err.Error()))
			return m, nil
		}
		m.appendLog(gameStyle.Width(m.logWidth()).Render(msg.result.Response))
		m.refreshSidebar()
		return m, nil

	case persistedMsg:
		m.state = statePlaying
		switch {
		case msg.err == nil && msg.verb == "load":
			m.appendLog(systemStyle.Render(fmt.Sprintf("Loaded %q.", msg.name)))
			m.appendLog(gameStyle.Width(m.logWidth()).Render(m.engine.Session().CurrentScene))
		case msg.err == nil:
			m.appendLog(systemStyle.Render(fmt.Sprintf("Saved as %q.", msg.name)))
		case errors.Is(msg.err, models.ErrSessionNotFound):
			m.appendLog(warnStyle.Render(fmt.Sprintf("No saved game named %q.", msg.name)))
		case errors.Is(msg.err, models.ErrCorruptRecord):
			m.appendLog(warnStyle.Render(fmt.Sprintf("Saved game %q is damaged and was not loaded.", msg.name)))
		default:
			m.appendLog(warnStyle.Render(fmt.Sprintf("Could not %s: %v", msg.verb, msg.err)))
		}
		m.refreshSidebar()
		return m, nil
	}

	if m.state == stateChooseGenre || m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleCommand intercepts meta-commands; everything else is a player action.
// A meta-command must be the whole input, so "help the wounded knight" is
// played, not answered with the help text. save and load take one optional
// name; quest takes "add" or "done" followed by the quest.
func (m model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])

	switch {
	case len(fields) == 1 && verb == "quit":
		return m, tea.Quit
	case len(fields) == 1 && verb == "help":
		m.appendLog(systemStyle.Render(helpText))
		return m, nil
	case len(fields) == 1 && verb == "inventory":
		m.appendLog(systemStyle.Render(m.inventoryText()))
		return m, nil
	case len(fields) == 1 && verb == "stats":
		m.appendLog(systemStyle.Render(m.statsText()))
		return m, nil
	case len(fields) == 1 && verb == "summary":
		m.appendLog(systemStyle.Width(m.logWidth()).Render(m.engine.Summary()))
		return m, nil
	case len(fields) <= 2 && (verb == "save" || verb == "load"):
		arg := ""
		if len(fields) == 2 {
			arg = fields[1]
		}
		m.state = stateThinking
		return m, m.persist(verb, arg)
	case verb == "quest" && len(fields) == 1:
		m.appendLog(systemStyle.Render(m.questText()))
		return m, nil
	case verb == "quest" && len(fields) > 2:
		if text, ok := m.questCommand(strings.ToLower(fields[1]), strings.Join(fields[2:], " ")); ok {
			m.appendLog(systemStyle.Render(text))
			m.refreshSidebar()
			return m, nil
		}
	}

	m.state = stateThinking
	return m, m.processTurn(input)
}

// questCommand handles "quest add" and "quest done". It reports false for any
// other sub-command so the input is played as an action.
func (m model) questCommand(sub, quest string) (string, bool) {
	switch sub {
	case "add":
		if m.engine.AddQuest(quest) {
			return fmt.Sprintf("New quest: %s", quest), true
		}
		return fmt.Sprintf("You already know of the quest %q.", quest), true
	case "done":
		if m.engine.CompleteQuest(quest) {
			return fmt.Sprintf("Quest completed: %s", quest), true
		}
		return fmt.Sprintf("No active quest named %q.", quest), true
	}
	return "", false
}

func (m model) questText() string {
	s := m.engine.Session()
	var b strings.Builder
	b.WriteString("Active quests:")
	if len(s.ActiveQuests) == 0 {
		b.WriteString(" (none)")
	}
	for _, q := range s.ActiveQuests {
		b.WriteString("\n- " + q)
	}
	if len(s.CompletedQuests) > 0 {
		b.WriteString("\nCompleted:\n- " + strings.Join(s.CompletedQuests, "\n- "))
	}
	return b.String()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateChooseGenre:
		var b strings.Builder
		for _, key := range models.GenreKeys() {
			g, _ := models.LookupGenre(key)
			fmt.Fprintf(&b, "- %s: %s\n", key, g.Description)
		}
		s = fmt.Sprintf(
			"Welcome to Storyteller!\n\nAvailable genres:\n%s\n%s\n\n%s",
			b.String(),
			"Choose a genre (and optionally a setting):",
			m.textInput.View(),
		)

	case stateLoading:
		s = "\n  Setting the scene... please wait.\n"

	case statePlaying, stateThinking:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			stateStyle.Width(int(float64(m.width)*0.23)).Height(m.viewport.Height).Render(m.sidebar),
		)

		input := m.textInput.View()
		if m.state == stateThinking {
			input = helpStyle.Render("The story unfolds...")
		}
		help := helpStyle.Render("Commands: help, inventory, stats, summary, quest, save, load, quit, or just type what you want to do.")

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+input,
			"\n"+help,
		)
	}

	return "\n" + s + "\n"
}

func (m *model) appendLog(block string) {
	if m.gameLog != "" {
		m.gameLog += "\n\n"
	}
	m.gameLog += block
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

// refreshSidebar renders the side panel from the session. It only runs on
// the update loop while no turn is in flight.
func (m *model) refreshSidebar() {
	s := m.engine.Session()
	if s == nil {
		m.sidebar = ""
		return
	}

	location := titleStyle.Render("SCENE") + "\n" + s.CurrentScene + "\n\n"
	stats := titleStyle.Render("STATS") + "\n" + m.statsText() + "\n\n"

	quests := titleStyle.Render("QUESTS") + "\n"
	if len(s.ActiveQuests) == 0 {
		quests += "(none)\n"
	}
	for _, q := range s.ActiveQuests {
		quests += "- " + q + "\n"
	}

	st := s.Log.Stats()
	history := fmt.Sprintf("\n%s\nTurns: %d\nSegments: %d\nContext: %d segments\n",
		titleStyle.Render("HISTORY"), st.InteractionCount, st.TotalSegments, st.WindowSize)

	m.sidebar = location + stats + quests + history
}

func (m model) inventoryText() string {
	inv := m.engine.Session().Inventory
	if len(inv) == 0 {
		return "Your inventory is empty."
	}
	return "Your inventory:\n- " + strings.Join(inv, "\n- ")
}

func (m model) statsText() string {
	st := m.engine.Session().Stats
	return fmt.Sprintf("Health: %d\nStrength: %d\nIntelligence: %d\nCharisma: %d",
		st.Health, st.Strength, st.Intelligence, st.Charisma)
}

// parseGenre splits "horror old lighthouse" into a genre key and a setting.
func parseGenre(input string) (string, string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return models.DefaultGenre, ""
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " ")
}

func (m model) startSession(genre, setting string) tea.Cmd {
	return func() tea.Msg {
		s := m.engine.NewSession(genre, setting, models.DefaultPlayerStats())
		scene := s.CurrentScene
		if m.opening {
			scene, _ = m.engine.GenerateOpening(context.Background())
		}
		return sessionStartedMsg{scene}
	}
}

func (m model) processTurn(action string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.engine.ProcessTurn(context.Background(), action)
		return turnProcessedMsg{res, err}
	}
}

func (m model) persist(verb, name string) tea.Cmd {
	if name == "" {
		name = engine.DefaultSaveName
	}
	return func() tea.Msg {
		var err error
		if verb == "save" {
			err = m.engine.Save(context.Background(), name)
		} else {
			err = m.engine.Load(context.Background(), name)
		}
		return persistedMsg{verb, name, err}
	}
}

func Run(eng *engine.Engine, opening bool) error {
	p := tea.NewProgram(NewModel(eng, opening), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
