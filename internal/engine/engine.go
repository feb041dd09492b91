package engine

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tatianab/storyteller/internal/classifier"
	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/memory"
	"github.com/tatianab/storyteller/internal/models"
	"github.com/tatianab/storyteller/internal/prompt"
	"github.com/tatianab/storyteller/internal/story"
)

const (
	maxContinuationChars = 300
	digestPerCategory    = 3

	defaultContinuation = "The story continues with an interesting development..."
)

var (
	ErrNoSession   = errors.New("no active session")
	ErrEmptyAction = errors.New("empty action")
)

// Fallback texts used when generation fails, per action type.
var fallbacks = map[models.ActionType]string{
	models.ActionMove:        "You move in that direction.",
	models.ActionTalk:        "You attempt to communicate.",
	models.ActionFight:       "You prepare for combat.",
	models.ActionUse:         "You interact with the item.",
	models.ActionInvestigate: "You look around carefully.",
	models.ActionUnknown:     "You attempt to perform that action.",
}

// Fallback returns the fixed response for t.
func Fallback(t models.ActionType) string {
	if f, ok := fallbacks[t]; ok {
		return f
	}
	return fallbacks[models.ActionUnknown]
}

// Generator produces a continuation for a prompt. background carries
// remembered facts that are not part of the prompt itself.
type Generator interface {
	Generate(ctx context.Context, prompt, background string) (string, error)
}

// SessionState is everything that makes up one game session.
type SessionState struct {
	ID              string
	Genre           string
	Setting         string
	CurrentScene    string
	Log             *story.Log
	Memory          *memory.Store
	Stats           models.PlayerStats
	Inventory       []string
	ActiveQuests    []string
	CompletedQuests []string
}

// Engine runs turns for a single session. It is not safe for concurrent use.
type Engine struct {
	cfg        config.Config
	logger     zerolog.Logger
	classifier *classifier.Classifier
	generator  Generator
	openStore  StoreOpener
	session    *SessionState
}

// New returns an engine without a session; call NewSession or Load next.
func New(cfg *config.Config, gen Generator, openStore StoreOpener, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:        *cfg,
		logger:     logger.With().Str("component", "engine").Logger(),
		classifier: classifier.NewDefault(),
		generator:  gen,
		openStore:  openStore,
	}
}

// Session returns the active session, or nil.
func (e *Engine) Session() *SessionState { return e.session }

// NewSession starts a session in genre, seeded with the genre's opening
// scene. Unknown genres fall back to the default genre.
func (e *Engine) NewSession(genre, setting string, stats models.PlayerStats) *SessionState {
	g, ok := models.LookupGenre(genre)
	if !ok {
		e.logger.Warn().Str("genre", genre).Str("fallback", g.Key).Msg("unknown genre")
	}

	log := story.NewLog(e.cfg.ContextLength)
	log.AppendStory(g.InitialScene)

	e.session = &SessionState{
		ID:              ulid.Make().String(),
		Genre:           g.Key,
		Setting:         strings.TrimSpace(setting),
		CurrentScene:    g.InitialScene,
		Log:             log,
		Memory:          memory.New(),
		Stats:           stats,
		Inventory:       append([]string(nil), g.StartingItems...),
		ActiveQuests:    []string{},
		CompletedQuests: []string{},
	}
	e.logger.Info().Str("session", e.session.ID).Str("genre", g.Key).Str("setting", e.session.Setting).Msg("session started")
	return e.session
}

// GenerateOpening asks the generator for an opening scene and appends it as
// story. On failure the seeded scene stays current and false is returned.
func (e *Engine) GenerateOpening(ctx context.Context) (string, bool) {
	s := e.session
	if s == nil {
		return "", false
	}
	g, _ := models.LookupGenre(s.Genre)
	p := prompt.Opening(g.Name, s.Setting)

	out, err := e.generate(ctx, p, "")
	if err != nil {
		e.logger.Warn().Err(err).Msg("opening scene generation failed, keeping seeded scene")
		return s.CurrentScene, false
	}
	scene := cleanContinuation(out, p)
	s.Log.AppendStory(scene)
	s.CurrentScene = scene
	return scene, true
}

// TurnResult describes one processed player action.
type TurnResult struct {
	Action   string
	Type     models.ActionType
	Response string
	Segment  models.Segment
	Injected bool
	// Fallback is set when generation failed and Response is the fixed
	// text for Type. Cause holds the failure.
	Fallback bool
	Cause    error
}

// ProcessTurn classifies action, generates a response and records it. A
// generation failure never fails the turn; the fallback text is used and the
// log still advances by exactly one player action and one response.
func (e *Engine) ProcessTurn(ctx context.Context, action string) (*TurnResult, error) {
	s := e.session
	if s == nil {
		return nil, ErrNoSession
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, ErrEmptyAction
	}

	t := e.classifier.Classify(action)
	s.Log.AppendPlayerAction(action)

	res := &TurnResult{Action: action, Type: t}
	var injected string
	if s.Log.ShouldInjectContext(e.cfg.InjectionInterval) {
		injected = s.Log.ContextText()
		res.Injected = true
	}

	g, _ := models.LookupGenre(s.Genre)
	p := prompt.Compose(t, action, g.Name, s.Setting, injected)

	out, err := e.generate(ctx, p, s.Memory.Digest(digestPerCategory))
	if err != nil {
		e.logger.Warn().Err(err).Str("action_type", t.String()).Int("interaction", s.Log.InteractionCount()).Msg("generation failed, using fallback")
		res.Response = Fallback(t)
		res.Fallback = true
		res.Cause = err
	} else {
		res.Response = cleanContinuation(out, p)
	}

	res.Segment = s.Log.AppendAIResponse(res.Response)
	s.Memory.Record(t, action, res.Response)
	s.CurrentScene = res.Response

	e.logger.Debug().
		Str("action_type", t.String()).
		Bool("injected", res.Injected).
		Bool("fallback", res.Fallback).
		Int("segment", res.Segment.Index).
		Int("window", len(s.Log.Window())).
		Msg("turn processed")
	return res, nil
}

// generate calls the generator with the configured wait budget.
func (e *Engine) generate(ctx context.Context, p, background string) (string, error) {
	if e.generator == nil {
		return "", errors.New("no generator configured")
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
	defer cancel()

	out, err := e.generator.Generate(ctx, p, background)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), "generation timed out")
		}
		return "", err
	}
	return out, nil
}

// cleanContinuation strips any echoed prompt and labels from model output
// and caps its length.
func cleanContinuation(output, p string) string {
	continuation := output
	if p != "" {
		if i := strings.LastIndex(output, p); i >= 0 {
			continuation = output[i+len(p):]
		}
	}
	continuation = strings.ReplaceAll(continuation, "Context:", "")
	continuation = strings.ReplaceAll(continuation, "Story Prompt:", "")
	continuation = strings.TrimSpace(continuation)

	if utf8.RuneCountInString(continuation) > maxContinuationChars {
		continuation = truncateRunes(continuation, maxContinuationChars) + "..."
	}
	if continuation == "" {
		return defaultContinuation
	}
	return continuation
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// AddQuest starts tracking quest. It reports false if the quest is already
// active or completed.
func (e *Engine) AddQuest(quest string) bool {
	s := e.session
	quest = strings.TrimSpace(quest)
	if s == nil || quest == "" || contains(s.ActiveQuests, quest) || contains(s.CompletedQuests, quest) {
		return false
	}
	s.ActiveQuests = append(s.ActiveQuests, quest)
	e.note(models.CategoryQuestProgress, quest, "active")
	e.logger.Info().Str("quest", quest).Msg("quest added")
	return true
}

// CompleteQuest moves an active quest to the completed list and records the
// scene it was completed in.
func (e *Engine) CompleteQuest(quest string) bool {
	s := e.session
	if s == nil {
		return false
	}
	quest = strings.TrimSpace(quest)
	for i, q := range s.ActiveQuests {
		if q == quest {
			s.ActiveQuests = append(s.ActiveQuests[:i:i], s.ActiveQuests[i+1:]...)
			s.CompletedQuests = append(s.CompletedQuests, quest)
			e.note(models.CategoryQuestProgress, quest, "completed")
			e.note(models.CategoryStoryProgress, quest, s.CurrentScene)
			e.logger.Info().Str("quest", quest).Msg("quest completed")
			return true
		}
	}
	return false
}

// note writes into one of the fixed categories; a failure means the
// category table and models.Categories disagree.
func (e *Engine) note(c models.Category, key, value string) {
	if err := e.session.Memory.Note(c, key, value); err != nil {
		e.logger.Error().Err(err).Str("category", string(c)).Msg("memory note rejected")
	}
}

// RecentStory returns the configured number of recent story chunks.
func (e *Engine) RecentStory() []string {
	if e.session == nil {
		return nil
	}
	return e.session.Log.RecentStoryChunks(e.cfg.StoryChunkSize)
}

// Summary returns the story summary of the active session.
func (e *Engine) Summary() string {
	if e.session == nil {
		return story.NoStoryYet
	}
	return e.session.Log.Summary()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
