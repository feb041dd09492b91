package engine

import (
	"context"
	"regexp"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/memory"
	"github.com/tatianab/storyteller/internal/models"
	"github.com/tatianab/storyteller/internal/store"
	"github.com/tatianab/storyteller/internal/story"
)

// DefaultSaveName is used when a save or load names no session.
const DefaultSaveName = "current"

var saveNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store persists the two records of a session.
type Store interface {
	Save(ctx context.Context, name string, game models.GameRecord, story models.StoryRecord) error
	Load(ctx context.Context, name string) (*models.GameRecord, *models.StoryRecord, error)
	List(ctx context.Context) ([]string, error)
	Close() error
}

// StoreOpener opens the backing store. It is called once per save or load
// and the store is closed when that operation returns.
type StoreOpener func() (Store, error)

// OpenerFromConfig returns the opener for cfg.SaveBackend.
func OpenerFromConfig(cfg *config.Config) StoreOpener {
	switch cfg.SaveBackend {
	case "sqlite":
		path := cfg.DBPath
		return func() (Store, error) { return store.NewSQLiteStore(path) }
	}
	dir := cfg.SaveDir
	return func() (Store, error) { return models.NewFileStore(dir), nil }
}

func saveName(name string) (string, error) {
	if name == "" {
		return DefaultSaveName, nil
	}
	if !saveNameRE.MatchString(name) {
		return "", errors.Errorf("invalid save name %q", name)
	}
	return name, nil
}

// Snapshot converts s into its persisted records. Both records carry the
// same fresh revision.
func Snapshot(s *SessionState) (models.GameRecord, models.StoryRecord) {
	rev := ulid.Make().String()
	game := models.GameRecord{
		ID:              s.ID,
		Revision:        rev,
		Genre:           s.Genre,
		Setting:         s.Setting,
		CurrentScene:    s.CurrentScene,
		Memory:          s.Memory.Snapshot(),
		ActiveQuests:    append([]string{}, s.ActiveQuests...),
		CompletedQuests: append([]string{}, s.CompletedQuests...),
		Stats:           s.Stats,
		Inventory:       append([]string(nil), s.Inventory...),
	}
	st := models.StoryRecord{
		Revision:         rev,
		Segments:         s.Log.Segments(),
		InteractionCount: s.Log.InteractionCount(),
		Summary:          s.Log.Summary(),
	}
	return game, st
}

// RestoreSession rebuilds a session from its records. The context window is
// recomputed with budget. Invalid contents, or records written by different
// saves, are reported as ErrCorruptRecord.
func RestoreSession(game *models.GameRecord, st *models.StoryRecord, budget int) (*SessionState, error) {
	if game.Revision != st.Revision {
		return nil, errors.Wrapf(models.ErrCorruptRecord, "game revision %q does not match story revision %q", game.Revision, st.Revision)
	}
	log, err := story.Restore(st.Segments, st.InteractionCount, budget)
	if err != nil {
		return nil, errors.Wrapf(models.ErrCorruptRecord, "story: %v", err)
	}
	mem, err := memory.Restore(game.Memory)
	if err != nil {
		return nil, errors.Wrapf(models.ErrCorruptRecord, "memory: %v", err)
	}
	if _, ok := models.LookupGenre(game.Genre); !ok {
		return nil, errors.Wrapf(models.ErrCorruptRecord, "unknown genre %q", game.Genre)
	}

	s := &SessionState{
		ID:              game.ID,
		Genre:           game.Genre,
		Setting:         game.Setting,
		CurrentScene:    game.CurrentScene,
		Log:             log,
		Memory:          mem,
		Stats:           game.Stats,
		Inventory:       game.Inventory,
		ActiveQuests:    game.ActiveQuests,
		CompletedQuests: game.CompletedQuests,
	}
	if s.ActiveQuests == nil {
		s.ActiveQuests = []string{}
	}
	if s.CompletedQuests == nil {
		s.CompletedQuests = []string{}
	}
	return s, nil
}

// Save writes the active session under name.
func (e *Engine) Save(ctx context.Context, name string) error {
	if e.session == nil {
		return ErrNoSession
	}
	name, err := saveName(name)
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer st.Close()

	game, record := Snapshot(e.session)
	if err := st.Save(ctx, name, game, record); err != nil {
		e.logger.Error().Err(err).Str("save", name).Msg("save failed")
		return errors.Wrapf(err, "save %s", name)
	}
	e.logger.Info().Str("save", name).Int("segments", len(record.Segments)).Msg("session saved")
	return nil
}

// Load replaces the active session with the one saved under name. When the
// save is missing or corrupt the active session is left untouched and the
// error wraps models.ErrSessionNotFound or models.ErrCorruptRecord.
func (e *Engine) Load(ctx context.Context, name string) error {
	name, err := saveName(name)
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer st.Close()

	game, record, err := st.Load(ctx, name)
	if err == nil {
		var s *SessionState
		s, err = RestoreSession(game, record, e.cfg.ContextLength)
		if err == nil {
			e.session = s
			e.logger.Info().Str("save", name).Str("session", s.ID).Int("segments", s.Log.Len()).Msg("session loaded")
			return nil
		}
	}

	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		e.logger.Warn().Str("save", name).Msg("no saved session, keeping current state")
	case errors.Is(err, models.ErrCorruptRecord):
		e.logger.Error().Err(err).Str("save", name).Msg("saved session is corrupt, keeping current state")
	default:
		e.logger.Error().Err(err).Str("save", name).Msg("load failed, keeping current state")
	}
	return errors.Wrapf(err, "load %s", name)
}

// ListSaves returns the names of all saved sessions.
func (e *Engine) ListSaves(ctx context.Context) ([]string, error) {
	st, err := e.openStore()
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	defer st.Close()
	return st.List(ctx)
}
