// Package store keeps saved sessions in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/tatianab/storyteller/internal/models"
)

// Record keys. The game and story halves of a session are stored as
// separate rows.
const (
	KeyGameState = "game_state"
	KeyStory     = "story"
)

// SQLiteStore implements the session backend on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS session_records (
		session    TEXT NOT NULL,
		key        TEXT NOT NULL,
		payload    TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (session, key)
	);
	CREATE INDEX IF NOT EXISTS idx_session_records_key ON session_records(key);
	`)
	return err
}

// Save writes both records in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, game models.GameRecord, story models.StoryRecord) error {
	gameData, err := models.EncodeRecord(game)
	if err != nil {
		return err
	}
	storyData, err := models.EncodeRecord(story)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	const upsert = `INSERT INTO session_records (session, key, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session, key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, name, KeyGameState, string(gameData), now); err != nil {
		return errors.Wrap(err, "write game record")
	}
	if _, err := tx.ExecContext(ctx, upsert, name, KeyStory, string(storyData), now); err != nil {
		return errors.Wrap(err, "write story record")
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLiteStore) payload(ctx context.Context, name, key string) (string, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM session_records WHERE session = ? AND key = ?`, name, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read %s", key)
	}
	return payload, true, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*models.GameRecord, *models.StoryRecord, error) {
	gameData, ok, err := s.payload(ctx, name, KeyGameState)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.Wrapf(models.ErrSessionNotFound, "%s", name)
	}
	var game models.GameRecord
	if err := models.DecodeRecord([]byte(gameData), &game); err != nil {
		return nil, nil, errors.Wrap(err, KeyGameState)
	}

	storyData, ok, err := s.payload(ctx, name, KeyStory)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.Wrapf(models.ErrCorruptRecord, "%s: missing %s record", name, KeyStory)
	}
	var story models.StoryRecord
	if err := models.DecodeRecord([]byte(storyData), &story); err != nil {
		return nil, nil, errors.Wrap(err, KeyStory)
	}

	return &game, &story, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session FROM session_records WHERE key = ? ORDER BY session`, KeyGameState)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		sessions = append(sessions, name)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
