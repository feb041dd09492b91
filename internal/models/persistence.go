package models

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSaveDir = ".saves"

	gameFile  = "game_state.yaml"
	storyFile = "story.yaml"
)

var (
	// ErrSessionNotFound is returned when no saved record exists under a name.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCorruptRecord is returned when a saved record cannot be decoded or
	// describes an impossible state.
	ErrCorruptRecord = errors.New("corrupt session record")
)

// EncodeRecord marshals a record to YAML.
func EncodeRecord(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return buf.Bytes(), nil
}

// DecodeRecord unmarshals YAML into v, rejecting unknown fields. Any failure
// is reported as ErrCorruptRecord.
func DecodeRecord(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Wrap(ErrCorruptRecord, "empty record")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(ErrCorruptRecord, "decode: %v", err)
	}
	return nil
}

// FileStore keeps each session in its own directory of YAML files.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir, or DefaultSaveDir when dir
// is empty.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultSaveDir
	}
	return &FileStore{Dir: dir}
}

func (s *FileStore) Save(_ context.Context, name string, game GameRecord, story StoryRecord) error {
	dir := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create save dir")
	}

	gameData, err := EncodeRecord(game)
	if err != nil {
		return err
	}
	storyData, err := EncodeRecord(story)
	if err != nil {
		return err
	}

	// game_state.yaml marks a session as present, so it goes last.
	if err := writeFileAtomic(filepath.Join(dir, storyFile), storyData); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, gameFile), gameData)
}

func (s *FileStore) Load(_ context.Context, name string) (*GameRecord, *StoryRecord, error) {
	dir := filepath.Join(s.Dir, name)

	gameData, err := os.ReadFile(filepath.Join(dir, gameFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(ErrSessionNotFound, "%s", name)
		}
		return nil, nil, errors.Wrap(err, "read game record")
	}
	var game GameRecord
	if err := DecodeRecord(gameData, &game); err != nil {
		return nil, nil, errors.Wrap(err, gameFile)
	}

	storyData, err := os.ReadFile(filepath.Join(dir, storyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(ErrCorruptRecord, "%s: missing %s", name, storyFile)
		}
		return nil, nil, errors.Wrap(err, "read story record")
	}
	var story StoryRecord
	if err := DecodeRecord(storyData, &story); err != nil {
		return nil, nil, errors.Wrap(err, storyFile)
	}

	return &game, &story, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() {
			// game_state.yaml marks a valid session
			gamePath := filepath.Join(s.Dir, entry.Name(), gameFile)
			if _, err := os.Stat(gamePath); err == nil {
				sessions = append(sessions, entry.Name())
			}
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}

func (s *FileStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
