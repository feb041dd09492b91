package models

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() (GameRecord, StoryRecord) {
	game := GameRecord{
		ID:           "01HZXTEST",
		Revision:     "01HZXREV",
		Genre:        "fantasy",
		Setting:      "haunted forest",
		CurrentScene: "You see trees.",
		Memory: map[Category]map[string]string{
			CategoryNPCInteractions: {"greet guard": "The guard nods."},
		},
		ActiveQuests:    []string{"find the key"},
		CompletedQuests: []string{},
		Stats:           DefaultPlayerStats(),
		Inventory:       []string{"map"},
	}
	story := StoryRecord{
		Revision: "01HZXREV",
		Segments: []Segment{
			{Index: 0, Kind: KindStory, Text: "A dark forest."},
			{Index: 1, Kind: KindPlayerAction, Text: "look"},
			{Index: 2, Kind: KindAIResponse, Text: "You see trees."},
		},
		InteractionCount: 1,
		Summary:          "A dark forest.",
	}
	return game, story
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir())
	game, story := sampleRecords()

	require.NoError(t, s.Save(ctx, "current", game, story))

	gotGame, gotStory, err := s.Load(ctx, "current")
	require.NoError(t, err)
	assert.Equal(t, game, *gotGame)
	assert.Equal(t, story, *gotStory)

	sessions, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"current"}, sessions)
}

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, _, err := s.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestFileStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir)
	game, story := sampleRecords()
	require.NoError(t, s.Save(ctx, "broken", game, story))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", storyFile), []byte("segments: [oops"), 0644))

	_, _, err := s.Load(ctx, "broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestFileStoreListIgnoresStrayDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
	s := NewFileStore(dir)

	sessions, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDecodeRecordRejectsUnknownFields(t *testing.T) {
	var story StoryRecord
	err := DecodeRecord([]byte("segments: []\nwindow: []\n"), &story)
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestLookupGenreFallsBack(t *testing.T) {
	g, ok := LookupGenre("western")
	assert.False(t, ok)
	assert.Equal(t, DefaultGenre, g.Key)

	g, ok = LookupGenre("horror")
	assert.True(t, ok)
	assert.Equal(t, "Horror", g.Name)
}
