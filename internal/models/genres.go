package models

import "sort"

// Genre describes one playable genre.
type Genre struct {
	Key           string
	Name          string
	Description   string
	InitialScene  string
	StartingItems []string
}

// DefaultGenre is used when a session names a genre that does not exist.
const DefaultGenre = "fantasy"

var genres = map[string]Genre{
	"fantasy": {
		Key:           "fantasy",
		Name:          "Fantasy",
		Description:   "A world of magic, dragons, and medieval adventure",
		InitialScene:  "You find yourself in a medieval tavern. The air is thick with the smell of mead and wood smoke.",
		StartingItems: []string{"a short sword", "a waterskin"},
	},
	"scifi": {
		Key:           "scifi",
		Name:          "Science Fiction",
		Description:   "A futuristic world of space travel and advanced technology",
		InitialScene:  "You wake up in a cryogenic pod aboard a spaceship. The ship's AI announces your revival.",
		StartingItems: []string{"a ration pack"},
	},
	"horror": {
		Key:           "horror",
		Name:          "Horror",
		Description:   "A world of mystery, fear, and supernatural elements",
		InitialScene:  "You stand in an abandoned mansion. The floorboards creak beneath your feet.",
		StartingItems: []string{"a flickering candle"},
	},
	"modern": {
		Key:           "modern",
		Name:          "Modern",
		Description:   "A contemporary world of everyday life and adventure",
		InitialScene:  "You're in a bustling city street. People rush past you, lost in their own worlds.",
		StartingItems: []string{"a smartphone", "a wallet"},
	},
	"apocalyptic": {
		Key:           "apocalyptic",
		Name:          "Apocalyptic",
		Description:   "A world after civilization's collapse, where survival is the ultimate goal",
		InitialScene:  "You emerge from your shelter into a desolate wasteland. The ruins of civilization stretch before you.",
		StartingItems: []string{"a gas mask", "a rusty knife"},
	},
	"cyberpunk": {
		Key:           "cyberpunk",
		Name:          "Cyberpunk",
		Description:   "A high-tech, low-life future where corporations rule and technology is everywhere",
		InitialScene:  "Neon lights flicker through the rain as you navigate the crowded streets of the megacity.",
		StartingItems: []string{"a cracked datapad"},
	},
}

// LookupGenre returns the genre for key, falling back to DefaultGenre.
// The boolean reports whether key itself was found.
func LookupGenre(key string) (Genre, bool) {
	if g, ok := genres[key]; ok {
		return g, true
	}
	return genres[DefaultGenre], false
}

// GenreKeys returns all genre keys in alphabetical order.
func GenreKeys() []string {
	keys := make([]string, 0, len(genres))
	for k := range genres {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
