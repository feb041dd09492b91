package models

// ActionType is the classification of a player's raw input.
type ActionType string

const (
	ActionMove        ActionType = "move"
	ActionTalk        ActionType = "talk"
	ActionFight       ActionType = "fight"
	ActionUse         ActionType = "use"
	ActionInvestigate ActionType = "investigate"
	ActionUnknown     ActionType = "unknown"
)

// ActionTypes lists the classifiable action types in priority order.
// Unknown is not part of it.
var ActionTypes = []ActionType{
	ActionMove,
	ActionTalk,
	ActionFight,
	ActionUse,
	ActionInvestigate,
}

func (a ActionType) String() string { return string(a) }

// SegmentKind tells story text, player input and generated responses apart.
type SegmentKind string

const (
	KindStory        SegmentKind = "story"
	KindPlayerAction SegmentKind = "player_action"
	KindAIResponse   SegmentKind = "ai_response"
)

// Valid reports whether k is one of the known segment kinds.
func (k SegmentKind) Valid() bool {
	switch k {
	case KindStory, KindPlayerAction, KindAIResponse:
		return true
	}
	return false
}

// Segment is one immutable unit of narrative history.
type Segment struct {
	Index int         `yaml:"index"`
	Kind  SegmentKind `yaml:"kind"`
	Text  string      `yaml:"text"`
}

// Category partitions the memory store.
type Category string

const (
	CategoryNPCInteractions   Category = "npc-interactions"
	CategoryLocationDiscovery Category = "location-discovery"
	CategoryItemUsage         Category = "item-usage"
	CategoryCluesFound        Category = "clues-found"
	CategoryQuestProgress     Category = "quest-progress"
	CategoryStoryProgress     Category = "story-progress"
)

// Categories is the closed set of memory categories.
var Categories = []Category{
	CategoryNPCInteractions,
	CategoryLocationDiscovery,
	CategoryItemUsage,
	CategoryCluesFound,
	CategoryQuestProgress,
	CategoryStoryProgress,
}

// PlayerStats holds the character sheet of the player.
type PlayerStats struct {
	Health       int `yaml:"health"`
	Strength     int `yaml:"strength"`
	Intelligence int `yaml:"intelligence"`
	Charisma     int `yaml:"charisma"`
}

// DefaultPlayerStats returns the stats a new character starts with.
func DefaultPlayerStats() PlayerStats {
	return PlayerStats{
		Health:       100,
		Strength:     10,
		Intelligence: 10,
		Charisma:     10,
	}
}

// GameRecord is the persisted game half of a session. Revision matches the
// StoryRecord written by the same save.
type GameRecord struct {
	ID              string                         `yaml:"id"`
	Revision        string                         `yaml:"revision"`
	Genre           string                         `yaml:"genre"`
	Setting         string                         `yaml:"setting"`
	CurrentScene    string                         `yaml:"current_scene"`
	Memory          map[Category]map[string]string `yaml:"memory"`
	ActiveQuests    []string                       `yaml:"active_quests"`
	CompletedQuests []string                       `yaml:"completed_quests"`
	Stats           PlayerStats                    `yaml:"stats"`
	Inventory       []string                       `yaml:"inventory,omitempty"`
}

// StoryRecord is the persisted narrative half of a session. The context
// window is derived from Segments and is never stored.
type StoryRecord struct {
	Revision         string    `yaml:"revision"`
	Segments         []Segment `yaml:"segments"`
	InteractionCount int       `yaml:"interaction_count"`
	Summary          string    `yaml:"summary"`
}
