// Package classifier maps raw player input to an action type.
package classifier

import (
	"strings"

	"github.com/tatianab/storyteller/internal/models"
)

// Rule configures how one action type is recognised.
type Rule struct {
	Type     models.ActionType
	Keyword  string
	Examples []string
}

// Classifier matches input against its rules in order. Matching is a
// case-insensitive substring test, not a word-boundary one, so "fuse the
// wires" counts as containing "use".
type Classifier struct {
	rules []Rule
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:     models.ActionMove,
			Keyword:  "move",
			Examples: []string{"go north", "walk to the door", "enter the building"},
		},
		{
			Type:     models.ActionTalk,
			Keyword:  "talk",
			Examples: []string{"speak to the merchant", "ask about the quest", "greet the guard"},
		},
		{
			Type:     models.ActionFight,
			Keyword:  "fight",
			Examples: []string{"attack the enemy", "defend yourself", "use your weapon"},
		},
		{
			Type:     models.ActionUse,
			Keyword:  "use",
			Examples: []string{"pick up the key", "use the potion", "examine the map"},
		},
		{
			Type:     models.ActionInvestigate,
			Keyword:  "investigate",
			Examples: []string{"look around", "search the room", "inspect the"},
		},
	}
}

// New returns a Classifier over rules. Rules are consulted in the given
// order; keywords and examples are lowered once here.
func New(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		lowered := Rule{
			Type:     r.Type,
			Keyword:  strings.ToLower(strings.TrimSpace(r.Keyword)),
			Examples: make([]string, 0, len(r.Examples)),
		}
		for _, ex := range r.Examples {
			if ex = strings.ToLower(strings.TrimSpace(ex)); ex != "" {
				lowered.Examples = append(lowered.Examples, ex)
			}
		}
		c.rules = append(c.rules, lowered)
	}
	return c
}

// NewDefault returns a Classifier over DefaultRules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify returns the action type for text. Example phrases are tried
// first across all rules, then each rule's keyword.
func (c *Classifier) Classify(text string) models.ActionType {
	action := strings.ToLower(strings.TrimSpace(text))
	if action == "" {
		return models.ActionUnknown
	}

	for _, r := range c.rules {
		for _, ex := range r.Examples {
			if strings.Contains(action, ex) {
				return r.Type
			}
		}
	}

	for _, r := range c.rules {
		if r.Keyword != "" && strings.Contains(action, r.Keyword) {
			return r.Type
		}
	}

	return models.ActionUnknown
}
