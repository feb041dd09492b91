// Package memory records what the player did and what came of it, split
// into a fixed set of categories.
package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tatianab/storyteller/internal/models"
)

// Store holds one map per category, keyed by action text. The zero value is
// not usable; call New.
type Store struct {
	npcInteractions   map[string]string
	locationDiscovery map[string]string
	itemUsage         map[string]string
	cluesFound        map[string]string
	questProgress     map[string]string
	storyProgress     map[string]string
}

func New() *Store {
	return &Store{
		npcInteractions:   map[string]string{},
		locationDiscovery: map[string]string{},
		itemUsage:         map[string]string{},
		cluesFound:        map[string]string{},
		questProgress:     map[string]string{},
		storyProgress:     map[string]string{},
	}
}

func (s *Store) category(c models.Category) (map[string]string, bool) {
	switch c {
	case models.CategoryNPCInteractions:
		return s.npcInteractions, true
	case models.CategoryLocationDiscovery:
		return s.locationDiscovery, true
	case models.CategoryItemUsage:
		return s.itemUsage, true
	case models.CategoryCluesFound:
		return s.cluesFound, true
	case models.CategoryQuestProgress:
		return s.questProgress, true
	case models.CategoryStoryProgress:
		return s.storyProgress, true
	}
	return nil, false
}

// CategoryFor returns the category an action type records into. Fight and
// Unknown record nothing.
func CategoryFor(t models.ActionType) (models.Category, bool) {
	switch t {
	case models.ActionTalk:
		return models.CategoryNPCInteractions, true
	case models.ActionMove:
		return models.CategoryLocationDiscovery, true
	case models.ActionUse:
		return models.CategoryItemUsage, true
	case models.ActionInvestigate:
		return models.CategoryCluesFound, true
	}
	return "", false
}

// Record stores response under action in the category for t. A later record
// of the same action replaces the earlier one. It reports whether anything
// was written.
func (s *Store) Record(t models.ActionType, action, response string) bool {
	c, ok := CategoryFor(t)
	if !ok {
		return false
	}
	m, _ := s.category(c)
	m[action] = response
	return true
}

// Note writes key directly into category c.
func (s *Store) Note(c models.Category, key, value string) error {
	m, ok := s.category(c)
	if !ok {
		return errors.Errorf("unknown memory category %q", c)
	}
	m[key] = value
	return nil
}

// Outcome returns what was recorded for action in category c.
func (s *Store) Outcome(c models.Category, action string) (string, bool) {
	m, ok := s.category(c)
	if !ok {
		return "", false
	}
	v, ok := m[action]
	return v, ok
}

// Actions returns the distinct action texts recorded in c, sorted.
func (s *Store) Actions(c models.Category) []string {
	m, _ := s.category(c)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) Len(c models.Category) int {
	m, _ := s.category(c)
	return len(m)
}

// Snapshot copies every category, including empty ones.
func (s *Store) Snapshot() map[models.Category]map[string]string {
	out := make(map[models.Category]map[string]string, len(models.Categories))
	for _, c := range models.Categories {
		m, _ := s.category(c)
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[c] = cp
	}
	return out
}

// Restore builds a Store from a snapshot. Categories outside the closed set
// are rejected.
func Restore(snap map[models.Category]map[string]string) (*Store, error) {
	s := New()
	for c, entries := range snap {
		m, ok := s.category(c)
		if !ok {
			return nil, errors.Errorf("unknown memory category %q", c)
		}
		for k, v := range entries {
			m[k] = v
		}
	}
	return s, nil
}

var categoryLabels = map[models.Category]string{
	models.CategoryNPCInteractions:   "People met",
	models.CategoryLocationDiscovery: "Places visited",
	models.CategoryItemUsage:         "Items used",
	models.CategoryCluesFound:        "Clues found",
	models.CategoryQuestProgress:     "Quest progress",
	models.CategoryStoryProgress:     "Story so far",
}

// Digest renders up to perCategory recorded actions from each non-empty
// category as a bulleted block. Actions are taken from the end of the sorted
// list, so the selection is alphabetical, not by recency. A non-positive
// perCategory renders everything. It returns "" when nothing is recorded.
func (s *Store) Digest(perCategory int) string {
	var b strings.Builder
	for _, c := range models.Categories {
		actions := s.Actions(c)
		if len(actions) == 0 {
			continue
		}
		if perCategory > 0 && len(actions) > perCategory {
			actions = actions[len(actions)-perCategory:]
		}
		fmt.Fprintf(&b, "%s:\n", categoryLabels[c])
		for _, a := range actions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
