// Package prompt builds generation requests for player actions.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tatianab/storyteller/internal/models"
)

//go:embed prompts/continue.txt
var continuePrompt string

//go:embed prompts/opening.txt
var openingPrompt string

var (
	continueTmpl = template.Must(template.New("continue").Parse(continuePrompt))
	openingTmpl  = template.Must(template.New("opening").Parse(openingPrompt))
)

var verbs = map[models.ActionType]string{
	models.ActionMove:        "moves through the world",
	models.ActionTalk:        "speaks with someone",
	models.ActionFight:       "enters combat",
	models.ActionUse:         "uses an item",
	models.ActionInvestigate: "investigates the surroundings",
	models.ActionUnknown:     "attempts something unexpected",
}

// Verb returns the phrase describing what the player does for t.
func Verb(t models.ActionType) string {
	if v, ok := verbs[t]; ok {
		return v
	}
	return verbs[models.ActionUnknown]
}

// Compose builds the prompt for one player action. A non-empty injected
// context is placed in a labeled block ahead of the action.
func Compose(t models.ActionType, action, genre, setting, injected string) string {
	data := struct {
		Context string
		Genre   string
		Setting string
		Verb    string
		Action  string
	}{
		Context: strings.TrimSpace(injected),
		Genre:   strings.TrimSpace(genre),
		Setting: strings.TrimSpace(setting),
		Verb:    Verb(t),
		Action:  strings.TrimSpace(action),
	}

	var buf bytes.Buffer
	if err := continueTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Story Prompt: the player %s: %q.", data.Verb, data.Action)
	}
	return strings.TrimSpace(buf.String())
}

// Opening builds the prompt for a generated opening scene.
func Opening(genre, setting string) string {
	data := struct {
		Genre   string
		Setting string
	}{
		Genre:   strings.TrimSpace(genre),
		Setting: strings.TrimSpace(setting),
	}

	var buf bytes.Buffer
	if err := openingTmpl.Execute(&buf, data); err != nil {
		return "Story Prompt: Create an engaging opening scene."
	}
	return strings.TrimSpace(buf.String())
}
