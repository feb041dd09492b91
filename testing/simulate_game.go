// Command simulate_game plays a session end to end without the TUI. A second
// generation backend acts as the player; when none is available the player
// follows a fixed script.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
	"github.com/tatianab/storyteller/internal/models"
)

var script = []string{
	"look around",
	"go north",
	"talk to the stranger",
	"pick up the lantern",
	"attack the shadow",
	"search the room",
	"use the lantern",
	"run to the gate",
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the YAML config file")
	genre := flag.String("genre", models.DefaultGenre, "genre key")
	turns := flag.Int("turns", len(script), "number of turns to play")
	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr })).
		With().Timestamp().Logger()

	cfg, warnings := config.LoadConfig(*configPath)
	for _, w := range warnings {
		logger.Warn().Str("component", "config").Msg(w)
	}

	ctx := context.Background()
	narrator, err := llm.New(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("narrator unavailable, using fallback responses")
		narrator = llm.Offline{}
	}
	defer narrator.Close()

	player, err := llm.New(ctx, cfg, logger)
	if err != nil {
		player = llm.Offline{}
	}
	defer player.Close()

	eng := engine.New(cfg, narrator, engine.OpenerFromConfig(cfg), logger)
	s := eng.NewSession(*genre, "", models.DefaultPlayerStats())
	fmt.Printf("--- %s ---\n", s.Genre)
	opening, _ := eng.GenerateOpening(ctx)
	fmt.Printf("%s\n\n", opening)

	for turn := 0; turn < *turns; turn++ {
		action := nextAction(ctx, player, eng, turn)
		res, err := eng.ProcessTurn(ctx, action)
		if err != nil {
			logger.Error().Err(err).Str("action", action).Msg("turn failed")
			continue
		}
		fmt.Printf("--- Turn %d [%s] ---\n", turn+1, res.Type)
		fmt.Printf("Player: %s\n", res.Action)
		fmt.Printf("Narrator: %s\n", res.Response)
		if res.Injected {
			fmt.Println("(story context injected)")
		}
		if res.Fallback {
			fmt.Printf("(fallback: %v)\n", res.Cause)
		}
		fmt.Println()
	}

	const saveName = "simulation"
	if err := eng.Save(ctx, saveName); err != nil {
		logger.Fatal().Err(err).Msg("save")
	}
	if err := eng.Load(ctx, saveName); err != nil {
		logger.Fatal().Err(err).Msg("load")
	}

	st := eng.Session().Log.Stats()
	fmt.Println("--- Summary ---")
	fmt.Println(eng.Summary())
	fmt.Printf("\nTurns: %d, segments: %d, window: %d segments (%d chars)\n",
		st.InteractionCount, st.TotalSegments, st.WindowSize, st.WindowChars)
	fmt.Printf("Memory:\n%s\n", eng.Session().Memory.Digest(3))
}

// nextAction asks the player backend for an action and falls back to the
// script when it cannot answer.
func nextAction(ctx context.Context, player llm.Backend, eng *engine.Engine, turn int) string {
	fallback := script[turn%len(script)]
	s := eng.Session()

	p := fmt.Sprintf(`You are playing a text-based adventure game.
Current scene: %s
Inventory: %s

Story so far:
%s

What is your next action? Return ONLY the action, no extra commentary.`,
		s.CurrentScene,
		strings.Join(s.Inventory, ", "),
		s.Log.ContextText(),
	)

	out, err := player.Generate(ctx, p, "")
	if err != nil {
		return fallback
	}
	action := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if action == "" {
		return fallback
	}
	return action
}
