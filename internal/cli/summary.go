package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "summary [name]",
		Short: "Print the summary of a saved game",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSummary,
	})
}

func runSummary(cmd *cobra.Command, args []string) {
	cfg, logger, closer, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	defer closer.Close()

	name := engine.DefaultSaveName
	if len(args) == 1 {
		name = args[0]
	}

	eng := engine.New(cfg, llm.Offline{}, engine.OpenerFromConfig(cfg), logger)
	if err := eng.Load(cmd.Context(), name); err != nil {
		exitErr("load", err)
	}
	printSummary(cmd.OutOrStdout(), eng)
}

func printSummary(w io.Writer, eng *engine.Engine) {
	s := eng.Session()
	st := s.Log.Stats()

	fmt.Fprintf(w, "Session %s (%s)\n", s.ID, s.Genre)
	fmt.Fprintf(w, "Scene: %s\n\n", s.CurrentScene)
	fmt.Fprintf(w, "%s\n\n", eng.Summary())

	if recent := eng.RecentStory(); len(recent) > 0 {
		fmt.Fprintf(w, "Recent story:\n- %s\n\n", strings.Join(recent, "\n- "))
	}

	fmt.Fprintf(w, "Turns: %d  Segments: %d  Context window: %d segments\n",
		st.InteractionCount, st.TotalSegments, st.WindowSize)
	fmt.Fprintf(w, "Health: %d  Strength: %d  Intelligence: %d  Charisma: %d\n",
		s.Stats.Health, s.Stats.Strength, s.Stats.Intelligence, s.Stats.Charisma)
	if len(s.ActiveQuests) > 0 {
		fmt.Fprintf(w, "Active quests: %s\n", strings.Join(s.ActiveQuests, ", "))
	}
}
