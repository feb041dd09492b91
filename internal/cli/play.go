package cli

import (
	"github.com/spf13/cobra"

	"github.com/tatianab/storyteller/internal/config"
	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
	"github.com/tatianab/storyteller/internal/tui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start the interactive game",
		Run:   runPlay,
	}

	cmd.Flags().String("backend", "", "Generation backend: gemini, ollama, openai or offline (overrides config)")
	cmd.Flags().Bool("opening", false, "Generate the opening scene instead of using the genre's default")

	RootCmd.AddCommand(cmd)
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg, logger, closer, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	defer closer.Close()

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Backend = backend
		cfg.Model = config.DefaultModel(backend)
	}
	opening, _ := cmd.Flags().GetBool("opening")

	gen, err := llm.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("generation backend unavailable, playing offline")
		gen = llm.Offline{}
	}
	defer gen.Close()

	eng := engine.New(cfg, gen, engine.OpenerFromConfig(cfg), logger)
	if err := tui.Run(eng, opening); err != nil {
		exitErr("run", err)
	}
}
