package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tatianab/storyteller/internal/engine"
	"github.com/tatianab/storyteller/internal/llm"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List saved games",
		Args:  cobra.NoArgs,
		Run:   runSessions,
	})
}

func runSessions(cmd *cobra.Command, args []string) {
	cfg, logger, closer, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	defer closer.Close()

	eng := engine.New(cfg, llm.Offline{}, engine.OpenerFromConfig(cfg), logger)
	names, err := eng.ListSaves(cmd.Context())
	if err != nil {
		exitErr("list saves", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved games.")
		return
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
}
