// Package cli implements the storyteller commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tatianab/storyteller/internal/config"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "storyteller",
	Short: "Turn-based interactive fiction in the terminal",
	Long:  "Play an AI-narrated text adventure. Sessions are saved as YAML files or in SQLite.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to the YAML config file")
}

// loadConfig reads the configuration and returns a logger writing to the
// configured log file. Config warnings are logged, never returned.
func loadConfig() (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, warnings := config.LoadConfig(configPath)

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	for _, w := range warnings {
		logger.Warn().Str("component", "config").Msg(w)
	}
	return cfg, logger, closer, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	if cfg.LogFile == "" || cfg.LogFile == "-" {
		return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr })).
			Level(level).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "open log file")
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
