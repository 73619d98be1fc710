package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	enginePath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gamereview",
	Short: "Engine-backed move-by-move review of chess games",
	Long: `Gamereview replays chess games through a UCI engine and assigns
every move a verdict from "brilliant" down to "blunder", together with its
centipawn loss and resulting win chance.

Examples:
  # Review the first game of a PGN file
  gamereview analyze games.pgn

  # Review up to 5 games with a specific engine binary
  gamereview analyze --engine /usr/bin/stockfish --games 5 games.pgn`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&enginePath, "engine", "e", "stockfish", "UCI engine binary to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger builds the CLI logger honoring the verbose flag.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
