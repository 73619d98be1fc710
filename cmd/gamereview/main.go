// Package main provides the gamereview CLI tool for engine-backed review
// of chess games from PGN files.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
