package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notnil/chess"
	"github.com/spf13/cobra"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/reportstore"
)

var (
	analyzeDepth     int
	analyzeOpening   int
	analyzeMaxGames  int
	analyzeSaveDir   string
	analyzeCacheSize int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pgn-file>",
	Short: "Review every move of the games in a PGN file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", gamereview.DefaultDepth, "primary search depth")
	analyzeCmd.Flags().IntVar(&analyzeOpening, "opening-plies", gamereview.DefaultOpeningPlyLimit, "opening-theory horizon for book moves")
	analyzeCmd.Flags().IntVar(&analyzeMaxGames, "games", 1, "max games to review")
	analyzeCmd.Flags().StringVar(&analyzeSaveDir, "save", "", "directory to save reports to")
	analyzeCmd.Flags().IntVar(&analyzeCacheSize, "cache", 0, "evaluation cache capacity (0 disables)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening PGN: %w", err)
	}
	defer f.Close()

	opts := []gamereview.Option{
		gamereview.WithEnginePath(enginePath),
		gamereview.WithLogger(logger),
		gamereview.WithDepth(analyzeDepth),
		gamereview.WithOpeningPlyLimit(analyzeOpening),
		gamereview.WithProgressFunc(func(percent float64) {
			fmt.Printf("\r[Analyze] %.0f%%", percent)
		}),
	}
	if analyzeCacheSize > 0 {
		opts = append(opts, gamereview.WithCacheSize(analyzeCacheSize))
	}

	analyzer, err := gamereview.New(opts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}
	defer analyzer.Close()

	scanner := chess.NewScanner(f)
	reviewed := 0

	for scanner.Scan() && reviewed < analyzeMaxGames {
		game := scanner.Next()
		reviewed++

		white := game.GetTagPair("White")
		black := game.GetTagPair("Black")
		fmt.Printf("\n=== Game %d: %s vs %s ===\n", reviewed, tagValue(white), tagValue(black))

		report, err := analyzer.Analyze(cmd.Context(), game)
		fmt.Println()
		if err != nil {
			fmt.Printf("  analysis stopped: %v\n", err)
		}
		if report == nil {
			continue
		}

		printReport(game, report)

		if analyzeSaveDir != "" && report.Complete {
			path := filepath.Join(analyzeSaveDir, fmt.Sprintf("game-%03d%s", reviewed, reportstore.Extension))
			if err := reportstore.Save(path, report); err != nil {
				return fmt.Errorf("saving report: %w", err)
			}
			fmt.Printf("  report saved to %s\n", path)
		}
	}

	return nil
}

func printReport(game *chess.Game, report *gamereview.Report) {
	moveList := game.Moves()
	positions := game.Positions()
	notation := chess.AlgebraicNotation{}

	for i, mv := range moveList {
		verdict, ok := report.Classifications[i]
		if !ok {
			break
		}
		num := i/2 + 1
		dots := "."
		if i%2 == 1 {
			dots = "..."
		}
		san := notation.Encode(positions[i], mv)
		fmt.Printf("  %3d%s %-8s %-10s loss %3d  win%% %5.1f  best %s\n",
			num, dots, san, verdict,
			report.CentipawnLoss[i], report.WinChances[i], report.BestMoves[i])
	}

	if report.Summary == nil {
		return
	}
	fmt.Printf("  %-6s accuracy %5.1f%%  avg loss %5.1f\n",
		"White:", report.Summary.White.Accuracy, report.Summary.White.MeanLoss)
	fmt.Printf("  %-6s accuracy %5.1f%%  avg loss %5.1f\n",
		"Black:", report.Summary.Black.Accuracy, report.Summary.Black.MeanLoss)
	printVerdictCounts("White", report.Summary.White.Classification)
	printVerdictCounts("Black", report.Summary.Black.Classification)
}

func printVerdictCounts(side string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	order := []string{"brilliant", "great", "best", "excellent", "good", "book", "inaccuracy", "mistake", "blunder", "forced"}
	var parts []string
	for _, label := range order {
		if n := counts[label]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", label, n))
		}
	}
	fmt.Printf("  %s: %s\n", side, strings.Join(parts, ", "))
}

func tagValue(tp *chess.TagPair) string {
	if tp == nil {
		return "?"
	}
	return tp.Value
}
