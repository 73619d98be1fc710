// Package summary aggregates per-move review results into per-side game
// statistics: average centipawn loss, accuracy, and verdict counts.
package summary

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MoveOutcome is the reviewed result of a single move.
type MoveOutcome struct {
	// Side is "w" or "b" for the player who made the move.
	Side string

	// Classification is the verdict label for the move.
	Classification string

	// CentipawnLoss is the evaluation drop attributed to the move.
	CentipawnLoss int

	// WinChanceLoss is the win-chance drop (0-100 scale) attributed to
	// the move, from the mover's perspective.
	WinChanceLoss float64
}

// SideSummary aggregates one player's moves.
type SideSummary struct {
	Moves          int
	MeanLoss       float64
	StdDevLoss     float64
	Accuracy       float64
	Classification map[string]int
}

// GameSummary aggregates a whole game.
type GameSummary struct {
	White SideSummary
	Black SideSummary
}

// Compute aggregates reviewed moves into a game summary.
func Compute(outcomes []MoveOutcome) GameSummary {
	return GameSummary{
		White: sideSummary(outcomes, "w"),
		Black: sideSummary(outcomes, "b"),
	}
}

func sideSummary(outcomes []MoveOutcome, side string) SideSummary {
	s := SideSummary{Classification: make(map[string]int)}

	var losses, accuracies []float64
	for _, o := range outcomes {
		if o.Side != side {
			continue
		}
		s.Moves++
		s.Classification[o.Classification]++
		losses = append(losses, float64(o.CentipawnLoss))
		accuracies = append(accuracies, moveAccuracy(o.WinChanceLoss))
	}

	if len(losses) == 0 {
		return s
	}

	s.MeanLoss = stat.Mean(losses, nil)
	if len(losses) > 1 {
		s.StdDevLoss = stat.StdDev(losses, nil)
	}
	s.Accuracy = stat.Mean(accuracies, nil)
	return s
}

// moveAccuracy maps a win-chance loss to a 0-100 accuracy score via an
// exponential decay: a lossless move is worth 100, and accuracy falls off
// steeply as win chance is thrown away.
func moveAccuracy(wcLoss float64) float64 {
	if wcLoss <= 0 {
		return 100
	}
	acc := 103.1668*math.Exp(-0.04354*wcLoss) - 3.1668
	return math.Max(0, math.Min(100, acc))
}
