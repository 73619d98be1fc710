// Package classify turns pairs of before/after engine evaluations into
// per-move verdicts. Classify is a pure function: deterministic, no I/O.
package classify

import (
	"math"

	"github.com/discochess/gamereview/internal/uci"
)

// Classification is the qualitative verdict for one played move.
type Classification string

// The ten possible verdicts.
const (
	Brilliant  Classification = "brilliant"
	Great      Classification = "great"
	Best       Classification = "best"
	Excellent  Classification = "excellent"
	Good       Classification = "good"
	Book       Classification = "book"
	Inaccuracy Classification = "inaccuracy"
	Mistake    Classification = "mistake"
	Blunder    Classification = "blunder"
	Forced     Classification = "forced"
)

// winChanceSlope is the logistic slope mapping centipawns to win chance.
const winChanceSlope = 0.00368208

// Input carries everything Classify needs to judge one move.
type Input struct {
	// Ply is the one-based half-move number of the played move.
	Ply int

	// Move is the played move in long algebraic notation.
	Move string

	// Before is the evaluation of the position the move was played from,
	// from the mover's perspective.
	Before uci.Evaluation

	// After is the evaluation of the resulting position, from the
	// opponent's perspective.
	After uci.Evaluation

	// PreferredMove is the engine's top choice in the pre-move position.
	PreferredMove string

	// OpeningPlyLimit is the opening-theory horizon for "book" moves.
	OpeningPlyLimit int

	// SecondBest is the evaluation of the engine's second-ranked line in
	// the pre-move position, when one was obtained.
	SecondBest *uci.Evaluation

	// OnlyLegalMove reports that the pre-move position had at most one
	// legal move.
	OnlyLegalMove bool

	// DeliversMate reports that the move checkmates the opponent.
	DeliversMate bool

	// TerminalAfter reports that the resulting position has no legal
	// continuation (checkmate, stalemate, or another terminal state).
	TerminalAfter bool

	// MaterialSwing is the net material the mover gave up on this move:
	// the mover's material lost minus the opponent's material lost,
	// valued in pawns. Positive values are sacrifices.
	MaterialSwing int
}

// Normalize converts an evaluation into a signed centipawn score from its
// own side-to-move perspective. Mate distances map to large-magnitude
// scores that strictly dominate any finite centipawn value, with faster
// mates scoring higher.
func Normalize(e uci.Evaluation) float64 {
	if e.Mate != nil {
		m := *e.Mate
		mag := 10000.0 - 10.0*math.Max(1, math.Abs(float64(m)))
		if m < 0 {
			return -mag
		}
		if m == 0 {
			return 0
		}
		return mag
	}
	if e.Centipawns != nil {
		return float64(*e.Centipawns)
	}
	return 0
}

// WinChance maps a White-perspective centipawn score to an estimated
// winning probability on a 0-100 scale, symmetric about 50 at equality.
func WinChance(cp float64) float64 {
	return 50 + 50*(2/(1+math.Exp(-winChanceSlope*cp))-1)
}

// Classify judges one move, returning its verdict and centipawn loss.
// The loss is rounded to the nearest integer and never negative.
func Classify(in Input) (Classification, int) {
	// Ending the game on your own terms is never wrong.
	if in.DeliversMate || in.TerminalAfter {
		return Best, 0
	}

	scoreBefore := Normalize(in.Before)
	// The after-evaluation is from the opponent's perspective; negate to
	// express it from the mover's.
	scoreAfter := -Normalize(in.After)

	loss := math.Max(0, scoreBefore-scoreAfter)
	lossInt := int(math.Round(loss))

	if in.OnlyLegalMove {
		return Forced, 0
	}

	if in.Ply <= in.OpeningPlyLimit && loss <= 25 {
		return Book, lossInt
	}

	wcLoss := WinChance(scoreBefore) - WinChance(scoreAfter)

	verdict := ladder(loss, wcLoss, scoreBefore)

	// A matching engine choice with negligible loss is always "best".
	if in.Move == in.PreferredMove && loss <= 10 {
		verdict = Best
	}

	if isBrilliant(in, loss, scoreBefore, scoreAfter) {
		return Brilliant, lossInt
	}

	if isGreat(in, loss, scoreBefore, scoreAfter) {
		return Great, lossInt
	}

	return verdict, lossInt
}

// ladder applies the loss thresholds, dampening blunder and mistake
// severity when the mover was already lost before the move. No symmetric
// dampener exists for movers who were already winning.
func ladder(loss, wcLoss, scoreBefore float64) Classification {
	switch {
	case loss > 250 || wcLoss > 30:
		if scoreBefore < -500 {
			if loss <= 100 {
				return Good
			}
			if loss <= 250 {
				return Mistake
			}
		}
		return Blunder
	case loss > 100 || wcLoss > 20:
		if scoreBefore < -400 && loss <= 150 {
			return Inaccuracy
		}
		return Mistake
	case loss > 30 || wcLoss > 10:
		return Inaccuracy
	case loss > 10:
		return Good
	case loss > 0:
		return Excellent
	default:
		return Excellent
	}
}

// isBrilliant detects sound sacrifices: the engine's own choice, played
// with real material given up, in a position that is neither desperate
// nor already decided, and which leaves the mover still standing.
func isBrilliant(in Input, loss, scoreBefore, scoreAfter float64) bool {
	return in.Move == in.PreferredMove &&
		in.MaterialSwing >= 2 &&
		loss <= 15 &&
		scoreBefore > -300 && scoreBefore < 600 &&
		scoreAfter > -50
}

// isGreat detects the engine's choice being clearly the only good move:
// the second-ranked line is far worse than the line played.
func isGreat(in Input, loss, scoreBefore, scoreAfter float64) bool {
	if in.SecondBest == nil || in.Move != in.PreferredMove || loss > 10 {
		return false
	}
	if isBrilliant(in, loss, scoreBefore, scoreAfter) {
		return false
	}
	secondBest := -Normalize(*in.SecondBest)
	return secondBest-scoreAfter >= 150 && scoreBefore > -200
}
