// Package moves derives per-ply analysis records from a played chess game.
// Legality, termination, and notation come from notnil/chess; material
// accounting comes from the FEN directly.
package moves

import (
	"github.com/notnil/chess"

	"github.com/discochess/gamereview/internal/fen"
)

// Move is one ply of a played game, with everything the analysis pipeline
// needs to re-query and judge it. Immutable once produced.
type Move struct {
	// Index is the zero-based position of the move in the game.
	Index int

	// Ply is the one-based half-move number.
	Ply int

	// SAN is the move in short algebraic notation.
	SAN string

	// UCI is the move in long algebraic notation.
	UCI string

	// FENBefore and FENAfter encode the positions around the move.
	FENBefore string
	FENAfter  string

	// SideToMove is "w" or "b" for the player who made this move.
	SideToMove string

	// LegalMovesBefore is the number of legal moves in the pre-move
	// position.
	LegalMovesBefore int

	// DeliversMate reports that this move checkmates the opponent.
	DeliversMate bool

	// TerminalAfter reports that the resulting position has no legal
	// continuation.
	TerminalAfter bool

	// MaterialSwing is the net material the mover gave up: mover's
	// material lost minus opponent's material lost, valued in pawns.
	// Positive for sacrifices, negative for clean captures.
	MaterialSwing int
}

// FromGame derives the full move list for a game. The returned slice has
// one entry per played ply.
func FromGame(g *chess.Game) []Move {
	gameMoves := g.Moves()
	positions := g.Positions()
	notation := chess.AlgebraicNotation{}

	out := make([]Move, 0, len(gameMoves))
	for i, mv := range gameMoves {
		before := positions[i]
		after := positions[i+1]

		m := Move{
			Index:            i,
			Ply:              i + 1,
			SAN:              notation.Encode(before, mv),
			UCI:              mv.String(),
			FENBefore:        before.String(),
			FENAfter:         after.String(),
			SideToMove:       before.Turn().String(),
			LegalMovesBefore: len(before.ValidMoves()),
			DeliversMate:     after.Status() == chess.Checkmate,
			TerminalAfter:    len(after.ValidMoves()) == 0,
			MaterialSwing:    materialSwing(before.String(), after.String(), before.Turn().String()),
		}
		out = append(out, m)
	}
	return out
}

// materialSwing computes the net material given up by the side that moved.
func materialSwing(fenBefore, fenAfter, mover string) int {
	before, err := fen.ParseMaterial(fenBefore)
	if err != nil {
		return 0
	}
	after, err := fen.ParseMaterial(fenAfter)
	if err != nil {
		return 0
	}

	opponent := "b"
	if mover == "b" {
		opponent = "w"
	}

	moverLost := before.Value(mover) - after.Value(mover)
	opponentLost := before.Value(opponent) - after.Value(opponent)
	return moverLost - opponentLost
}
