package uci

import "strconv"

// Evaluation is the engine's assessment of one position, reported from the
// perspective of the side to move in that position.
type Evaluation struct {
	// Centipawns is the score in hundredths of a pawn.
	// Nil if the engine reported a forced mate instead.
	Centipawns *int

	// Mate is the signed number of moves until checkmate.
	// Positive means the side to move mates, negative means it is mated.
	// Nil if there is no forced mate.
	Mate *int

	// Depth is the search depth this evaluation was reported at.
	Depth int

	// Nodes is the number of nodes searched, when reported.
	Nodes int64

	// BestMove is the first move of the line, in long algebraic notation.
	BestMove string

	// PV is the full principal variation in long algebraic notation.
	PV []string
}

// HasScore reports whether the evaluation carries a settled score.
// Evaluations synthesized for ranked lines the engine never reported on
// have neither a centipawn nor a mate value.
func (e Evaluation) HasScore() bool {
	return e.Centipawns != nil || e.Mate != nil
}

// Score returns a human-readable score string.
// Examples: "+1.25", "-0.50", "#3", "#-5"
func (e Evaluation) Score() string {
	if e.Mate != nil {
		return "#" + strconv.Itoa(*e.Mate)
	}
	if e.Centipawns == nil {
		return "?"
	}
	cp := *e.Centipawns
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := cp / 100
	frac := cp % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}
