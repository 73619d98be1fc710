package uci

import (
	"regexp"
	"strconv"
	"strings"
)

// moveTokenRe matches a move in long algebraic notation:
// origin square, destination square, optional promotion piece.
var moveTokenRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// IsMoveToken reports whether s is a valid long-algebraic move token.
func IsMoveToken(s string) bool {
	return moveTokenRe.MatchString(s)
}

// parseInfo parses an "info" progress line into an Evaluation and the
// 1-based ranked-line index it belongs to (1 when no multipv field is
// present). ok is false for lines that carry no settled score: non-info
// lines, info lines without a score field, and bound-only scores
// (upperbound/lowerbound), which do not represent a final value.
func parseInfo(line string) (eval Evaluation, multipv int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Evaluation{}, 0, false
	}

	multipv = 1
	scored := false

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				eval.Depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				if n, err := strconv.Atoi(fields[i+1]); err == nil && n > 0 {
					multipv = n
				}
				i++
			}
		case "nodes":
			if i+1 < len(fields) {
				eval.Nodes, _ = strconv.ParseInt(fields[i+1], 10, 64)
				i++
			}
		case "score":
			if i+2 >= len(fields) {
				return Evaluation{}, 0, false
			}
			n, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return Evaluation{}, 0, false
			}
			switch fields[i+1] {
			case "cp":
				eval.Centipawns = &n
			case "mate":
				eval.Mate = &n
			default:
				return Evaluation{}, 0, false
			}
			scored = true
			i += 2
		case "upperbound", "lowerbound":
			// Bound scores are not settled values.
			return Evaluation{}, 0, false
		case "pv":
			// The remainder of the line is the move sequence.
			for _, mv := range fields[i+1:] {
				if !IsMoveToken(mv) {
					break
				}
				eval.PV = append(eval.PV, mv)
			}
			if len(eval.PV) > 0 {
				eval.BestMove = eval.PV[0]
			}
			i = len(fields)
		}
	}

	if !scored {
		return Evaluation{}, 0, false
	}
	return eval, multipv, true
}

// parseBestMove parses a "bestmove" terminal line, returning the chosen
// move. ok is false if the line is not a bestmove line at all.
// An unparseable or absent move (e.g. "bestmove (none)" from a terminal
// position) yields an empty move with ok true.
func parseBestMove(line string) (move string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "bestmove" {
		return "", false
	}
	if len(fields) >= 2 && IsMoveToken(fields[1]) {
		return fields[1], true
	}
	return "", true
}
