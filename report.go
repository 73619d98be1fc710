package gamereview

import (
	"github.com/discochess/gamereview/internal/classify"
	"github.com/discochess/gamereview/internal/summary"
)

// Report holds the review results for one game. The four maps are keyed by
// zero-based move index and grow move by move during analysis; consumers
// receive read-only snapshots and must not mutate them.
type Report struct {
	// Classifications maps move index to its verdict.
	Classifications map[int]classify.Classification

	// CentipawnLoss maps move index to the non-negative evaluation drop
	// attributed to the move.
	CentipawnLoss map[int]int

	// BestMoves maps move index to the engine's preferred move for the
	// pre-move position, in long algebraic notation.
	BestMoves map[int]string

	// WinChances maps move index to White's winning chance (0-100) after
	// the move.
	WinChances map[int]float64

	// Complete reports whether every move of the game was analyzed.
	Complete bool

	// Summary holds per-side aggregates. Only set on complete reports.
	Summary *summary.GameSummary
}

// newReport creates an empty report.
func newReport() *Report {
	return &Report{
		Classifications: make(map[int]classify.Classification),
		CentipawnLoss:   make(map[int]int),
		BestMoves:       make(map[int]string),
		WinChances:      make(map[int]float64),
	}
}

// snapshot returns a deep copy safe to hand to consumers while analysis
// continues.
func (r *Report) snapshot() *Report {
	out := &Report{
		Classifications: make(map[int]classify.Classification, len(r.Classifications)),
		CentipawnLoss:   make(map[int]int, len(r.CentipawnLoss)),
		BestMoves:       make(map[int]string, len(r.BestMoves)),
		WinChances:      make(map[int]float64, len(r.WinChances)),
		Complete:        r.Complete,
	}
	for k, v := range r.Classifications {
		out.Classifications[k] = v
	}
	for k, v := range r.CentipawnLoss {
		out.CentipawnLoss[k] = v
	}
	for k, v := range r.BestMoves {
		out.BestMoves[k] = v
	}
	for k, v := range r.WinChances {
		out.WinChances[k] = v
	}
	if r.Summary != nil {
		s := *r.Summary
		out.Summary = &s
	}
	return out
}
