// Package gamereview analyzes played chess games with an external UCI
// engine and assigns each move a qualitative verdict, from "brilliant"
// down to "blunder".
//
// Example usage:
//
//	analyzer, err := gamereview.New(
//	    gamereview.WithEnginePath("stockfish"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer analyzer.Close()
//
//	report, err := analyzer.Analyze(ctx, game)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, verdict := range report.Classifications {
//	    fmt.Printf("move %d: %s\n", i+1, verdict)
//	}
package gamereview

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/classify"
	"github.com/discochess/gamereview/internal/evalcache"
	"github.com/discochess/gamereview/internal/moves"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/summary"
	"github.com/discochess/gamereview/internal/uci"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNoEngine indicates no engine was provided or started.
	ErrNoEngine = errors.New("gamereview: no engine provided")

	// ErrClosed indicates the analyzer has been closed.
	ErrClosed = errors.New("gamereview: analyzer closed")

	// ErrAnalysisInProgress indicates another game is being analyzed.
	ErrAnalysisInProgress = errors.New("gamereview: analysis already in progress")
)

// Defaults for the analysis pipeline.
const (
	// DefaultOpeningPlyLimit is the opening-theory horizon for book moves.
	DefaultOpeningPlyLimit = 10

	// DefaultDepth is the search depth for primary evaluations.
	DefaultDepth = 18

	// DefaultMoveTimeout is the deadline for one primary evaluation.
	DefaultMoveTimeout = uci.DefaultTimeout

	// DefaultSecondaryDepth is the reduced depth for second-line lookups.
	DefaultSecondaryDepth = 14

	// DefaultSecondaryTimeout is the deadline for second-line lookups.
	DefaultSecondaryTimeout = 5 * time.Second
)

// Evaluator is the engine capability the analyzer drives. *uci.Engine is
// the production implementation; tests substitute stubs.
type Evaluator interface {
	// WaitReady blocks until the engine can accept requests.
	WaitReady(ctx context.Context) error

	// Evaluate returns one evaluation per requested ranked line for the
	// given position.
	Evaluate(ctx context.Context, fen string, opts uci.SearchOptions) ([]uci.Evaluation, error)

	// Close shuts the engine down.
	Close() error
}

// Compile-time check that the UCI engine satisfies Evaluator.
var _ Evaluator = (*uci.Engine)(nil)

// ProgressFunc receives the overall progress percentage (0-100).
type ProgressFunc func(percent float64)

// SnapshotFunc receives a fresh report snapshot after each classified move.
type SnapshotFunc func(*Report)

// Analyzer drives whole games through the two-pass review pipeline:
// evaluate every position, then classify every move. An Analyzer owns one
// engine and analyzes one game at a time.
type Analyzer struct {
	engine Evaluator
	cache  *evalcache.Cache
	logger *zap.Logger
	stats  stats.Collector

	openingPlyLimit  int
	depth            int
	moveTimeout      time.Duration
	secondaryDepth   int
	secondaryTimeout time.Duration

	progressFn ProgressFunc
	snapshotFn SnapshotFunc

	analyzing atomic.Bool
	progress  atomic.Int64 // percent, 0-100
	closed    atomic.Bool
}

// New creates an Analyzer with the given options. One of WithEngine or
// WithEnginePath is required.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	engine := cfg.engine
	if engine == nil {
		if cfg.enginePath == "" {
			return nil, ErrNoEngine
		}
		started, err := uci.Start(cfg.enginePath, cfg.logger.Named("uci"), cfg.stats)
		if err != nil {
			return nil, fmt.Errorf("starting engine: %w", err)
		}
		engine = started
	}

	a := &Analyzer{
		engine:           engine,
		logger:           cfg.logger,
		stats:            cfg.stats,
		openingPlyLimit:  cfg.openingPlyLimit,
		depth:            cfg.depth,
		moveTimeout:      cfg.moveTimeout,
		secondaryDepth:   cfg.secondaryDepth,
		secondaryTimeout: cfg.secondaryTimeout,
		progressFn:       cfg.progressFn,
		snapshotFn:       cfg.snapshotFn,
	}

	if cfg.cacheEnabled {
		cache, err := evalcache.New(cfg.cacheCapacity, cfg.stats)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		a.cache = cache
	}

	a.logger.Debug("analyzer initialized",
		zap.Int("depth", a.depth),
		zap.Int("openingPlyLimit", a.openingPlyLimit),
		zap.Bool("cache", a.cache != nil),
	)

	return a, nil
}

// Analyze reviews every move of the game and returns the finished report.
// On a primary evaluation failure the run stops and the partial report is
// returned alongside the error; already-computed per-move results stay in
// place and Complete is false. Only one game may be analyzed at a time.
func (a *Analyzer) Analyze(ctx context.Context, game *chess.Game) (*Report, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	if !a.analyzing.CompareAndSwap(false, true) {
		return nil, ErrAnalysisInProgress
	}
	defer a.analyzing.Store(false)

	report := newReport()
	parsed := moves.FromGame(game)
	n := len(parsed)
	if n == 0 {
		report.Complete = true
		report.Summary = &summary.GameSummary{}
		a.setProgress(100)
		return report, nil
	}

	a.setProgress(0)
	a.logger.Info("analysis started", zap.Int("plies", n))

	// Pass 1: evaluate the position before and after every move,
	// strictly sequentially. The engine accepts only one outstanding
	// request; overlapping calls would cancel each other.
	befores := make([]uci.Evaluation, n)
	afters := make([]uci.Evaluation, n)
	for i, mv := range parsed {
		before, err := a.evaluatePrimary(ctx, mv.FENBefore)
		if err != nil {
			a.logger.Warn("primary evaluation failed",
				zap.Int("ply", mv.Ply), zap.Error(err))
			return report, fmt.Errorf("evaluating ply %d: %w", mv.Ply, err)
		}
		after, err := a.evaluatePrimary(ctx, mv.FENAfter)
		if err != nil {
			a.logger.Warn("primary evaluation failed",
				zap.Int("ply", mv.Ply), zap.Error(err))
			return report, fmt.Errorf("evaluating ply %d: %w", mv.Ply, err)
		}
		befores[i] = before
		afters[i] = after
		a.setProgress(float64(i+1) / float64(n) * 100)
	}

	// Pass 2: classify every move, querying a second-ranked line only
	// for candidate best moves.
	outcomes := make([]summary.MoveOutcome, 0, n)
	for i, mv := range parsed {
		second := a.secondaryLookup(ctx, mv, befores[i])

		verdict, loss := classify.Classify(classify.Input{
			Ply:             mv.Ply,
			Move:            mv.UCI,
			Before:          befores[i],
			After:           afters[i],
			PreferredMove:   befores[i].BestMove,
			OpeningPlyLimit: a.openingPlyLimit,
			SecondBest:      second,
			OnlyLegalMove:   mv.LegalMovesBefore <= 1,
			DeliversMate:    mv.DeliversMate,
			TerminalAfter:   mv.TerminalAfter,
			MaterialSwing:   mv.MaterialSwing,
		})

		report.Classifications[i] = verdict
		report.CentipawnLoss[i] = loss
		report.BestMoves[i] = befores[i].BestMove
		report.WinChances[i] = a.whiteWinChance(mv, afters[i])

		outcomes = append(outcomes, summary.MoveOutcome{
			Side:           mv.SideToMove,
			Classification: string(verdict),
			CentipawnLoss:  loss,
			WinChanceLoss:  moverWinChanceLoss(befores[i], afters[i]),
		})

		a.stats.IncCounter(stats.MetricMovesClassified, 1)
		if a.snapshotFn != nil {
			a.snapshotFn(report.snapshot())
		}
	}

	report.Complete = true
	s := summary.Compute(outcomes)
	report.Summary = &s
	a.setProgress(100)
	a.logger.Info("analysis complete", zap.Int("plies", n))

	return report, nil
}

// Analyzing reports whether a game is currently being analyzed.
func (a *Analyzer) Analyzing() bool {
	return a.analyzing.Load()
}

// Progress returns the overall progress percentage of the current or most
// recent run.
func (a *Analyzer) Progress() float64 {
	return float64(a.progress.Load())
}

// Close shuts down the analyzer and its engine.
// After Close, the analyzer should not be used.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := a.engine.Close(); err != nil {
		return fmt.Errorf("closing engine: %w", err)
	}
	return nil
}

// evaluatePrimary fetches the single-line evaluation for a position,
// consulting the cache first when one is configured.
func (a *Analyzer) evaluatePrimary(ctx context.Context, fen string) (uci.Evaluation, error) {
	if a.cache != nil {
		if evals, ok := a.cache.Get(fen); ok && len(evals) > 0 {
			return evals[0], nil
		}
	}

	evals, err := a.engine.Evaluate(ctx, fen, uci.SearchOptions{
		Depth:   a.depth,
		MultiPV: 1,
		Timeout: a.moveTimeout,
	})
	if err != nil {
		return uci.Evaluation{}, err
	}

	if a.cache != nil {
		a.cache.Put(fen, evals)
	}
	return evals[0], nil
}

// secondaryLookup queries the second-ranked line for a candidate best
// move, at reduced depth and a shorter deadline. Any failure is treated as
// "no second line available" rather than a pipeline error.
func (a *Analyzer) secondaryLookup(ctx context.Context, mv moves.Move, before uci.Evaluation) *uci.Evaluation {
	if before.BestMove == "" || mv.UCI != before.BestMove {
		return nil
	}

	evals, err := a.engine.Evaluate(ctx, mv.FENBefore, uci.SearchOptions{
		Depth:   a.secondaryDepth,
		MultiPV: 2,
		Timeout: a.secondaryTimeout,
	})
	if err != nil {
		a.logger.Debug("second-line lookup failed",
			zap.Int("ply", mv.Ply), zap.Error(err))
		return nil
	}
	if len(evals) < 2 || !evals[1].HasScore() {
		return nil
	}
	return &evals[1]
}

// whiteWinChance expresses the after-move evaluation as White's winning
// chance. The after-evaluation is from the perspective of the side to move
// in the resulting position, so it is negated when the mover was White.
func (a *Analyzer) whiteWinChance(mv moves.Move, after uci.Evaluation) float64 {
	score := classify.Normalize(after)
	if mv.SideToMove == "w" {
		score = -score
	}
	return classify.WinChance(score)
}

// moverWinChanceLoss is the win-chance the mover gave up on this move.
func moverWinChanceLoss(before, after uci.Evaluation) float64 {
	scoreBefore := classify.Normalize(before)
	scoreAfter := -classify.Normalize(after)
	loss := classify.WinChance(scoreBefore) - classify.WinChance(scoreAfter)
	if loss < 0 {
		return 0
	}
	return loss
}

// setProgress records the overall progress percentage.
func (a *Analyzer) setProgress(percent float64) {
	a.progress.Store(int64(percent))
	a.stats.SetGauge(stats.MetricAnalysisProgress, int64(percent))
	if a.progressFn != nil {
		a.progressFn(percent)
	}
}
