package gamereview

import (
	"time"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/stats"
)

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	engine     Evaluator
	enginePath string

	logger *zap.Logger
	stats  stats.Collector

	cacheEnabled  bool
	cacheCapacity int

	openingPlyLimit  int
	depth            int
	moveTimeout      time.Duration
	secondaryDepth   int
	secondaryTimeout time.Duration

	progressFn ProgressFunc
	snapshotFn SnapshotFunc
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		logger:           zap.NewNop(),
		stats:            stats.NewNoop(),
		openingPlyLimit:  DefaultOpeningPlyLimit,
		depth:            DefaultDepth,
		moveTimeout:      DefaultMoveTimeout,
		secondaryDepth:   DefaultSecondaryDepth,
		secondaryTimeout: DefaultSecondaryTimeout,
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithEngine sets the evaluation engine to use. The Analyzer takes
// ownership and closes it on Close.
func WithEngine(e Evaluator) Option {
	return optionFunc(func(o *options) {
		o.engine = e
	})
}

// WithEnginePath starts a UCI engine from the given binary path.
// Ignored when WithEngine is also given.
func WithEnginePath(path string) Option {
	return optionFunc(func(o *options) {
		o.enginePath = path
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithCacheSize enables an LRU evaluation cache with the given capacity,
// so repeated positions skip engine requests. Zero uses the default
// capacity; caching is off unless this option is given.
func WithCacheSize(capacity int) Option {
	return optionFunc(func(o *options) {
		o.cacheEnabled = true
		o.cacheCapacity = capacity
	})
}

// WithOpeningPlyLimit sets the opening-theory horizon: moves at or below
// this ply with small loss are classified as book moves.
func WithOpeningPlyLimit(plies int) Option {
	return optionFunc(func(o *options) {
		o.openingPlyLimit = plies
	})
}

// WithDepth sets the primary search depth for before/after evaluations.
func WithDepth(depth int) Option {
	return optionFunc(func(o *options) {
		o.depth = depth
	})
}

// WithMoveTimeout sets the per-request deadline for primary evaluations.
func WithMoveTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.moveTimeout = d
	})
}

// WithProgressFunc registers a callback invoked with the overall progress
// percentage (0-100) as analysis advances.
func WithProgressFunc(fn ProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progressFn = fn
	})
}

// WithSnapshotFunc registers a callback invoked with a fresh snapshot of
// the report after every classified move, for incremental consumption.
func WithSnapshotFunc(fn SnapshotFunc) Option {
	return optionFunc(func(o *options) {
		o.snapshotFn = fn
	})
}
