// Package gamereviewfx provides an fx module for a game-review analyzer
// backed by a UCI engine binary.
// Requires a *zap.Logger and a Config to be provided.
package gamereviewfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/stats"
	"github.com/discochess/gamereview/internal/stats/logger"
)

// Config holds the engine settings for the module.
type Config struct {
	// EnginePath is the UCI engine binary to launch.
	EnginePath string

	// CacheSize enables the evaluation cache when positive.
	CacheSize int
}

// Module provides a ready *gamereview.Analyzer bound to the application
// lifecycle.
var Module = fx.Module("gamereview",
	fx.Provide(
		newStatsCollector,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("gamereview.stats"))
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newAnalyzer(p Params) (*gamereview.Analyzer, error) {
	opts := []gamereview.Option{
		gamereview.WithEnginePath(p.Config.EnginePath),
		gamereview.WithStats(p.Collector),
		gamereview.WithLogger(p.Logger.Named("gamereview")),
	}
	if p.Config.CacheSize > 0 {
		opts = append(opts, gamereview.WithCacheSize(p.Config.CacheSize))
	}

	analyzer, err := gamereview.New(opts...)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})

	return analyzer, nil
}
