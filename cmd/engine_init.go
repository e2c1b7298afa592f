package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caledonia-energy/engage-cli/internal/classifier"
	"github.com/caledonia-energy/engage-cli/internal/composer"
	"github.com/caledonia-energy/engage-cli/internal/engine"
	"github.com/caledonia-energy/engage-cli/internal/insight"
	"github.com/caledonia-energy/engage-cli/internal/policy"
	"github.com/caledonia-energy/engage-cli/internal/store"
	"github.com/caledonia-energy/engage-cli/pkg/anthropic"
)

// engineEnv holds the initialized store and pipeline needed by the
// serve/notify/analyse commands.
type engineEnv struct {
	Store  *store.SQLiteStore
	Engine *engine.Engine
}

// Close releases resources held by the environment.
func (ee *engineEnv) Close() {
	if ee.Store != nil {
		_ = ee.Store.Close()
	}
}

// initEngine opens the store, builds the insight provider (or the
// unavailable stand-in when no API key is configured), and wires the
// pipeline. Callers should defer env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	st, err := store.NewSQLite(cfg.Store.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	provider := insight.Unavailable()
	if cfg.Anthropic.Key != "" {
		provider = insight.New(anthropic.NewClient(cfg.Anthropic.Key), insight.Options{
			Model:          cfg.Anthropic.Model,
			Timeout:        time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
			RequestsPerSec: cfg.Anthropic.RequestsPerSec,
		})
	} else {
		zap.L().Warn("ENGAGE_ANTHROPIC_KEY not set, running on deterministic fallback rules only")
	}

	thresholds := policy.ThresholdsFromConfig(cfg.Engage)
	eng := engine.New(
		st,
		classifier.New(provider, thresholds, cfg.Anthropic.AnalysisMaxTokens),
		policy.New(thresholds),
		composer.New(provider, cfg.Anthropic.MessageMaxTokens),
		cfg.Batch.Concurrency,
	)

	return &engineEnv{Store: st, Engine: eng}, nil
}
