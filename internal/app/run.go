package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vk/scriptforge/internal/cache"
	"github.com/vk/scriptforge/internal/cost"
	"github.com/vk/scriptforge/internal/ctxlog"
	"github.com/vk/scriptforge/internal/engine"
	"github.com/vk/scriptforge/internal/executor"
	"github.com/vk/scriptforge/internal/graph"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/store"
	"github.com/vk/scriptforge/internal/store/bolt"
)

// dryRunReport is printed instead of a batch result when parsing only.
type dryRunReport struct {
	Success        bool     `json:"success"`
	Nodes          int      `json:"nodes"`
	ExecutionOrder []string `json:"execution_order"`
	AssetActions   []string `json:"asset_actions"`
	GameActions    []string `json:"game_actions"`
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	raw, err := os.ReadFile(cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	result := a.parser.Parse(ctx, raw)
	if !result.Success {
		a.printJSON(result)
		return fmt.Errorf("script failed validation with %d error(s)", len(result.Errors))
	}
	a.logger.Info("Script parsed.", "nodes", len(result.Graph.Nodes))

	if cfg.DryRun {
		a.printJSON(dryRunReport{
			Success:        true,
			Nodes:          len(result.Graph.Nodes),
			ExecutionOrder: result.Graph.ExecutionOrder,
			AssetActions:   result.Graph.AssetActions,
			GameActions:    result.Graph.GameActions,
		})
		return nil
	}

	batch, err := a.executeBatch(ctx, cfg, result.Graph)
	if err != nil {
		return err
	}
	a.printJSON(batch)
	if !batch.Success {
		return fmt.Errorf("batch finished with %d error(s)", len(batch.Errors))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// executeBatch assembles the shared services and walks the graph.
func (a *App) executeBatch(ctx context.Context, cfg *Config, g *graph.Graph) (*engine.BatchResult, error) {
	assetStore, cleanup, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	limiter := ratelimit.New(map[string]ratelimit.Config{
		ratelimit.ClassImageGeneration: {PerSecond: a.env.ImageRatePerSec, Burst: a.env.ImageBurst},
		ratelimit.ClassTTSGeneration:   {PerSecond: a.env.TTSRatePerSec, Burst: a.env.TTSBurst},
	})

	execCtx := &executor.Context{
		APIKey:  a.env.APIKey,
		Store:   assetStore,
		Cache:   cache.NewMemory(),
		Limiter: limiter,
		Costs:   cost.NewLedger(),
		Retry: executor.RetryConfig{
			MaxAttempts: a.env.MaxAttempts,
			BaseDelay:   a.env.RetryBaseDelay,
			MaxDelay:    a.env.RetryMaxDelay,
		},
		CacheTTL: a.env.CacheTTL,
	}

	a.logger.Info("Starting batch.", "executors", a.registry.List())
	return engine.New(a.registry, execCtx).Execute(ctx, g), nil
}

// openStore returns the persistent store when a cache directory is
// configured, the in-memory one otherwise.
func (a *App) openStore(cfg *Config) (store.Storage, func(), error) {
	if cfg.CacheDir == "" {
		return store.NewMemory(), func() {}, nil
	}
	s, err := bolt.Open(cfg.CacheDir + "/assets.db")
	if err != nil {
		return nil, nil, fmt.Errorf("open asset store: %w", err)
	}
	return s, func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("Closing asset store failed.", "error", err)
		}
	}, nil
}

func (a *App) printJSON(v any) {
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		a.logger.Error("Failed to encode report.", "error", err)
	}
}
