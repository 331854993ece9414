// Package executor defines the contract every asset executor implements and
// the shared execution pipeline they compose: validation, content-addressed
// caching, rate limiting, retried generation, and cost recording.
package executor

import (
	"context"
	"time"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/cache"
	"github.com/vk/scriptforge/internal/cost"
	"github.com/vk/scriptforge/internal/ratelimit"
	"github.com/vk/scriptforge/internal/store"
)

// CostEstimate bounds the expected spend for one action before execution.
type CostEstimate struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Executor is implemented by each concrete asset executor (image, speech,
// cutscene assembly).
type Executor interface {
	// Validate checks the action's fields. A non-nil error means the action
	// can never execute; such failures are not retried.
	Validate(a *action.Action) error
	// EstimateCost predicts the spend for the action without executing it.
	EstimateCost(a *action.Action) CostEstimate
	// Execute runs the full pipeline and returns the generated result.
	Execute(ctx context.Context, a *action.Action, ec *Context) (*AssetResult, error)
}

// RetryConfig tunes the generation retry loop.
type RetryConfig struct {
	// MaxAttempts bounds generator invocations, first try included.
	MaxAttempts int
	// BaseDelay is the first backoff interval; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff interval.
	MaxDelay time.Duration
}

// Defaults applied when a RetryConfig field is unset.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 200 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
)

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	return c
}

// Context carries the shared services one batch executes against. It is
// owned by the engine for the duration of the batch; executors use the
// services but do not own them.
type Context struct {
	// APIKey is the credential handed to generators. The simulated
	// providers only check that it is non-empty.
	APIKey   string
	Store    store.Storage
	Cache    cache.Cache
	Limiter  ratelimit.Limiter
	Costs    *cost.Ledger
	Retry    RetryConfig
	CacheTTL time.Duration
}

// AssetResult is the outcome of executing one asset action.
type AssetResult struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	URL         string         `json:"url"`
	Model       string         `json:"model,omitempty"`
	Units       int            `json:"units,omitempty"`
	Cost        float64        `json:"cost"`
	DurationSec float64        `json:"duration_sec,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	// Definition is set for cutscene results: the assembled playback
	// definition built from the shots' metadata.
	Definition any `json:"definition,omitempty"`
	// Cached marks results served from the cache without generation.
	Cached bool `json:"cached,omitempty"`
}
