package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/ctxlog"
	"github.com/vk/scriptforge/internal/ratelimit"
)

// GenerateFunc invokes the underlying generator once.
type GenerateFunc func(ctx context.Context) (*AssetResult, error)

// Base is embedded by concrete executors and provides the shared pipeline.
// Kind tags results and cost records; Class names the rate-limit resource
// class, empty for executors that make no external call.
type Base struct {
	Kind  string
	Class string
}

// Do runs the pipeline around a concrete generator:
//
//  1. validate, failing permanently on error
//  2. cache lookup by content address
//  3. rate-limit acquisition, retried once after the hinted backoff
//  4. generation under exponential-backoff retry
//  5. cache write (best effort) and cost recording
func (b *Base) Do(ctx context.Context, a *action.Action, ec *Context, exec Executor, generate GenerateFunc) (*AssetResult, error) {
	logger := ctxlog.FromContext(ctx).With("action", a.ID, "kind", b.Kind)

	if err := exec.Validate(a); err != nil {
		return nil, Permanent(fmt.Errorf("validate %s action %q: %w", b.Kind, a.ID, err))
	}

	key, err := CacheKey(a)
	if err != nil {
		return nil, err
	}
	if cached, ok := ec.Cache.Get(key); ok {
		if res, ok := cached.(*AssetResult); ok {
			logger.Debug("Cache hit, skipping generation.", "key", key)
			out := *res
			out.Cached = true
			return &out, nil
		}
	}

	if b.Class != "" {
		if err := b.acquireSlot(ctx, ec); err != nil {
			return nil, err
		}
	}

	res, err := b.generateWithRetry(ctx, ec, generate)
	if err != nil {
		return nil, err
	}
	res.Kind = b.Kind

	if err := ec.Cache.Set(key, res, ec.CacheTTL); err != nil {
		logger.Warn("Cache write failed, result not cached.", "key", key, "error", err)
	}
	ec.Costs.Record(b.Kind, res.Model, res.Units, res.Cost)

	return res, nil
}

// acquireSlot takes a rate-limit slot for the executor's resource class.
// On exhaustion it waits out the limiter's retry-after hint and retries
// acquisition exactly once.
func (b *Base) acquireSlot(ctx context.Context, ec *Context) error {
	err := ec.Limiter.Acquire(ctx, b.Class)
	if err == nil {
		return nil
	}
	var rlErr *ratelimit.Error
	if !errors.As(err, &rlErr) {
		return err
	}

	ctxlog.FromContext(ctx).Debug("Rate limit exhausted, backing off.",
		"class", b.Class, "retry_after", rlErr.RetryAfter)
	timer := time.NewTimer(rlErr.RetryAfter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := ec.Limiter.Acquire(ctx, b.Class); err != nil {
		return fmt.Errorf("acquire %s slot: %w", b.Class, err)
	}
	return nil
}

// generateWithRetry invokes the generator under exponential backoff.
// Permanent errors abort the loop immediately; exhausting every attempt
// produces an error naming the attempt count and the last failure.
func (b *Base) generateWithRetry(ctx context.Context, ec *Context, generate GenerateFunc) (*AssetResult, error) {
	cfg := ec.Retry.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	attempts := 0
	op := func() (*AssetResult, error) {
		attempts++
		res, err := generate(ctx)
		if err != nil && IsPermanent(err) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)))
	if err != nil {
		if IsPermanent(err) {
			return nil, err
		}
		return nil, fmt.Errorf("generation failed after %d attempts: %w", attempts, err)
	}
	return res, nil
}
