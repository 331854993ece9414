// Package ratelimit gates access to external generator resources by
// resource class. Acquisition never blocks: when a class is exhausted the
// limiter raises an Error carrying a retry-after hint and leaves the
// backoff decision to the caller.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Resource classes used by the asset executors.
const (
	ClassImageGeneration = "image_generation"
	ClassTTSGeneration   = "tts_generation"
)

// Error signals that a resource class is exhausted. RetryAfter is the wait
// after which acquisition is expected to succeed.
type Error struct {
	Class      string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate limit exhausted for %s, retry after %s", e.Class, e.RetryAfter)
}

// Limiter admits calls per resource class.
type Limiter interface {
	// Acquire takes one slot for the class. It returns *Error when the
	// class is exhausted.
	Acquire(ctx context.Context, class string) error
}

// Config bounds one resource class.
type Config struct {
	PerSecond float64
	Burst     int
}

// TokenLimiter is a token-bucket Limiter with independent buckets per
// resource class. Unknown classes are admitted without limits.
type TokenLimiter struct {
	mu      sync.Mutex
	configs map[string]Config
	buckets map[string]*rate.Limiter
}

// New builds a limiter from per-class configuration.
func New(configs map[string]Config) *TokenLimiter {
	return &TokenLimiter{
		configs: configs,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Acquire implements Limiter.
func (l *TokenLimiter) Acquire(ctx context.Context, class string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bucket := l.bucketFor(class)
	if bucket == nil {
		return nil
	}

	now := time.Now()
	res := bucket.ReserveN(now, 1)
	if !res.OK() {
		return &Error{Class: class, RetryAfter: time.Second}
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &Error{Class: class, RetryAfter: delay}
	}
	return nil
}

func (l *TokenLimiter) bucketFor(class string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket, ok := l.buckets[class]; ok {
		return bucket
	}
	cfg, ok := l.configs[class]
	if !ok {
		return nil
	}
	bucket := rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst)
	l.buckets[class] = bucket
	return bucket
}
