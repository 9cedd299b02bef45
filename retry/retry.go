// ABOUTME: Backoff executor for upstream store calls
// ABOUTME: Retries rate-limit and server errors with exponential backoff and jitter
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// Executor retries an upstream call on transient failures. Each Do call starts
// a fresh attempt counter; no backoff state is shared across calls.
type Executor struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry; attempt n waits
	// BaseDelay * 2^n, capped at MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// JitterFactor is the maximum jitter as a fraction of the delay (0.0 to 1.0).
	JitterFactor float64

	Logger *slog.Logger
}

// NewExecutor returns an executor with the defaults used across the core.
func NewExecutor() *Executor {
	return &Executor{
		MaxRetries:   3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		JitterFactor: 0.3,
	}
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// IsTransient reports whether err is worth retrying: a rate-limit signal or a
// server-side failure. Anything else (malformed request, auth failure) is fatal.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

// Do runs fn, retrying transient errors up to MaxRetries times. Fatal errors
// and exhausted retries propagate. The inter-attempt sleep respects ctx so a
// caller's deadline is not held hostage by the backoff timer.
func (e *Executor) Do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt >= e.MaxRetries {
			return err
		}

		delay := e.delay(attempt)
		e.logger().Warn("retrying upstream call",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (e *Executor) delay(attempt int) time.Duration {
	d := float64(e.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(e.MaxDelay) {
		d = float64(e.MaxDelay)
	}
	if e.JitterFactor > 0 {
		// math/rand is fine for jitter, not security-critical
		d += d * e.JitterFactor * (2*rand.Float64() - 1)
		if d < 0 {
			d = float64(e.BaseDelay)
		}
	}
	return time.Duration(d)
}

// Value runs fn through the executor and returns its result.
func Value[T any](ctx context.Context, e *Executor, op string, fn func() (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, op, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
