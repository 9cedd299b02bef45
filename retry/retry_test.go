// ABOUTME: Tests for the backoff executor
// ABOUTME: Covers retry bounds, delay growth, and transient classification
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func fastExecutor() *Executor {
	return &Executor{
		MaxRetries:   3,
		BaseDelay:    time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		JitterFactor: 0,
	}
}

func TestDoRetriesTransientUpToBound(t *testing.T) {
	ex := fastExecutor()

	calls := 0
	err := ex.Do(context.Background(), "test", func() error {
		calls++
		return &googleapi.Error{Code: 429, Message: "rate limited"}
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != ex.MaxRetries+1 {
		t.Errorf("expected %d calls, got %d", ex.MaxRetries+1, calls)
	}
}

func TestDoSucceedsOnFourthAttempt(t *testing.T) {
	ex := fastExecutor()

	calls := 0
	err := ex.Do(context.Background(), "test", func() error {
		calls++
		if calls < 4 {
			return &googleapi.Error{Code: 503}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDoFatalErrorNotRetried(t *testing.T) {
	ex := fastExecutor()

	calls := 0
	fatal := &googleapi.Error{Code: 400, Message: "bad request"}
	err := ex.Do(context.Background(), "test", func() error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("expected the fatal error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fatal error should not be retried, got %d calls", calls)
	}
}

func TestDelaysStrictlyIncrease(t *testing.T) {
	ex := fastExecutor()

	var prev time.Duration
	for attempt := 0; attempt < 3; attempt++ {
		d := ex.delay(attempt)
		if d <= prev {
			t.Errorf("delay for attempt %d (%v) not greater than previous (%v)", attempt, d, prev)
		}
		prev = d
	}
}

func TestDelayCappedAtMax(t *testing.T) {
	ex := fastExecutor()

	if d := ex.delay(20); d != ex.MaxDelay {
		t.Errorf("expected delay capped at %v, got %v", ex.MaxDelay, d)
	}
}

func TestDoRespectsContextDuringBackoff(t *testing.T) {
	ex := &Executor{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := ex.Do(ctx, "test", func() error {
		return &googleapi.Error{Code: 500}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("backoff sleep did not honor context cancellation")
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &googleapi.Error{Code: 429}, true},
		{"server error", &googleapi.Error{Code: 502}, true},
		{"bad request", &googleapi.Error{Code: 400}, false},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"auth failure", &googleapi.Error{Code: 403}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped rate limit", wrapErr{&googleapi.Error{Code: 429}}, true},
	}

	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}

type wrapErr struct{ inner error }

func (w wrapErr) Error() string { return "wrapped: " + w.inner.Error() }
func (w wrapErr) Unwrap() error { return w.inner }

func TestValueReturnsResult(t *testing.T) {
	ex := fastExecutor()

	calls := 0
	got, err := Value(context.Background(), ex, "test", func() ([]string, error) {
		calls++
		if calls < 2 {
			return nil, &googleapi.Error{Code: 500}
		}
		return []string{"a", "b"}, nil
	})

	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("unexpected result %v", got)
	}
}
