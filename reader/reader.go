// ABOUTME: Generic cached reader composing the TTL cache, coalescer, and backoff executor
// ABOUTME: Serves entity reads with a hit fast path and graceful degradation on upstream failure
package reader

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/harperreed/crmkit/cache"
	"github.com/harperreed/crmkit/retry"
	"github.com/harperreed/crmkit/sheets"
)

// Source produces the raw tabular data for one cache key.
type Source interface {
	FetchRows(ctx context.Context) ([][]any, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([][]any, error)

func (f SourceFunc) FetchRows(ctx context.Context) ([][]any, error) { return f(ctx) }

// ParseRow turns one raw row into a record. idx is the 1-based sheet position.
// Returning ok=false drops the row (blank or malformed rows).
type ParseRow[T any] func(row []any, idx int) (T, bool)

// Positioner is implemented by records that carry a legacy row position. The
// reader assigns the position from the row's index when the parser left it
// unset.
type Positioner interface {
	RowPos() int
	SetRowPos(int)
}

// Reader is a read-through cached reader for one entity collection. Concurrent
// misses for the same key coalesce into a single upstream fetch; upstream calls
// go through the backoff executor.
type Reader[T any] struct {
	store  *cache.Store
	key    string
	source Source
	parse  ParseRow[T]
	exec   *retry.Executor
	less   func(a, b T) bool
	logger *slog.Logger

	group singleflight.Group
}

type Option[T any] func(*Reader[T])

// WithSort applies a stable sort to parsed records before caching. Services
// generally sort at their own layer; this exists for the few callers that need
// a canonical cached order.
func WithSort[T any](less func(a, b T) bool) Option[T] {
	return func(r *Reader[T]) { r.less = less }
}

func WithExecutor[T any](e *retry.Executor) Option[T] {
	return func(r *Reader[T]) { r.exec = e }
}

func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(r *Reader[T]) { r.logger = l }
}

func New[T any](store *cache.Store, key string, source Source, parse ParseRow[T], opts ...Option[T]) *Reader[T] {
	r := &Reader[T]{
		store:  store,
		key:    key,
		source: source,
		parse:  parse,
		exec:   retry.NewExecutor(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the cache key this reader owns.
func (r *Reader[T]) Key() string { return r.key }

// Invalidate forces the next Fetch to refresh. Paired scoped writers call this
// after a successful write.
func (r *Reader[T]) Invalidate() { r.store.Invalidate(r.key) }

// Fetch returns the cached records for the key, refreshing on miss. A caller
// whose ctx expires detaches from the shared in-flight fetch without canceling
// it; other waiters still receive its result. When the refresh ultimately
// fails, Fetch serves the last cached value if one exists, else an empty slice
// together with the error.
//
// The returned slice is the caller's own copy: services sort and annotate
// records in place, and the cached slice is shared by every waiter of a
// coalesced flight.
func (r *Reader[T]) Fetch(ctx context.Context) ([]T, error) {
	if v, ok := r.store.Get(r.key); ok {
		if records, ok := v.([]T); ok {
			return slices.Clone(records), nil
		}
	}

	ch := r.group.DoChan(r.key, func() (any, error) {
		// The flight outlives any single waiter.
		return r.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return r.degraded(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return r.degraded(res.Err)
		}
		return slices.Clone(res.Val.([]T)), nil
	}
}

func (r *Reader[T]) refresh(ctx context.Context) ([]T, error) {
	raw, err := retry.Value(ctx, r.exec, r.key, func() ([][]any, error) {
		return r.source.FetchRows(ctx)
	})
	if err != nil {
		if errors.Is(err, sheets.ErrRangeMissing) {
			// The tab doesn't exist yet: legitimately empty, not a failure.
			empty := []T{}
			r.store.Put(r.key, empty)
			r.logger.Info("range missing, cached empty result", slog.String("key", r.key))
			return empty, nil
		}
		return nil, err
	}

	records := make([]T, 0, len(raw))
	for i, row := range raw {
		rec, ok := r.parse(row, i+1)
		if !ok {
			continue
		}
		if p, ok := any(&rec).(Positioner); ok && p.RowPos() == 0 {
			p.SetRowPos(i + 1)
		}
		records = append(records, rec)
	}

	if r.less != nil {
		sort.SliceStable(records, func(i, j int) bool { return r.less(records[i], records[j]) })
	}

	r.store.Put(r.key, records)
	return records, nil
}

func (r *Reader[T]) degraded(cause error) ([]T, error) {
	if v, ok := r.store.GetStale(r.key); ok {
		if records, ok := v.([]T); ok {
			r.logger.Warn("serving stale cache after fetch failure",
				slog.String("key", r.key), slog.Any("error", cause))
			return slices.Clone(records), nil
		}
	}
	r.logger.Error("fetch failed with no cached fallback",
		slog.String("key", r.key), slog.Any("error", cause))
	return []T{}, cause
}
