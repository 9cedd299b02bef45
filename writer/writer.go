// ABOUTME: Scoped writers bound to one target store with paired-reader invalidation
// ABOUTME: Maps store table identity to cache keys and handles legacy read-merge-write
package writer

import (
	"context"
	"errors"
	"log/slog"
)

// ErrRowNotFound marks a legacy update aimed at a row that no longer exists.
var ErrRowNotFound = errors.New("writer: row not found")

// CacheKeys maps a table identity to the cache key(s) of its paired readers.
// Several event sub-tables collapse into the single eventLogs read model, so a
// write to any of them invalidates that one key. Tables not listed here
// invalidate a key equal to their own name.
var CacheKeys = map[string][]string{
	"contacts":             {"contacts"},
	"companies":            {"companies"},
	"opportunities":        {"opportunities"},
	"opportunity_contacts": {"opportunities"},
	"leads":                {"leads"},
	"interactions":         {"eventLogs"},
	"events_meeting":       {"eventLogs"},
	"events_call":          {"eventLogs"},
	"events_demo":          {"eventLogs"},
	"weekly_reports":       {"weeklyReports"},
}

// Invalidator is the slice of the cache store writers need.
type Invalidator interface {
	Invalidate(key string)
}

func invalidateFor(c Invalidator, table string, logger *slog.Logger) {
	keys, ok := CacheKeys[table]
	if !ok {
		keys = []string{table}
	}
	for _, key := range keys {
		c.Invalidate(key)
	}
	logger.Debug("cache invalidated after write",
		slog.String("table", table), slog.Any("keys", keys))
}

// RelationalStore is the per-table operation surface the relational scoped
// writer drives. The db repositories implement it.
type RelationalStore[T any] interface {
	Insert(ctx context.Context, rec T) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Relational writes single logical records to one relational table, bound at
// construction, and invalidates the paired reader keys on success. The
// relational store updates only provided columns natively, so no prior read is
// needed.
type Relational[T any] struct {
	table  string
	store  RelationalStore[T]
	cache  Invalidator
	logger *slog.Logger
}

func NewRelational[T any](table string, store RelationalStore[T], cache Invalidator) *Relational[T] {
	return &Relational[T]{table: table, store: store, cache: cache, logger: slog.Default()}
}

func (w *Relational[T]) Table() string { return w.table }

func (w *Relational[T]) Create(ctx context.Context, rec T) (string, error) {
	id, err := w.store.Insert(ctx, rec)
	if err != nil {
		return "", err
	}
	invalidateFor(w.cache, w.table, w.logger)
	return id, nil
}

func (w *Relational[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := w.store.Update(ctx, id, fields); err != nil {
		return err
	}
	invalidateFor(w.cache, w.table, w.logger)
	return nil
}

func (w *Relational[T]) Delete(ctx context.Context, id string) error {
	if err := w.store.Delete(ctx, id); err != nil {
		return err
	}
	invalidateFor(w.cache, w.table, w.logger)
	return nil
}
