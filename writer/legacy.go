// ABOUTME: Scoped writer for the legacy spreadsheet-shaped store
// ABOUTME: Appends, read-merge-write partial updates, cell flags, and row deletion
package writer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harperreed/crmkit/retry"
	"github.com/harperreed/crmkit/sheets"
)

// LegacyConfig binds a legacy writer to one tab of the spreadsheet store.
type LegacyConfig struct {
	// Table is the logical identity used for cache-key lookup (usually the tab
	// name, but event sub-tables share one key).
	Table string
	// Tab is the sheet tab name used in A1 ranges.
	Tab string
	// SheetID is the numeric sheet id required for row deletion.
	SheetID int64
	// Columns is the tab's column layout, in order.
	Columns []string
}

// Legacy writes single rows to one spreadsheet tab. The legacy store has no
// partial-update primitive, so UpdateRow reads the current row directly from
// upstream (bypassing the cache), merges the provided fields, and writes the
// whole row back. That read-modify-write is not locked: concurrent updates to
// the same row race and the last write wins.
type Legacy struct {
	cfg    LegacyConfig
	src    sheets.RangeSource
	cache  Invalidator
	exec   *retry.Executor
	logger *slog.Logger

	colIndex map[string]int
}

func NewLegacy(cfg LegacyConfig, src sheets.RangeSource, cache Invalidator) *Legacy {
	idx := make(map[string]int, len(cfg.Columns))
	for i, col := range cfg.Columns {
		idx[col] = i
	}
	return &Legacy{
		cfg:      cfg,
		src:      src,
		cache:    cache,
		exec:     retry.NewExecutor(),
		logger:   slog.Default(),
		colIndex: idx,
	}
}

// WithExecutor overrides the backoff executor (tests use fast delays).
func (w *Legacy) WithExecutor(e *retry.Executor) *Legacy {
	w.exec = e
	return w
}

func (w *Legacy) Table() string { return w.cfg.Table }

// Append adds one row after the tab's last data row.
func (w *Legacy) Append(ctx context.Context, row []any) error {
	rangeSpec := w.cfg.Tab + "!A1"
	err := w.exec.Do(ctx, "append "+w.cfg.Table, func() error {
		return w.src.AppendRow(ctx, rangeSpec, row)
	})
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", w.cfg.Tab, err)
	}
	invalidateFor(w.cache, w.cfg.Table, w.logger)
	return nil
}

// UpdateRow merges fields (keyed by column name) into the 1-based rowIndex and
// writes the full row back.
func (w *Legacy) UpdateRow(ctx context.Context, rowIndex int, fields map[string]any) error {
	rowRange := sheets.RowRange(w.cfg.Tab, rowIndex, len(w.cfg.Columns))

	current, err := retry.Value(ctx, w.exec, "read "+w.cfg.Table, func() ([][]any, error) {
		return w.src.ReadRange(ctx, rowRange)
	})
	if err != nil {
		return fmt.Errorf("failed to read row %d of %s: %w", rowIndex, w.cfg.Tab, err)
	}
	if len(current) == 0 {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, w.cfg.Tab, rowIndex)
	}

	merged := make([]any, len(w.cfg.Columns))
	for i := range merged {
		if i < len(current[0]) {
			merged[i] = current[0][i]
		} else {
			merged[i] = ""
		}
	}
	for col, v := range fields {
		i, ok := w.colIndex[col]
		if !ok {
			return fmt.Errorf("writer: column %q not in %s layout", col, w.cfg.Tab)
		}
		merged[i] = v
	}

	err = w.exec.Do(ctx, "update "+w.cfg.Table, func() error {
		return w.src.UpdateRange(ctx, rowRange, [][]any{merged})
	})
	if err != nil {
		return fmt.Errorf("failed to update row %d of %s: %w", rowIndex, w.cfg.Tab, err)
	}
	invalidateFor(w.cache, w.cfg.Table, w.logger)
	return nil
}

// SetCell writes one cell, used for status flags where clobbering the rest of
// the row would be wasteful.
func (w *Legacy) SetCell(ctx context.Context, rowIndex int, column string, value any) error {
	i, ok := w.colIndex[column]
	if !ok {
		return fmt.Errorf("writer: column %q not in %s layout", column, w.cfg.Tab)
	}

	update := []sheets.CellUpdate{{
		Range:  sheets.CellRef(w.cfg.Tab, rowIndex, i),
		Values: [][]any{{value}},
	}}
	err := w.exec.Do(ctx, "flag "+w.cfg.Table, func() error {
		return w.src.BatchUpdateCells(ctx, update)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s of row %d in %s: %w", column, rowIndex, w.cfg.Tab, err)
	}
	invalidateFor(w.cache, w.cfg.Table, w.logger)
	return nil
}

// DeleteRow removes the 1-based rowIndex. Row indices of everything below it
// shift up, which is why a rowIndex is never a durable identity.
func (w *Legacy) DeleteRow(ctx context.Context, rowIndex int) error {
	err := w.exec.Do(ctx, "delete "+w.cfg.Table, func() error {
		return w.src.DeleteRowRange(ctx, w.cfg.SheetID, int64(rowIndex-1), int64(rowIndex))
	})
	if err != nil {
		return fmt.Errorf("failed to delete row %d of %s: %w", rowIndex, w.cfg.Tab, err)
	}
	invalidateFor(w.cache, w.cfg.Table, w.logger)
	return nil
}
