// ABOUTME: Lead service over the RAW legacy tab
// ABOUTME: Lifecycle actions (upgrade, file, link) live in the bridge, not here
package service

import (
	"context"
	"sort"

	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/writer"
)

type LeadReads interface {
	Fetch(ctx context.Context) ([]models.RawContact, error)
}

// LeadWrites is the legacy-tab write surface. The legacy scoped writer
// satisfies it.
type LeadWrites interface {
	Append(ctx context.Context, row []any) error
	UpdateRow(ctx context.Context, rowIndex int, fields map[string]any) error
	DeleteRow(ctx context.Context, rowIndex int) error
}

type Leads struct {
	reads  LeadReads
	writes LeadWrites
	cache  writer.Invalidator
}

func NewLeads(reads LeadReads, writes LeadWrites, cache writer.Invalidator) *Leads {
	return &Leads{reads: reads, writes: writes, cache: cache}
}

// List returns all RAW rows in sheet order.
func (s *Leads) List(ctx context.Context) ([]models.RawContact, error) {
	leads, err := s.reads.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].RowIndex < leads[j].RowIndex
	})
	return leads, nil
}

// Get returns the RAW row at rowIndex, or (nil, nil) when absent.
func (s *Leads) Get(ctx context.Context, rowIndex int) (*models.RawContact, error) {
	leads, err := s.reads.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		if leads[i].RowIndex == rowIndex {
			return &leads[i], nil
		}
	}
	return nil, nil
}

// Add appends a new RAW row with a pending status.
func (s *Leads) Add(ctx context.Context, lead models.RawContact) error {
	if lead.Name == "" && lead.Email == "" {
		return ErrInvalidInput
	}
	if lead.Status == "" {
		lead.Status = models.RawStatusPending
	}
	row := []any{lead.Name, lead.Email, lead.Phone, lead.Company, lead.Notes, lead.Status}
	return s.writes.Append(ctx, row)
}

// Update applies a partial update to a RAW row. Unspecified columns keep their
// current cell values.
func (s *Leads) Update(ctx context.Context, rowIndex int, fields map[string]any) error {
	if rowIndex < 2 || len(fields) == 0 {
		return ErrInvalidInput
	}
	return s.writes.UpdateRow(ctx, rowIndex, fields)
}

// Delete removes a RAW row. Positions of rows below it shift up by one.
func (s *Leads) Delete(ctx context.Context, rowIndex int) error {
	if rowIndex < 2 {
		return ErrInvalidInput
	}
	return s.writes.DeleteRow(ctx, rowIndex)
}

func (s *Leads) InvalidateCache() {
	s.cache.Invalidate("leads")
}
