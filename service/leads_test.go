// ABOUTME: Tests for the lead service over the RAW tab
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/crmkit/models"
)

type fakeLeadReads struct {
	leads []models.RawContact
}

func (f *fakeLeadReads) Fetch(ctx context.Context) ([]models.RawContact, error) {
	return f.leads, nil
}

type fakeLeadWriter struct {
	rows    [][]any
	updates map[int]map[string]any
	deleted []int
}

func (f *fakeLeadWriter) Append(ctx context.Context, row []any) error {
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeLeadWriter) UpdateRow(ctx context.Context, rowIndex int, fields map[string]any) error {
	if f.updates == nil {
		f.updates = map[int]map[string]any{}
	}
	f.updates[rowIndex] = fields
	return nil
}

func (f *fakeLeadWriter) DeleteRow(ctx context.Context, rowIndex int) error {
	f.deleted = append(f.deleted, rowIndex)
	return nil
}

func TestLeadsListSheetOrder(t *testing.T) {
	reads := &fakeLeadReads{leads: []models.RawContact{
		{RowIndex: 7, Name: "late"},
		{RowIndex: 2, Name: "early"},
	}}
	s := NewLeads(reads, &fakeLeadWriter{}, &recordingInvalidator{})

	leads, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if leads[0].RowIndex != 2 || leads[1].RowIndex != 7 {
		t.Fatalf("unexpected order: %+v", leads)
	}
}

func TestLeadsGet(t *testing.T) {
	reads := &fakeLeadReads{leads: []models.RawContact{{RowIndex: 3, Name: "Acme"}}}
	s := NewLeads(reads, &fakeLeadWriter{}, &recordingInvalidator{})

	lead, err := s.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if lead == nil || lead.Name != "Acme" {
		t.Fatalf("unexpected lead: %+v", lead)
	}

	lead, err = s.Get(context.Background(), 99)
	if err != nil || lead != nil {
		t.Fatalf("absent row should be (nil, nil), got %+v, %v", lead, err)
	}
}

func TestLeadsAddDefaultsStatus(t *testing.T) {
	appender := &fakeLeadWriter{}
	s := NewLeads(&fakeLeadReads{}, appender, &recordingInvalidator{})

	if err := s.Add(context.Background(), models.RawContact{Name: "Acme"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	row := appender.rows[0]
	if row[5] != models.RawStatusPending {
		t.Errorf("expected pending status, got %v", row[5])
	}

	if err := s.Add(context.Background(), models.RawContact{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty lead: got %v", err)
	}
}

func TestLeadsUpdateAndDelete(t *testing.T) {
	writes := &fakeLeadWriter{}
	s := NewLeads(&fakeLeadReads{}, writes, &recordingInvalidator{})
	ctx := context.Background()

	if err := s.Update(ctx, 5, map[string]any{"notes": "followed up"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if writes.updates[5]["notes"] != "followed up" {
		t.Errorf("update not forwarded: %+v", writes.updates)
	}

	if err := s.Delete(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(writes.deleted) != 1 || writes.deleted[0] != 5 {
		t.Errorf("delete not forwarded: %v", writes.deleted)
	}

	// Row 1 is the header; writes against it are refused.
	if err := s.Update(ctx, 1, map[string]any{"notes": "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("header update: got %v", err)
	}
	if err := s.Delete(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero-row delete: got %v", err)
	}
}
