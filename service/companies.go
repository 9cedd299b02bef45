// ABOUTME: Company service over the dual-source resolver and relational writer
package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/writer"
)

type CompanyReads interface {
	Fetch(ctx context.Context, forceLegacy bool) ([]models.Company, error)
	GetByID(ctx context.Context, id string) (*models.Company, error)
}

type CompanyWrites interface {
	Create(ctx context.Context, rec models.Company) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type Companies struct {
	reads  CompanyReads
	writes CompanyWrites
	cache  writer.Invalidator
}

func NewCompanies(reads CompanyReads, writes CompanyWrites, cache writer.Invalidator) *Companies {
	return &Companies{reads: reads, writes: writes, cache: cache}
}

func (s *Companies) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.reads.Fetch(ctx, false)
	if err != nil {
		return nil, err
	}
	sort.Slice(companies, func(i, j int) bool {
		return strings.ToLower(companies[i].Name) < strings.ToLower(companies[j].Name)
	})
	return companies, nil
}

func (s *Companies) GetByID(ctx context.Context, id string) (*models.Company, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.reads.GetByID(ctx, id)
}

func (s *Companies) Create(ctx context.Context, c models.Company) (string, error) {
	if c.Name == "" {
		return "", ErrInvalidInput
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return s.writes.Create(ctx, c)
}

func (s *Companies) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" || len(fields) == 0 {
		return ErrInvalidInput
	}
	return s.writes.Update(ctx, id, fields)
}

func (s *Companies) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.writes.Delete(ctx, id)
}

func (s *Companies) InvalidateCache() {
	s.cache.Invalidate("companies")
}
