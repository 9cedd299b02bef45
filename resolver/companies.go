// ABOUTME: Dual-source resolver for companies
// ABOUTME: Same relational-first, legacy-fallback pattern as contacts
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/sheets"
)

// LegacyCompanyColumns is the column layout of the legacy companies tab.
var LegacyCompanyColumns = []string{
	"id", "name", "domain", "companyType", "industry", "notes",
}

// ParseLegacyCompany turns one legacy companies row into the canonical DTO.
// Legacy rows that predate uuid ids keep a zero id; they are read-only until
// backfilled.
func ParseLegacyCompany(row []any, idx int) (models.Company, bool) {
	fields := make(map[string]any, len(LegacyCompanyColumns))
	for i, col := range LegacyCompanyColumns {
		fields[col] = sheets.Str(row, i)
	}
	c := NormalizeCompany(fields)
	if c.Name == "" {
		return models.Company{}, false
	}
	if id, err := uuid.Parse(pick(fields, "id")); err == nil {
		c.ID = id
	}
	return c, true
}

type RelationalCompanies interface {
	List(ctx context.Context) ([]models.Company, error)
	Get(ctx context.Context, id string) (*models.Company, error)
}

type Companies struct {
	repo   RelationalCompanies
	legacy *reader.Reader[models.Company]
	logger *slog.Logger
}

func NewCompanies(repo RelationalCompanies, legacy *reader.Reader[models.Company]) *Companies {
	return &Companies{repo: repo, legacy: legacy, logger: slog.Default()}
}

func (r *Companies) Fetch(ctx context.Context, forceLegacy bool) ([]models.Company, error) {
	if !forceLegacy {
		companies, err := r.repo.List(ctx)
		if err == nil && companies != nil {
			return companies, nil
		}
		r.logger.Warn("relational companies read failed, falling back to legacy store",
			slog.Any("error", err))
	}
	return r.legacy.Fetch(ctx)
}

func (r *Companies) GetByID(ctx context.Context, id string) (*models.Company, error) {
	c, err := r.repo.Get(ctx, id)
	if err == nil && c != nil {
		return c, nil
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		r.logger.Warn("relational company lookup failed, falling back to legacy store",
			slog.String("id", id), slog.Any("error", err))
	}

	companies, lerr := r.legacy.Fetch(ctx)
	if lerr != nil {
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, lerr
	}
	for i := range companies {
		if companies[i].ID != uuid.Nil && companies[i].ID.String() == id {
			return &companies[i], nil
		}
	}
	return nil, nil
}
