// ABOUTME: Dual-source resolver for contacts during incremental store migration
// ABOUTME: Relational first, legacy spreadsheet fallback, one canonical DTO out
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/sheets"
)

// LegacyContactColumns is the column layout of the legacy official-contacts
// tab. Contacts not yet backfilled into the relational store still live there.
var LegacyContactColumns = []string{
	"id", "name", "email", "phone", "company", "department", "notes", "source_id", "updated_by",
}

// ParseLegacyContact turns one legacy contacts row into the canonical DTO.
func ParseLegacyContact(row []any, idx int) (models.Contact, bool) {
	fields := make(map[string]any, len(LegacyContactColumns))
	for i, col := range LegacyContactColumns {
		fields[col] = sheets.Str(row, i)
	}
	c := NormalizeContact(fields)
	if c.ID == "" && c.Name == "" {
		return models.Contact{}, false
	}
	return c, true
}

// RelationalContacts is the slice of the contacts repository the resolver
// consumes.
type RelationalContacts interface {
	List(ctx context.Context) ([]models.Contact, error)
	Get(ctx context.Context, id string) (*models.Contact, error)
}

// CompanyLookup resolves company ids for the display-name join.
type CompanyLookup interface {
	Get(ctx context.Context, id string) (*models.Company, error)
}

// Contacts reconciles the two backing stores into one read model. The
// relational store is authoritative; the legacy store backs reads when the
// relational store errors, responds with a malformed shape, or (for single-id
// lookups) doesn't have the row yet, as during a backfill lag.
type Contacts struct {
	repo      RelationalContacts
	legacy    *reader.Reader[models.Contact]
	companies CompanyLookup
	names     *ttlcache.Cache[string, string]
	logger    *slog.Logger
}

func NewContacts(repo RelationalContacts, legacy *reader.Reader[models.Contact], companies CompanyLookup) *Contacts {
	return &Contacts{
		repo:      repo,
		legacy:    legacy,
		companies: companies,
		names: ttlcache.New(
			ttlcache.WithTTL[string, string](5 * time.Minute),
		),
		logger: slog.Default(),
	}
}

// Fetch returns all contacts. A valid empty relational result is the true
// result; only errors and malformed responses trigger the legacy fallback.
func (r *Contacts) Fetch(ctx context.Context, forceLegacy bool) ([]models.Contact, error) {
	if !forceLegacy {
		contacts, err := r.repo.List(ctx)
		if err == nil && contacts != nil {
			return r.joinNames(ctx, contacts), nil
		}
		r.logger.Warn("relational contacts read failed, falling back to legacy store",
			slog.Any("error", err))
	}

	contacts, err := r.legacy.Fetch(ctx)
	if err != nil {
		// Both sources failed; fallback is a recovery strategy, not a silencer.
		return nil, err
	}
	return r.joinNames(ctx, contacts), nil
}

// GetByID looks a contact up by id. Relational "not found" falls back to the
// legacy store before concluding absence; a contact absent from both is
// (nil, nil).
func (r *Contacts) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	c, err := r.repo.Get(ctx, id)
	if err == nil && c != nil {
		joined := r.joinNames(ctx, []models.Contact{*c})
		return &joined[0], nil
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		r.logger.Warn("relational contact lookup failed, falling back to legacy store",
			slog.String("id", id), slog.Any("error", err))
	}

	contacts, lerr := r.legacy.Fetch(ctx)
	if lerr != nil {
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, lerr
	}
	for i := range contacts {
		if contacts[i].ID == id {
			joined := r.joinNames(ctx, contacts[i:i+1])
			return &joined[0], nil
		}
	}
	return nil, nil
}

// InvalidateLegacy forces the next legacy read to refresh.
func (r *Contacts) InvalidateLegacy() { r.legacy.Invalidate() }

func (r *Contacts) joinNames(ctx context.Context, contacts []models.Contact) []models.Contact {
	for i := range contacts {
		if contacts[i].CompanyName == "" && contacts[i].CompanyID != "" {
			contacts[i].CompanyName = r.companyName(ctx, contacts[i].CompanyID)
		}
	}
	return contacts
}

func (r *Contacts) companyName(ctx context.Context, id string) string {
	if item := r.names.Get(id); item != nil {
		return item.Value()
	}
	company, err := r.companies.Get(ctx, id)
	if err != nil || company == nil {
		return ""
	}
	r.names.Set(id, company.Name, ttlcache.DefaultTTL)
	return company.Name
}
