// ABOUTME: Zone lifecycle bridge promoting RAW rows into official CORE records
// ABOUTME: Orchestrates upgrade, file, and link actions across the two stores
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/ids"
	"github.com/harperreed/crmkit/models"
)

var (
	// ErrRawNotFound marks an action aimed at a RAW row that does not exist.
	ErrRawNotFound = errors.New("bridge: raw record not found")
	// ErrAlreadyPromoted guards against accidental double promotion.
	ErrAlreadyPromoted = errors.New("bridge: raw record already promoted")
)

// SourceRef builds the audit back-reference stored on a promoted CORE record.
// It is a coordinate into the legacy store at promotion time, not an identity.
func SourceRef(rowIndex int) string {
	return fmt.Sprintf("leads!%d", rowIndex)
}

// LeadSource reads the RAW rows. The cached reader satisfies it.
type LeadSource interface {
	Fetch(ctx context.Context) ([]models.RawContact, error)
}

// FlagWriter updates a RAW row's status flag. The legacy scoped writer
// satisfies it.
type FlagWriter interface {
	SetCell(ctx context.Context, rowIndex int, column string, value any) error
}

// ContactCreator creates the CORE record. The relational scoped writer
// satisfies it.
type ContactCreator interface {
	Create(ctx context.Context, rec models.Contact) (string, error)
}

// LinkUpserter attaches a contact reference to an opportunity aggregate.
type LinkUpserter interface {
	Upsert(ctx context.Context, link models.OpportunityContact) error
}

// ContactLookup resolves a CORE record by its audit back-reference. RetryPending
// uses it to settle intents whose create outcome is unknown after a crash; a
// missing record is reported as db.ErrNotFound.
type ContactLookup interface {
	GetBySourceID(ctx context.Context, sourceID string) (*models.Contact, error)
}

// UpgradeRequest describes one promotion. Overrides are caller-supplied
// corrections that take precedence over the RAW row's fields.
type UpgradeRequest struct {
	RowIndex       int
	Overrides      map[string]string
	Actor          string
	AllowRepromote bool
}

// Bridge performs the one-way RAW to CORE promotion and the reciprocal
// linking/archival actions. There is no cross-store transaction: the CORE
// create is authoritative and the RAW flag write is a best-effort side effect
// journaled for retry.
type Bridge struct {
	leads    LeadSource
	flags    FlagWriter
	contacts ContactCreator
	links    LinkUpserter
	journal  *IntentJournal
	lookup   ContactLookup
	logger   *slog.Logger

	newContactID func() string
	newIntentID  func() string
}

func New(leads LeadSource, flags FlagWriter, contacts ContactCreator, links LinkUpserter, journal *IntentJournal) *Bridge {
	return &Bridge{
		leads:        leads,
		flags:        flags,
		contacts:     contacts,
		links:        links,
		journal:      journal,
		logger:       slog.Default(),
		newContactID: ids.NewContactID,
		newIntentID:  ids.NewIntentID,
	}
}

// WithContactLookup lets RetryPending reconcile intents journaled before a
// crash interrupted the CORE create.
func (b *Bridge) WithContactLookup(l ContactLookup) *Bridge {
	b.lookup = l
	return b
}

// Upgrade promotes the RAW row at rowIndex into a new official contact and
// returns the generated id. Promotion succeeds once the CORE record exists;
// failure of the RAW status flag write is reported as a logged warning and
// retried later, never as a hard failure.
func (b *Bridge) Upgrade(ctx context.Context, req UpgradeRequest) (string, error) {
	lead, err := b.findLead(ctx, req.RowIndex)
	if err != nil {
		return "", err
	}
	if lead.Status == models.RawStatusPromoted && !req.AllowRepromote {
		return "", fmt.Errorf("%w: row %d", ErrAlreadyPromoted, req.RowIndex)
	}

	intent := PromotionIntent{
		ID:       b.newIntentID(),
		RowIndex: req.RowIndex,
		Actor:    req.Actor,
		State:    IntentPending,
	}
	if err := b.journal.Put(intent); err != nil {
		return "", fmt.Errorf("failed to journal promotion intent: %w", err)
	}

	payload := b.corePayload(lead, req)
	coreID, err := b.contacts.Create(ctx, payload)
	if err != nil {
		// Nothing to compensate; drop the intent.
		if derr := b.journal.Delete(intent.ID); derr != nil {
			b.logger.Error("failed to drop intent after create failure",
				slog.String("intent", intent.ID), slog.Any("error", derr))
		}
		return "", fmt.Errorf("failed to create official contact: %w", err)
	}

	intent.CoreID = coreID
	if err := b.journal.Put(intent); err != nil {
		b.logger.Error("failed to record core id on intent",
			slog.String("intent", intent.ID), slog.Any("error", err))
	}

	if err := b.flags.SetCell(ctx, req.RowIndex, "status", models.RawStatusPromoted); err != nil {
		// Partial success: the official record exists, which is the business
		// intent. The pending intent keeps the flag write retryable.
		b.logger.Warn("promotion flag write failed; left pending for retry",
			slog.Int("row", req.RowIndex),
			slog.String("core_id", coreID),
			slog.Any("error", err))
		return coreID, nil
	}

	if err := b.journal.MarkDone(intent.ID); err != nil {
		b.logger.Error("failed to mark intent done",
			slog.String("intent", intent.ID), slog.Any("error", err))
	}
	b.logger.Info("raw record promoted",
		slog.Int("row", req.RowIndex),
		slog.String("core_id", coreID),
		slog.String("from", models.ZoneRaw),
		slog.String("to", models.ZoneCore))
	return coreID, nil
}

// File archives a RAW row without promoting it.
func (b *Bridge) File(ctx context.Context, rowIndex int, actor string) error {
	if _, err := b.findLead(ctx, rowIndex); err != nil {
		return err
	}
	if err := b.flags.SetCell(ctx, rowIndex, "status", models.RawStatusArchived); err != nil {
		return fmt.Errorf("failed to archive row %d: %w", rowIndex, err)
	}
	b.logger.Info("raw record archived", slog.Int("row", rowIndex), slog.String("actor", actor))
	return nil
}

// Link attaches a RAW row to an existing opportunity without creating a full
// official record. The link snapshots the fields the aggregate needs.
func (b *Bridge) Link(ctx context.Context, rowIndex int, opportunityID, actor string) error {
	lead, err := b.findLead(ctx, rowIndex)
	if err != nil {
		return err
	}

	link := models.OpportunityContact{
		OpportunityID: opportunityID,
		ContactRef:    SourceRef(rowIndex),
		Name:          lead.Name,
		Email:         lead.Email,
		Status:        models.LinkStatusActive,
		UpdatedBy:     actor,
	}
	if err := b.links.Upsert(ctx, link); err != nil {
		return fmt.Errorf("failed to link row %d to opportunity %s: %w", rowIndex, opportunityID, err)
	}

	if err := b.flags.SetCell(ctx, rowIndex, "status", models.RawStatusLinked); err != nil {
		b.logger.Warn("link flag write failed",
			slog.Int("row", rowIndex), slog.Any("error", err))
	}
	return nil
}

// RetryPending replays the RAW flag writes of promotions whose step-4 side
// effect failed. Intended to run from a periodic sweep or an operator command.
func (b *Bridge) RetryPending(ctx context.Context) error {
	pending, err := b.journal.Pending()
	if err != nil {
		return fmt.Errorf("failed to list pending intents: %w", err)
	}

	var firstErr error
	for _, intent := range pending {
		if intent.CoreID == "" {
			// A crash landed between journaling and the create. Ask the
			// relational store whether the create actually happened; without a
			// lookup the intent is left for a sweep that has one.
			if b.lookup == nil {
				continue
			}
			contact, err := b.lookup.GetBySourceID(ctx, SourceRef(intent.RowIndex))
			if errors.Is(err, db.ErrNotFound) {
				// Create never happened; the caller already saw the failure.
				if derr := b.journal.Delete(intent.ID); derr != nil && firstErr == nil {
					firstErr = derr
				}
				continue
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			intent.CoreID = contact.ID
			if err := b.journal.Put(intent); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := b.flags.SetCell(ctx, intent.RowIndex, "status", models.RawStatusPromoted); err != nil {
			b.logger.Warn("retry of promotion flag write failed",
				slog.String("intent", intent.ID),
				slog.Int("row", intent.RowIndex),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := b.journal.MarkDone(intent.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *Bridge) findLead(ctx context.Context, rowIndex int) (models.RawContact, error) {
	leads, err := b.leads.Fetch(ctx)
	if err != nil {
		return models.RawContact{}, fmt.Errorf("failed to read raw records: %w", err)
	}
	for _, lead := range leads {
		if lead.RowIndex == rowIndex {
			return lead, nil
		}
	}
	return models.RawContact{}, fmt.Errorf("%w: row %d", ErrRawNotFound, rowIndex)
}

func (b *Bridge) corePayload(lead models.RawContact, req UpgradeRequest) models.Contact {
	c := models.Contact{
		ID:        b.newContactID(),
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Notes:     lead.Notes,
		SourceID:  SourceRef(req.RowIndex),
		UpdatedBy: req.Actor,
	}
	for field, v := range req.Overrides {
		switch field {
		case "name":
			c.Name = v
		case "email":
			c.Email = v
		case "phone":
			c.Phone = v
		case "department":
			c.Department = v
		case "company_id", "companyId":
			c.CompanyID = v
		case "notes":
			c.Notes = v
		}
	}
	return c
}
