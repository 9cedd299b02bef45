// ABOUTME: Scoped writer for opportunity-contact links
// ABOUTME: Pair-keyed upsert and hard delete with paired-reader invalidation
package writer

import (
	"context"
	"log/slog"

	"github.com/harperreed/crmkit/models"
)

// LinkStore is the repository surface for opportunity-contact links.
type LinkStore interface {
	Upsert(ctx context.Context, link models.OpportunityContact) error
	Remove(ctx context.Context, opportunityID, contactRef string) error
}

// Links writes opportunity-contact links. Link identity is the
// (opportunity, contact) pair, so creation and update are one upsert.
type Links struct {
	store  LinkStore
	cache  Invalidator
	logger *slog.Logger
}

func NewLinks(store LinkStore, cache Invalidator) *Links {
	return &Links{store: store, cache: cache, logger: slog.Default()}
}

func (w *Links) Upsert(ctx context.Context, link models.OpportunityContact) error {
	if err := w.store.Upsert(ctx, link); err != nil {
		return err
	}
	invalidateFor(w.cache, "opportunity_contacts", w.logger)
	return nil
}

func (w *Links) Remove(ctx context.Context, opportunityID, contactRef string) error {
	if err := w.store.Remove(ctx, opportunityID, contactRef); err != nil {
		return err
	}
	invalidateFor(w.cache, "opportunity_contacts", w.logger)
	return nil
}
