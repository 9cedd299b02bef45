// ABOUTME: Opportunity service, relational-only with contact link management
// ABOUTME: Opportunities were born after the migration so they have no legacy source
package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/writer"
)

type OpportunityReads interface {
	List(ctx context.Context) ([]models.Opportunity, error)
	Get(ctx context.Context, id string) (*models.Opportunity, error)
}

type OpportunityWrites interface {
	Create(ctx context.Context, rec models.Opportunity) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type LinkReads interface {
	ListByOpportunity(ctx context.Context, opportunityID string) ([]models.OpportunityContact, error)
}

type LinkWrites interface {
	Upsert(ctx context.Context, link models.OpportunityContact) error
	Remove(ctx context.Context, opportunityID, contactRef string) error
}

type Opportunities struct {
	reads     OpportunityReads
	writes    OpportunityWrites
	linkReads LinkReads
	links     LinkWrites
	cache     writer.Invalidator
}

func NewOpportunities(reads OpportunityReads, writes OpportunityWrites, linkReads LinkReads, links LinkWrites, cache writer.Invalidator) *Opportunities {
	return &Opportunities{reads: reads, writes: writes, linkReads: linkReads, links: links, cache: cache}
}

// List returns all opportunities, most recently updated first.
func (s *Opportunities) List(ctx context.Context) ([]models.Opportunity, error) {
	opps, err := s.reads.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(opps, func(i, j int) bool {
		return opps[i].UpdatedAt.After(opps[j].UpdatedAt)
	})
	return opps, nil
}

func (s *Opportunities) GetByID(ctx context.Context, id string) (*models.Opportunity, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.reads.Get(ctx, id)
}

func (s *Opportunities) Create(ctx context.Context, o models.Opportunity) (string, error) {
	if o.Title == "" {
		return "", ErrInvalidInput
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.Stage == "" {
		o.Stage = models.StageProspecting
	}
	return s.writes.Create(ctx, o)
}

func (s *Opportunities) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" || len(fields) == 0 {
		return ErrInvalidInput
	}
	return s.writes.Update(ctx, id, fields)
}

func (s *Opportunities) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.writes.Delete(ctx, id)
}

// Contacts lists the contacts linked to an opportunity.
func (s *Opportunities) Contacts(ctx context.Context, opportunityID string) ([]models.OpportunityContact, error) {
	if opportunityID == "" {
		return nil, ErrInvalidInput
	}
	return s.linkReads.ListByOpportunity(ctx, opportunityID)
}

// AddContact attaches a contact reference, replacing any prior link for the
// same (opportunity, contact) pair.
func (s *Opportunities) AddContact(ctx context.Context, link models.OpportunityContact) error {
	if link.OpportunityID == "" || link.ContactRef == "" {
		return ErrInvalidInput
	}
	if link.Status == "" {
		link.Status = models.LinkStatusActive
	}
	return s.links.Upsert(ctx, link)
}

func (s *Opportunities) RemoveContact(ctx context.Context, opportunityID, contactRef string) error {
	if opportunityID == "" || contactRef == "" {
		return ErrInvalidInput
	}
	return s.links.Remove(ctx, opportunityID, contactRef)
}

func (s *Opportunities) InvalidateCache() {
	s.cache.Invalidate("opportunities")
}
