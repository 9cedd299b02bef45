// ABOUTME: Tests for the opportunity service and contact link management
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/crmkit/models"
)

type fakeOppReads struct {
	opps []models.Opportunity
}

func (f *fakeOppReads) List(ctx context.Context) ([]models.Opportunity, error) {
	return f.opps, nil
}

func (f *fakeOppReads) Get(ctx context.Context, id string) (*models.Opportunity, error) {
	for i := range f.opps {
		if f.opps[i].ID.String() == id {
			return &f.opps[i], nil
		}
	}
	return nil, errors.New("not found")
}

type fakeOppWrites struct {
	created []models.Opportunity
}

func (f *fakeOppWrites) Create(ctx context.Context, rec models.Opportunity) (string, error) {
	f.created = append(f.created, rec)
	return rec.ID.String(), nil
}

func (f *fakeOppWrites) Update(ctx context.Context, id string, fields map[string]any) error {
	return nil
}

func (f *fakeOppWrites) Delete(ctx context.Context, id string) error { return nil }

type fakeLinkStore struct {
	links   []models.OpportunityContact
	removed [][2]string
}

func (f *fakeLinkStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]models.OpportunityContact, error) {
	var out []models.OpportunityContact
	for _, l := range f.links {
		if l.OpportunityID == opportunityID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinkStore) Upsert(ctx context.Context, link models.OpportunityContact) error {
	f.links = append(f.links, link)
	return nil
}

func (f *fakeLinkStore) Remove(ctx context.Context, opportunityID, contactRef string) error {
	f.removed = append(f.removed, [2]string{opportunityID, contactRef})
	return nil
}

func newOppService(reads *fakeOppReads, writes *fakeOppWrites, links *fakeLinkStore) *Opportunities {
	return NewOpportunities(reads, writes, links, links, &recordingInvalidator{})
}

func TestOpportunitiesCreateDefaults(t *testing.T) {
	writes := &fakeOppWrites{}
	s := newOppService(&fakeOppReads{}, writes, &fakeLinkStore{})

	id, err := s.Create(context.Background(), models.Opportunity{Title: "Acme renewal"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, perr := uuid.Parse(id); perr != nil {
		t.Errorf("expected uuid id, got %q", id)
	}
	o := writes.created[0]
	if o.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", o.Currency)
	}
	if o.Stage != models.StageProspecting {
		t.Errorf("expected default stage, got %q", o.Stage)
	}

	if _, err := s.Create(context.Background(), models.Opportunity{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("titleless create: got %v", err)
	}
}

func TestOpportunitiesListMostRecentFirst(t *testing.T) {
	now := time.Now()
	reads := &fakeOppReads{opps: []models.Opportunity{
		{Title: "old", UpdatedAt: now.Add(-time.Hour)},
		{Title: "new", UpdatedAt: now},
		{Title: "mid", UpdatedAt: now.Add(-time.Minute)},
	}}
	s := newOppService(reads, &fakeOppWrites{}, &fakeLinkStore{})

	opps, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if opps[0].Title != "new" || opps[2].Title != "old" {
		t.Fatalf("unexpected order: %s, %s, %s", opps[0].Title, opps[1].Title, opps[2].Title)
	}
}

func TestOpportunitiesContactLinks(t *testing.T) {
	links := &fakeLinkStore{}
	s := newOppService(&fakeOppReads{}, &fakeOppWrites{}, links)
	ctx := context.Background()

	err := s.AddContact(ctx, models.OpportunityContact{
		OpportunityID: "opp-1", ContactRef: "C01A", Name: "Alice", UpdatedBy: "bob",
	})
	if err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if links.links[0].Status != models.LinkStatusActive {
		t.Errorf("expected default active status, got %q", links.links[0].Status)
	}

	got, err := s.Contacts(ctx, "opp-1")
	if err != nil {
		t.Fatalf("contacts: %v", err)
	}
	if len(got) != 1 || got[0].ContactRef != "C01A" {
		t.Fatalf("unexpected links: %+v", got)
	}

	if err := s.RemoveContact(ctx, "opp-1", "C01A"); err != nil {
		t.Fatalf("remove contact: %v", err)
	}
	if len(links.removed) != 1 {
		t.Fatalf("expected 1 removal, got %d", len(links.removed))
	}

	if err := s.AddContact(ctx, models.OpportunityContact{OpportunityID: "opp-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("refless link: got %v", err)
	}
}
