// ABOUTME: Contact service composing the dual-source resolver and scoped writer
// ABOUTME: Callers get one surface and never see which store served a read
package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/harperreed/crmkit/ids"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/writer"
)

// ErrInvalidInput marks a request the service refused before touching a store.
var ErrInvalidInput = errors.New("service: invalid input")

// ContactReads is the read surface the contact service composes. The
// dual-source resolver satisfies it.
type ContactReads interface {
	Fetch(ctx context.Context, forceLegacy bool) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
}

// ContactWrites is the write surface. The relational scoped writer satisfies
// it.
type ContactWrites interface {
	Create(ctx context.Context, rec models.Contact) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type Contacts struct {
	reads  ContactReads
	writes ContactWrites
	cache  writer.Invalidator

	newID func() string
}

func NewContacts(reads ContactReads, writes ContactWrites, cache writer.Invalidator) *Contacts {
	return &Contacts{reads: reads, writes: writes, cache: cache, newID: ids.NewContactID}
}

// List returns all contacts sorted by name. Reads come from whichever store
// the resolver picked.
func (s *Contacts) List(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.reads.Fetch(ctx, false)
	if err != nil {
		return nil, err
	}
	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
	return contacts, nil
}

// GetByID returns the contact or (nil, nil) when it exists in neither store.
func (s *Contacts) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.reads.GetByID(ctx, id)
}

// Create inserts a contact, minting an id when the caller didn't supply one,
// and returns the id.
func (s *Contacts) Create(ctx context.Context, c models.Contact) (string, error) {
	if c.Name == "" {
		return "", ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	return s.writes.Create(ctx, c)
}

// Update applies a partial update; only the provided fields change.
func (s *Contacts) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" || len(fields) == 0 {
		return ErrInvalidInput
	}
	return s.writes.Update(ctx, id, fields)
}

func (s *Contacts) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	return s.writes.Delete(ctx, id)
}

// InvalidateCache forces the next read against cached legacy data to refresh.
func (s *Contacts) InvalidateCache() {
	s.cache.Invalidate("contacts")
}
