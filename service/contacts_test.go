// ABOUTME: Tests for the contact service
// ABOUTME: Includes a full-stack read path exercising cache coalescing
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harperreed/crmkit/cache"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/resolver"
	"github.com/harperreed/crmkit/retry"
)

type fakeContactReads struct {
	contacts []models.Contact
	err      error
	byID     map[string]*models.Contact
}

func (f *fakeContactReads) Fetch(ctx context.Context, forceLegacy bool) ([]models.Contact, error) {
	return f.contacts, f.err
}

func (f *fakeContactReads) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	return f.byID[id], nil
}

type fakeContactWrites struct {
	created []models.Contact
	updated map[string]map[string]any
	deleted []string
}

func (f *fakeContactWrites) Create(ctx context.Context, rec models.Contact) (string, error) {
	f.created = append(f.created, rec)
	return rec.ID, nil
}

func (f *fakeContactWrites) Update(ctx context.Context, id string, fields map[string]any) error {
	if f.updated == nil {
		f.updated = map[string]map[string]any{}
	}
	f.updated[id] = fields
	return nil
}

func (f *fakeContactWrites) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingInvalidator) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func TestContactsListSortsByName(t *testing.T) {
	reads := &fakeContactReads{contacts: []models.Contact{
		{ID: "C3", Name: "zelda"},
		{ID: "C1", Name: "Alice"},
		{ID: "C2", Name: "bob"},
	}}
	s := NewContacts(reads, &fakeContactWrites{}, &recordingInvalidator{})

	contacts, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{contacts[0].Name, contacts[1].Name, contacts[2].Name}
	want := []string{"Alice", "bob", "zelda"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order %v, want %v", got, want)
		}
	}
}

func TestContactsCreateMintsID(t *testing.T) {
	writes := &fakeContactWrites{}
	s := NewContacts(&fakeContactReads{}, writes, &recordingInvalidator{})

	id, err := s.Create(context.Background(), models.Contact{Name: "Alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(id, "C") || len(id) < 2 {
		t.Errorf("expected minted C id, got %q", id)
	}
	if writes.created[0].ID != id {
		t.Errorf("minted id not passed to store")
	}

	// Caller-supplied ids are kept.
	id, err = s.Create(context.Background(), models.Contact{ID: "C-fixed", Name: "Bob"})
	if err != nil {
		t.Fatalf("create with id: %v", err)
	}
	if id != "C-fixed" {
		t.Errorf("expected supplied id kept, got %q", id)
	}
}

func TestContactsInputValidation(t *testing.T) {
	s := NewContacts(&fakeContactReads{}, &fakeContactWrites{}, &recordingInvalidator{})
	ctx := context.Background()

	if _, err := s.Create(ctx, models.Contact{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nameless create: got %v", err)
	}
	if err := s.Update(ctx, "C1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty update: got %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty delete id: got %v", err)
	}
	if _, err := s.GetByID(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty get id: got %v", err)
	}
}

func TestContactsInvalidateCache(t *testing.T) {
	inv := &recordingInvalidator{}
	s := NewContacts(&fakeContactReads{}, &fakeContactWrites{}, inv)
	s.InvalidateCache()
	if len(inv.keys) != 1 || inv.keys[0] != "contacts" {
		t.Fatalf("expected contacts key invalidated, got %v", inv.keys)
	}
}

type failingRepo struct{}

func (failingRepo) List(ctx context.Context) ([]models.Contact, error) {
	return nil, errors.New("relational store down")
}

func (failingRepo) Get(ctx context.Context, id string) (*models.Contact, error) {
	return nil, errors.New("relational store down")
}

type noCompanies struct{}

func (noCompanies) Get(ctx context.Context, id string) (*models.Company, error) {
	return nil, nil
}

// Two concurrent List calls through the full read stack must produce exactly
// one upstream legacy read.
func TestContactsConcurrentListCoalesces(t *testing.T) {
	var calls atomic.Int32
	source := reader.SourceFunc(func(ctx context.Context) ([][]any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return [][]any{
			{"C1", "Alice", "alice@example.com"},
			{"C2", "Bob", "bob@example.com"},
		}, nil
	})

	store := cache.New(time.Minute)
	legacy := reader.New(store, "contacts", source, resolver.ParseLegacyContact,
		reader.WithExecutor[models.Contact](&retry.Executor{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	res := resolver.NewContacts(failingRepo{}, legacy, noCompanies{})
	s := NewContacts(res, &fakeContactWrites{}, store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	counts := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			contacts, err := s.List(context.Background())
			errs[i] = err
			counts[i] = len(contacts)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("list %d: %v", i, errs[i])
		}
		if counts[i] != 2 {
			t.Errorf("list %d returned %d contacts, want 2", i, counts[i])
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream read, got %d", n)
	}
}
