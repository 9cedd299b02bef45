// ABOUTME: Tests for the dual-source resolver
// ABOUTME: Covers fallback determinism, by-id replication-lag fallback, and joins
package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmkit/cache"
	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/retry"
)

type fakeContactsRepo struct {
	contacts []models.Contact
	byID     map[string]*models.Contact
	listErr  error
	getErr   error
}

func (f *fakeContactsRepo) List(ctx context.Context) ([]models.Contact, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contacts, nil
}

func (f *fakeContactsRepo) Get(ctx context.Context, id string) (*models.Contact, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

type fakeCompanyLookup struct {
	names map[string]string
	calls int
}

func (f *fakeCompanyLookup) Get(ctx context.Context, id string) (*models.Company, error) {
	f.calls++
	name, ok := f.names[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &models.Company{Name: name}, nil
}

func legacyContactsReader(rows [][]any, err error) *reader.Reader[models.Contact] {
	src := reader.SourceFunc(func(ctx context.Context) ([][]any, error) {
		if err != nil {
			return nil, err
		}
		return rows, nil
	})
	return reader.New(cache.New(30*time.Second), "contacts", src, ParseLegacyContact,
		reader.WithExecutor[models.Contact](&retry.Executor{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
}

func TestFetchPrefersRelational(t *testing.T) {
	repo := &fakeContactsRepo{contacts: []models.Contact{{ID: "C1", Name: "Ada"}}}
	legacy := legacyContactsReader([][]any{{"L1", "Legacy Larry"}}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.Fetch(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
}

func TestFetchFallsBackOnRelationalError(t *testing.T) {
	repo := &fakeContactsRepo{listErr: errors.New("connection refused")}
	legacy := legacyContactsReader([][]any{{"L1", "Legacy Larry", "l@x.com"}}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.Fetch(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Legacy Larry", got[0].Name)
}

func TestFetchValidEmptyDoesNotFallBack(t *testing.T) {
	repo := &fakeContactsRepo{contacts: []models.Contact{}}
	legacy := legacyContactsReader([][]any{{"L1", "Legacy Larry"}}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, got, "valid empty relational result is the true result")
}

func TestFetchForceLegacySkipsRelational(t *testing.T) {
	repo := &fakeContactsRepo{contacts: []models.Contact{{ID: "C1", Name: "Ada"}}}
	legacy := legacyContactsReader([][]any{{"L1", "Legacy Larry"}}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.Fetch(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Legacy Larry", got[0].Name)
}

func TestFetchBothSourcesFailPropagates(t *testing.T) {
	repo := &fakeContactsRepo{listErr: errors.New("connection refused")}
	legacy := legacyContactsReader(nil, errors.New("quota exceeded"))

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	_, err := r.Fetch(context.Background(), false)
	assert.Error(t, err)
}

func TestGetByIDRelationalHit(t *testing.T) {
	repo := &fakeContactsRepo{byID: map[string]*models.Contact{
		"C1": {ID: "C1", Name: "Ada"},
	}}
	legacy := legacyContactsReader(nil, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.GetByID(context.Background(), "C1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)
}

func TestGetByIDNotFoundFallsBackToLegacy(t *testing.T) {
	repo := &fakeContactsRepo{byID: map[string]*models.Contact{}}
	legacy := legacyContactsReader([][]any{{"C2", "Lagging Lucy", "lucy@x.com"}}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.GetByID(context.Background(), "C2")
	require.NoError(t, err)
	require.NotNil(t, got, "replication lag: the legacy store should back the lookup")
	assert.Equal(t, "Lagging Lucy", got.Name)
}

func TestGetByIDAbsentEverywhere(t *testing.T) {
	repo := &fakeContactsRepo{byID: map[string]*models.Contact{}}
	legacy := legacyContactsReader([][]any{}, nil)

	r := NewContacts(repo, legacy, &fakeCompanyLookup{})
	got, err := r.GetByID(context.Background(), "C-nope")
	require.NoError(t, err)
	assert.Nil(t, got, "absence is not an error in single-lookup paths")
}

func TestJoinResolvesCompanyNameThroughCache(t *testing.T) {
	lookup := &fakeCompanyLookup{names: map[string]string{"co-1": "Acme"}}
	repo := &fakeContactsRepo{contacts: []models.Contact{
		{ID: "C1", Name: "Ada", CompanyID: "co-1"},
		{ID: "C2", Name: "Grace", CompanyID: "co-1"},
	}}
	legacy := legacyContactsReader(nil, nil)

	r := NewContacts(repo, legacy, lookup)
	got, err := r.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got[0].CompanyName)
	assert.Equal(t, "Acme", got[1].CompanyName)
	assert.Equal(t, 1, lookup.calls, "second join should come from the reference cache")
}

func TestNormalizeContactPrecedence(t *testing.T) {
	// Canonical camelCase wins over the legacy name when both are present.
	c := NormalizeContact(map[string]any{
		"companyName":  "Canonical Corp",
		"company_name": "Legacy Corp",
		"name":         "Ada",
	})
	assert.Equal(t, "Canonical Corp", c.CompanyName)

	// Legacy name used when the canonical key is absent.
	c = NormalizeContact(map[string]any{
		"company": "Alt Corp",
		"name":    "Ada",
	})
	assert.Equal(t, "Alt Corp", c.CompanyName)

	// Neither present: zero value.
	c = NormalizeContact(map[string]any{"name": "Ada"})
	assert.Empty(t, c.CompanyName)
}

func TestNormalizeCompanyPrecedence(t *testing.T) {
	co := NormalizeCompany(map[string]any{
		"companyType":  "prospect",
		"company_type": "customer",
		"name":         "Acme",
	})
	assert.Equal(t, "prospect", co.CompanyType)

	co = NormalizeCompany(map[string]any{"type": "partner", "name": "Acme"})
	assert.Equal(t, "partner", co.CompanyType)
}

func TestParseLegacyContactDropsBlankRows(t *testing.T) {
	_, ok := ParseLegacyContact([]any{"", ""}, 3)
	assert.False(t, ok)

	c, ok := ParseLegacyContact([]any{"C9", "Ada", "ada@x.com", "", "Acme"}, 1)
	require.True(t, ok)
	assert.Equal(t, "C9", c.ID)
	assert.Equal(t, "Acme", c.CompanyName)
}
