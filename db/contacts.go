// ABOUTME: Contact repository over the relational store
// ABOUTME: CRUD with native partial update for official (CORE) contacts
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/crmkit/models"
)

// contactColumns lists the columns a partial update may touch.
var contactColumns = map[string]bool{
	"name":              true,
	"email":             true,
	"phone":             true,
	"department":        true,
	"company_id":        true,
	"notes":             true,
	"updated_by":        true,
	"last_contacted_at": true,
}

type ContactsRepo struct {
	db *sql.DB
}

func NewContactsRepo(db *sql.DB) *ContactsRepo {
	return &ContactsRepo{db: db}
}

// Insert creates a contact. The caller supplies the generated id (contacts use
// "C"-prefixed ids minted by the lifecycle bridge or the service layer).
func (r *ContactsRepo) Insert(ctx context.Context, c models.Contact) (string, error) {
	if c.ID == "" {
		return "", fmt.Errorf("db: contact id is required")
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, phone, department, company_id, notes, source_id, updated_by, last_contacted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Department, nullable(c.CompanyID), c.Notes, nullable(c.SourceID), c.UpdatedBy, c.LastContact, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert contact: %w", err)
	}
	return c.ID, nil
}

func (r *ContactsRepo) Get(ctx context.Context, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, department, company_id, notes, source_id, updated_by, last_contacted_at, created_at, updated_at
		FROM contacts WHERE id = ?
	`, id)
	return scanContact(row)
}

// GetBySourceID finds a contact by its RAW-row audit reference.
func (r *ContactsRepo) GetBySourceID(ctx context.Context, sourceID string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, department, company_id, notes, source_id, updated_by, last_contacted_at, created_at, updated_at
		FROM contacts WHERE source_id = ?
	`, sourceID)
	return scanContact(row)
}

func (r *ContactsRepo) List(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, department, company_id, notes, source_id, updated_by, last_contacted_at, created_at, updated_at
		FROM contacts ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	// Non-nil even when empty: callers treat nil as a malformed response.
	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// Update sets only the provided columns (native partial update).
func (r *ContactsRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return partialUpdate(ctx, r.db, "contacts", contactColumns, id, fields)
}

func (r *ContactsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row *sql.Row) (*models.Contact, error) {
	c, err := scanContactRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func scanContactRow(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var companyID, sourceID sql.NullString
	var email, phone, department, notes, updatedBy sql.NullString

	err := row.Scan(&c.ID, &c.Name, &email, &phone, &department, &companyID,
		&notes, &sourceID, &updatedBy, &c.LastContact, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Email = email.String
	c.Phone = phone.String
	c.Department = department.String
	c.Notes = notes.String
	c.UpdatedBy = updatedBy.String
	c.CompanyID = companyID.String
	c.SourceID = sourceID.String
	return &c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// partialUpdate builds an UPDATE that SETs only the provided columns, always
// bumping updated_at. Unknown columns are rejected rather than ignored.
func partialUpdate(ctx context.Context, db *sql.DB, table string, allowed map[string]bool, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for col, v := range fields {
		if !allowed[col] {
			return fmt.Errorf("db: column %q is not updatable on %s", col, table)
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
