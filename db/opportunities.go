// ABOUTME: Opportunity and opportunity-contact link repositories
// ABOUTME: CRUD plus pair-keyed upsert and hard delete for links
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmkit/models"
)

var opportunityColumns = map[string]bool{
	"title":               true,
	"amount":              true,
	"currency":            true,
	"stage":               true,
	"company_id":          true,
	"expected_close_date": true,
	"updated_by":          true,
}

type OpportunitiesRepo struct {
	db *sql.DB
}

func NewOpportunitiesRepo(db *sql.DB) *OpportunitiesRepo {
	return &OpportunitiesRepo{db: db}
}

func (r *OpportunitiesRepo) Insert(ctx context.Context, o models.Opportunity) (string, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opportunities (id, title, amount, currency, stage, company_id, expected_close_date, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID.String(), o.Title, o.Amount, o.Currency, o.Stage, nullable(o.CompanyID), o.ExpectedCloseDate, o.UpdatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert opportunity: %w", err)
	}
	return o.ID.String(), nil
}

func (r *OpportunitiesRepo) Get(ctx context.Context, id string) (*models.Opportunity, error) {
	var o models.Opportunity
	var idStr string
	var companyID, updatedBy sql.NullString
	var amount sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount, currency, stage, company_id, expected_close_date, updated_by, created_at, updated_at
		FROM opportunities WHERE id = ?
	`, id).Scan(&idStr, &o.Title, &amount, &o.Currency, &o.Stage, &companyID, &o.ExpectedCloseDate, &updatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid opportunity id %q: %w", idStr, err)
	}
	o.ID = parsed
	o.Amount = amount.Int64
	o.CompanyID = companyID.String
	o.UpdatedBy = updatedBy.String
	return &o, nil
}

func (r *OpportunitiesRepo) List(ctx context.Context) ([]models.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, currency, stage, company_id, expected_close_date, updated_by, created_at, updated_at
		FROM opportunities ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	opportunities := []models.Opportunity{}
	for rows.Next() {
		var o models.Opportunity
		var idStr string
		var companyID, updatedBy sql.NullString
		var amount sql.NullInt64
		if err := rows.Scan(&idStr, &o.Title, &amount, &o.Currency, &o.Stage, &companyID, &o.ExpectedCloseDate, &updatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		o.ID = id
		o.Amount = amount.Int64
		o.CompanyID = companyID.String
		o.UpdatedBy = updatedBy.String
		opportunities = append(opportunities, o)
	}
	return opportunities, rows.Err()
}

func (r *OpportunitiesRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return partialUpdate(ctx, r.db, "opportunities", opportunityColumns, id, fields)
}

func (r *OpportunitiesRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM opportunity_contacts WHERE opportunity_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete opportunity links: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// LinksRepo manages opportunity-contact links. Identity is the
// (opportunity_id, contact_ref) pair: writes are upserts, removal is a hard
// delete.
type LinksRepo struct {
	db *sql.DB
}

func NewLinksRepo(db *sql.DB) *LinksRepo {
	return &LinksRepo{db: db}
}

func (r *LinksRepo) Upsert(ctx context.Context, link models.OpportunityContact) error {
	if link.Status == "" {
		link.Status = models.LinkStatusActive
	}
	link.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opportunity_contacts (opportunity_id, contact_ref, name, email, status, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(opportunity_id, contact_ref) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = excluded.status,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`, link.OpportunityID, link.ContactRef, link.Name, link.Email, link.Status, link.UpdatedBy, link.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert opportunity link: %w", err)
	}
	return nil
}

func (r *LinksRepo) Remove(ctx context.Context, opportunityID, contactRef string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM opportunity_contacts WHERE opportunity_id = ? AND contact_ref = ?
	`, opportunityID, contactRef)
	if err != nil {
		return fmt.Errorf("failed to remove opportunity link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LinksRepo) ListByOpportunity(ctx context.Context, opportunityID string) ([]models.OpportunityContact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT opportunity_id, contact_ref, name, email, status, updated_by, updated_at
		FROM opportunity_contacts WHERE opportunity_id = ? ORDER BY updated_at DESC
	`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunity links: %w", err)
	}
	defer rows.Close()

	var links []models.OpportunityContact
	for rows.Next() {
		var l models.OpportunityContact
		var name, email sql.NullString
		if err := rows.Scan(&l.OpportunityID, &l.ContactRef, &name, &email, &l.Status, &l.UpdatedBy, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Name = name.String
		l.Email = email.String
		links = append(links, l)
	}
	return links, rows.Err()
}
