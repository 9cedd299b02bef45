// ABOUTME: Company repository over the relational store
// ABOUTME: CRUD with native partial update for migrated companies
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

var companyColumns = map[string]bool{
	"name":         true,
	"domain":       true,
	"company_type": true,
	"industry":     true,
	"notes":        true,
}

type CompaniesRepo struct {
	db *sql.DB
}

func NewCompaniesRepo(db *sql.DB) *CompaniesRepo {
	return &CompaniesRepo{db: db}
}

func (r *CompaniesRepo) Insert(ctx context.Context, c models.Company) (string, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, domain, company_type, industry, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.Name, c.Domain, c.CompanyType, c.Industry, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert company: %w", err)
	}
	return c.ID.String(), nil
}

func (r *CompaniesRepo) Get(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	var idStr string
	var domain, companyType, industry, notes sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, domain, company_type, industry, notes, created_at, updated_at
		FROM companies WHERE id = ?
	`, id).Scan(&idStr, &c.Name, &domain, &companyType, &industry, &notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", idStr, err)
	}
	c.ID = parsed
	c.Domain = domain.String
	c.CompanyType = companyType.String
	c.Industry = industry.String
	c.Notes = notes.String
	return &c, nil
}

func (r *CompaniesRepo) List(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, domain, company_type, industry, notes, created_at, updated_at
		FROM companies ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	// Non-nil even when empty: callers treat nil as a malformed response.
	companies := []models.Company{}
	for rows.Next() {
		var c models.Company
		var idStr string
		var domain, companyType, industry, notes sql.NullString
		if err := rows.Scan(&idStr, &c.Name, &domain, &companyType, &industry, &notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue // skip malformed rows
		}
		c.ID = id
		c.Domain = domain.String
		c.CompanyType = companyType.String
		c.Industry = industry.String
		c.Notes = notes.String
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompaniesRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	return partialUpdate(ctx, r.db, "companies", companyColumns, id, fields)
}

func (r *CompaniesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
