// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	domain TEXT,
	company_type TEXT,
	industry TEXT,
	notes TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	department TEXT,
	company_id TEXT,
	notes TEXT,
	source_id TEXT,
	updated_by TEXT,
	last_contacted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (company_id) REFERENCES companies(id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_source_id ON contacts(source_id);

CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	amount INTEGER,
	currency TEXT NOT NULL DEFAULT 'USD',
	stage TEXT NOT NULL,
	company_id TEXT,
	expected_close_date DATE,
	updated_by TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (company_id) REFERENCES companies(id)
);

CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage);
CREATE INDEX IF NOT EXISTS idx_opportunities_company_id ON opportunities(company_id);

CREATE TABLE IF NOT EXISTS opportunity_contacts (
	opportunity_id TEXT NOT NULL,
	contact_ref TEXT NOT NULL,
	name TEXT,
	email TEXT,
	status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'removed')),
	updated_by TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (opportunity_id, contact_ref),
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_opportunity_contacts_ref ON opportunity_contacts(contact_ref);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
