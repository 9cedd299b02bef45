// ABOUTME: Data models for CRM entities across both backing stores
// ABOUTME: Defines Company, Contact, Opportunity, link and activity types
package models

import (
	"time"

	"github.com/google/uuid"
)

// Zone constants. Every promotable entity lives in exactly one zone: RAW rows
// belong to the legacy spreadsheet store and are addressed by row position;
// CORE records belong to the relational store and carry a stable generated id.
const (
	ZoneRaw  = "raw"
	ZoneCore = "core"
)

// RAW row status flags.
const (
	RawStatusPending  = "Pending"
	RawStatusPromoted = "Promoted"
	RawStatusArchived = "Archived"
	RawStatusLinked   = "Linked"
)

type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain,omitempty"`
	CompanyType string    `json:"companyType,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contact is an official (CORE) contact in the relational store. SourceID, when
// set, is an audit back-reference to the RAW row the contact was promoted from
// (e.g. "leads!5"); it is never used as an identity.
type Contact struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Department  string     `json:"department,omitempty"`
	CompanyID   string     `json:"company_id,omitempty"`
	CompanyName string     `json:"company_name,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	SourceID    string     `json:"source_id,omitempty"`
	UpdatedBy   string     `json:"updated_by,omitempty"`
	LastContact *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RawContact is a potential (RAW) contact in the legacy store. RowIndex is its
// 1-based sheet position and is only stable until a row above it is deleted.
type RawContact struct {
	RowIndex int    `json:"row_index"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status"`
}

func (c *RawContact) RowPos() int     { return c.RowIndex }
func (c *RawContact) SetRowPos(i int) { c.RowIndex = i }

type Opportunity struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Amount            int64      `json:"amount,omitempty"` // in cents
	Currency          string     `json:"currency"`
	Stage             string     `json:"stage"`
	CompanyID         string     `json:"company_id,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	UpdatedBy         string     `json:"updated_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

// Link status constants.
const (
	LinkStatusActive  = "active"
	LinkStatusRemoved = "removed"
)

// OpportunityContact links a contact (official or still-RAW) to an opportunity.
// Identity is the (OpportunityID, ContactRef) pair; ContactRef is a CORE id or,
// for RAW contacts linked without promotion, a sheet coordinate reference.
// Name/Email snapshot what the opportunity needs even if the RAW row moves.
type OpportunityContact struct {
	OpportunityID string    `json:"opportunity_id"`
	ContactRef    string    `json:"contact_ref"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Status        string    `json:"status"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InteractionType constants.
const (
	InteractionMeeting = "meeting"
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMessage = "message"
	InteractionEvent   = "event"
)

// Interaction is an activity-log row in the legacy store.
type Interaction struct {
	RowIndex   int       `json:"row_index"`
	ContactRef string    `json:"contact_ref"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Notes      string    `json:"notes,omitempty"`
	Actor      string    `json:"actor,omitempty"`
}

func (i *Interaction) RowPos() int     { return i.RowIndex }
func (i *Interaction) SetRowPos(p int) { i.RowIndex = p }

// EventLog is a calendar-sourced or manually entered event row. Several legacy
// sub-tables (meetings, calls, demos) collapse into this one read model.
type EventLog struct {
	RowIndex   int       `json:"row_index"`
	Kind       string    `json:"kind"`
	ContactRef string    `json:"contact_ref,omitempty"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

func (e *EventLog) RowPos() int     { return e.RowIndex }
func (e *EventLog) SetRowPos(p int) { e.RowIndex = p }

type WeeklyReport struct {
	RowIndex    int       `json:"row_index"`
	Week        string    `json:"week"` // ISO week, e.g. "2026-W35"
	Author      string    `json:"author"`
	Summary     string    `json:"summary"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (w *WeeklyReport) RowPos() int     { return w.RowIndex }
func (w *WeeklyReport) SetRowPos(p int) { w.RowIndex = p }
