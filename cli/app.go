// ABOUTME: Wires the stores, cache, readers, writers and services into one app
// ABOUTME: CLI commands receive the App instead of constructing plumbing themselves
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"

	"github.com/harperreed/crmkit/bridge"
	"github.com/harperreed/crmkit/cache"
	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/resolver"
	"github.com/harperreed/crmkit/service"
	"github.com/harperreed/crmkit/sheets"
	"github.com/harperreed/crmkit/writer"
)

// Legacy spreadsheet tab names. Single spreadsheet, one tab per logical table,
// except activity which absorbs all event sub-tables.
const (
	leadsTab     = "leads"
	contactsTab  = "contacts"
	companiesTab = "companies"
	activityTab  = "activity"
	reportsTab   = "weekly_reports"
)

// App holds the wired service graph. One cache store backs every reader and
// writer so invalidation is coherent across them.
type App struct {
	DB      *sql.DB
	Cache   *cache.Store
	Journal *bridge.IntentJournal

	Contacts      *service.Contacts
	Companies     *service.Companies
	Opportunities *service.Opportunities
	Activity      *service.Activity
	Leads         *service.Leads
	Bridge        *bridge.Bridge
}

// NewApp opens both stores and wires the full graph. The spreadsheet id comes
// from CRM_SPREADSHEET_ID; OAuth credentials must already be saved (see the
// auth command).
func NewApp(ctx context.Context, dbPath string) (*App, error) {
	spreadsheetID := os.Getenv("CRM_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("CRM_SPREADSHEET_ID is not set")
	}

	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	token, err := sheets.LoadToken()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("no saved Google credentials (run 'crmkit auth' first): %w", err)
	}
	sheet, err := sheets.NewClient(ctx, token, spreadsheetID)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	journal, err := bridge.OpenIntentJournal(journalPath())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open intent journal: %w", err)
	}

	store := cache.New(cache.DefaultTTL)

	// Readers. Each legacy tab keeps a header row, so data ranges start at
	// row 2 and parsed row positions are offset accordingly.
	leadsReader := reader.New(store, "leads", tabSource(sheet, leadsTab, "A2:F"), parseLeadRow)
	legacyContacts := reader.New(store, "contacts", tabSource(sheet, contactsTab, "A2:I"), resolver.ParseLegacyContact)
	legacyCompanies := reader.New(store, "companies", tabSource(sheet, companiesTab, "A2:F"), resolver.ParseLegacyCompany)
	events := reader.New(store, "eventLogs", tabSource(sheet, activityTab, "A2:F"), service.ParseEventLog)
	reports := reader.New(store, "weeklyReports", tabSource(sheet, reportsTab, "A2:D"), service.ParseWeeklyReport)

	// Relational repositories and scoped writers.
	contactsRepo := db.NewContactsRepo(database)
	companiesRepo := db.NewCompaniesRepo(database)
	oppsRepo := db.NewOpportunitiesRepo(database)
	linksRepo := db.NewLinksRepo(database)

	contactsWriter := writer.NewRelational[models.Contact]("contacts", contactsRepo, store)
	companiesWriter := writer.NewRelational[models.Company]("companies", companiesRepo, store)
	oppsWriter := writer.NewRelational[models.Opportunity]("opportunities", oppsRepo, store)
	linksWriter := writer.NewLinks(linksRepo, store)

	leadsWriter := writer.NewLegacy(writer.LegacyConfig{
		Table:   "leads",
		Tab:     leadsTab,
		SheetID: leadsSheetGID(),
		Columns: resolver.LegacyLeadColumns,
	}, sheet, store)
	interactionsWriter := writer.NewLegacy(writer.LegacyConfig{
		Table:   "interactions",
		Tab:     activityTab,
		Columns: service.LegacyActivityColumns,
	}, sheet, store)
	eventWriters := map[string]service.RowAppender{
		models.InteractionMeeting: writer.NewLegacy(writer.LegacyConfig{
			Table: "events_meeting", Tab: activityTab, Columns: service.LegacyActivityColumns,
		}, sheet, store),
		models.InteractionCall: writer.NewLegacy(writer.LegacyConfig{
			Table: "events_call", Tab: activityTab, Columns: service.LegacyActivityColumns,
		}, sheet, store),
		models.InteractionEvent: writer.NewLegacy(writer.LegacyConfig{
			Table: "events_demo", Tab: activityTab, Columns: service.LegacyActivityColumns,
		}, sheet, store),
	}
	reportsWriter := writer.NewLegacy(writer.LegacyConfig{
		Table:   "weekly_reports",
		Tab:     reportsTab,
		Columns: service.LegacyReportColumns,
	}, sheet, store)

	// Dual-source resolvers, services, bridge.
	contactReads := resolver.NewContacts(contactsRepo, legacyContacts, companiesRepo)
	companyReads := resolver.NewCompanies(companiesRepo, legacyCompanies)

	app := &App{
		DB:            database,
		Cache:         store,
		Journal:       journal,
		Contacts:      service.NewContacts(contactReads, contactsWriter, store),
		Companies:     service.NewCompanies(companyReads, companiesWriter, store),
		Opportunities: service.NewOpportunities(oppsRepo, oppsWriter, linksRepo, linksWriter, store),
		Activity:      service.NewActivity(events, reports, interactionsWriter, eventWriters, reportsWriter, store),
		Leads:         service.NewLeads(leadsReader, leadsWriter, store),
		Bridge:        bridge.New(leadsReader, leadsWriter, contactsWriter, linksWriter, journal).WithContactLookup(contactsRepo),
	}
	return app, nil
}

func (a *App) Close() {
	if a.Journal != nil {
		_ = a.Journal.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func tabSource(sheet *sheets.Client, tab, dataRange string) reader.Source {
	spec := fmt.Sprintf("%s!%s", tab, dataRange)
	return reader.SourceFunc(func(ctx context.Context) ([][]any, error) {
		return sheet.ReadRange(ctx, spec)
	})
}

// parseLeadRow offsets the parsed position past the header row so RowIndex is
// the actual 1-based sheet row.
func parseLeadRow(row []any, idx int) (models.RawContact, bool) {
	c, ok := resolver.ParseLead(row, idx)
	if ok {
		c.RowIndex = idx + 1
	}
	return c, ok
}

func journalPath() string {
	return filepath.Join(xdg.DataHome, "crmkit", "intents")
}

func leadsSheetGID() int64 {
	if v := os.Getenv("CRM_LEADS_SHEET_GID"); v != "" {
		if gid, err := strconv.ParseInt(v, 10, 64); err == nil {
			return gid
		}
	}
	return 0
}
