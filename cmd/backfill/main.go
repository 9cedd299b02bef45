// ABOUTME: Backfill utility copying legacy spreadsheet rows into the relational store
// ABOUTME: Idempotent: rows already backfilled (matched by source) are skipped
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/crmkit/cache"
	"github.com/harperreed/crmkit/db"
	"github.com/harperreed/crmkit/ids"
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/reader"
	"github.com/harperreed/crmkit/resolver"
	"github.com/harperreed/crmkit/sheets"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", "", "Path to database file (default: ~/.local/share/crmkit/crm.db)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create a database backup before backfilling")
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = filepath.Join(xdg.DataHome, "crmkit", "crm.db")
	}

	if err := backfill(context.Background(), path, *dryRun, *backup); err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	log.Println("Backfill completed successfully")
}

func backfill(ctx context.Context, dbPath string, dryRun, createBackup bool) error {
	spreadsheetID := os.Getenv("CRM_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return fmt.Errorf("CRM_SPREADSHEET_ID is not set")
	}

	if createBackup && !dryRun {
		if _, err := os.Stat(dbPath); err == nil {
			backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
			log.Printf("Creating backup: %s", backupPath)

			input, err := os.ReadFile(dbPath)
			if err != nil {
				return fmt.Errorf("failed to read database: %w", err)
			}
			if err := os.WriteFile(backupPath, input, 0644); err != nil {
				return fmt.Errorf("failed to create backup: %w", err)
			}
		}
	}

	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	token, err := sheets.LoadToken()
	if err != nil {
		return fmt.Errorf("no saved Google credentials (run 'crmkit auth' first): %w", err)
	}
	sheet, err := sheets.NewClient(ctx, token, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	store := cache.New(cache.DefaultTTL)

	companiesDone, err := backfillCompanies(ctx, database, sheet, store, dryRun)
	if err != nil {
		return err
	}
	contactsDone, err := backfillContacts(ctx, database, sheet, store, dryRun)
	if err != nil {
		return err
	}

	log.Printf("Backfilled %d companies, %d contacts", companiesDone, contactsDone)
	return nil
}

func backfillCompanies(ctx context.Context, database *sql.DB, sheet *sheets.Client, store *cache.Store, dryRun bool) (int, error) {
	legacy := reader.New(store, "companies", reader.SourceFunc(func(ctx context.Context) ([][]any, error) {
		return sheet.ReadRange(ctx, "companies!A2:F")
	}), resolver.ParseLegacyCompany)

	companies, err := legacy.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy companies: %w", err)
	}

	repo := db.NewCompaniesRepo(database)
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list relational companies: %w", err)
	}
	byName := map[string]bool{}
	for _, c := range existing {
		byName[c.Name] = true
	}

	done := 0
	for _, c := range companies {
		if byName[c.Name] {
			continue
		}
		if dryRun {
			log.Printf("[dry-run] would backfill company %q", c.Name)
			done++
			continue
		}
		if _, err := repo.Insert(ctx, c); err != nil {
			return done, fmt.Errorf("failed to insert company %q: %w", c.Name, err)
		}
		done++
	}
	return done, nil
}

func backfillContacts(ctx context.Context, database *sql.DB, sheet *sheets.Client, store *cache.Store, dryRun bool) (int, error) {
	legacy := reader.New(store, "contacts", reader.SourceFunc(func(ctx context.Context) ([][]any, error) {
		return sheet.ReadRange(ctx, "contacts!A2:I")
	}), resolver.ParseLegacyContact)

	contacts, err := legacy.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy contacts: %w", err)
	}

	repo := db.NewContactsRepo(database)
	done := 0
	for _, c := range contacts {
		if already, err := alreadyBackfilled(ctx, repo, c); err != nil {
			return done, err
		} else if already {
			continue
		}

		if c.ID == "" {
			c.ID = ids.NewContactID()
		}
		if dryRun {
			log.Printf("[dry-run] would backfill contact %q as %s", c.Name, c.ID)
			done++
			continue
		}
		if _, err := repo.Insert(ctx, c); err != nil {
			return done, fmt.Errorf("failed to insert contact %q: %w", c.Name, err)
		}
		done++
	}
	return done, nil
}

func alreadyBackfilled(ctx context.Context, repo *db.ContactsRepo, c models.Contact) (bool, error) {
	if c.ID != "" {
		if existing, err := repo.Get(ctx, c.ID); err == nil && existing != nil {
			return true, nil
		} else if err != nil && !errors.Is(err, db.ErrNotFound) {
			return false, fmt.Errorf("failed to check contact %q: %w", c.ID, err)
		}
	}
	if c.SourceID != "" {
		if existing, err := repo.GetBySourceID(ctx, c.SourceID); err == nil && existing != nil {
			return true, nil
		} else if err != nil && !errors.Is(err, db.ErrNotFound) {
			return false, fmt.Errorf("failed to check source %q: %w", c.SourceID, err)
		}
	}
	return false, nil
}
