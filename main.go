// ABOUTME: Entry point for the crmkit CLI
// ABOUTME: Routes subcommands to the cli package over the wired service graph
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/crmkit/cli"
)

const version = "0.2.0"

func main() {
	// Environment file is optional; real env vars win.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/crmkit/crm.db)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("crmkit version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]
	ctx := context.Background()

	// Auth doesn't need the stores.
	if command == "auth" {
		if err := cli.AuthCommand(ctx, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	app, err := cli.NewApp(ctx, getDatabasePath(*dbPath))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.Close()

	run := func(fn func(context.Context, *cli.App, []string) error) {
		if err := fn(ctx, app, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	switch command {
	// Contact commands
	case "add-contact":
		run(cli.AddContactCommand)
	case "list-contacts":
		run(cli.ListContactsCommand)
	case "show-contact":
		run(cli.ShowContactCommand)
	case "update-contact":
		run(cli.UpdateContactCommand)
	case "delete-contact":
		run(cli.DeleteContactCommand)

	// Company commands
	case "add-company":
		run(cli.AddCompanyCommand)
	case "list-companies":
		run(cli.ListCompaniesCommand)
	case "update-company":
		run(cli.UpdateCompanyCommand)
	case "delete-company":
		run(cli.DeleteCompanyCommand)

	// Opportunity commands
	case "add-opportunity":
		run(cli.AddOpportunityCommand)
	case "list-opportunities":
		run(cli.ListOpportunitiesCommand)
	case "show-opportunity":
		run(cli.ShowOpportunityCommand)
	case "update-opportunity":
		run(cli.UpdateOpportunityCommand)
	case "delete-opportunity":
		run(cli.DeleteOpportunityCommand)
	case "link-contact":
		run(cli.LinkContactCommand)
	case "unlink-contact":
		run(cli.UnlinkContactCommand)

	// Lead lifecycle commands
	case "add-lead":
		run(cli.AddLeadCommand)
	case "list-leads":
		run(cli.ListLeadsCommand)
	case "update-lead":
		run(cli.UpdateLeadCommand)
	case "delete-lead":
		run(cli.DeleteLeadCommand)
	case "promote-lead":
		run(cli.PromoteLeadCommand)
	case "file-lead":
		run(cli.FileLeadCommand)
	case "link-lead":
		run(cli.LinkLeadCommand)
	case "retry-pending":
		run(cli.RetryPendingCommand)

	// Activity commands
	case "log-interaction":
		run(cli.LogInteractionCommand)
	case "list-events":
		run(cli.ListEventsCommand)
	case "submit-report":
		run(cli.SubmitReportCommand)
	case "list-reports":
		run(cli.ListReportsCommand)

	case "flush-cache":
		run(cli.FlushCacheCommand)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(xdg.DataHome, "crmkit", "crm.db")
}

func printUsage() {
	fmt.Printf(`crmkit v%s - sales CRM over a relational store and a legacy spreadsheet

USAGE:
  crmkit [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/crmkit/crm.db)

ENVIRONMENT:
  CRM_SPREADSHEET_ID     Spreadsheet id of the legacy store (required)
  CRM_LEADS_SHEET_GID    Numeric sheet id of the leads tab (default: 0)
  GOOGLE_CLIENT_ID       OAuth client id (for 'auth')
  GOOGLE_CLIENT_SECRET   OAuth client secret (for 'auth')

SETUP:
  crmkit auth            Run the OAuth flow and save credentials

CONTACTS:
  crmkit add-contact --name <name> [--email --phone --department --company-id --notes --actor]
  crmkit list-contacts
  crmkit show-contact <id>
  crmkit update-contact [flags] <id>
  crmkit delete-contact <id>

COMPANIES:
  crmkit add-company --name <name> [--domain --type --industry --notes]
  crmkit list-companies
  crmkit update-company [flags] <id>
  crmkit delete-company <id>

OPPORTUNITIES:
  crmkit add-opportunity --title <title> [--company-id --amount --currency --stage --actor]
  crmkit list-opportunities
  crmkit show-opportunity <id>
  crmkit update-opportunity [flags] <id>
  crmkit delete-opportunity <id>
  crmkit link-contact --opportunity <id> --contact <id> [--actor]
  crmkit unlink-contact --opportunity <id> --contact <ref>

LEADS:
  crmkit add-lead [--name --email --phone --company --notes]
  crmkit list-leads [--status <status>]
  crmkit update-lead [flags] <row>
  crmkit delete-lead <row>
  crmkit promote-lead [flags] <row>   Promote a lead to an official contact
  crmkit file-lead [--actor] <row>    Archive a lead without promoting
  crmkit link-lead --opportunity <id> <row>
  crmkit retry-pending                Replay failed promotion status flags

ACTIVITY:
  crmkit log-interaction --contact <ref> [--type --notes --actor]
  crmkit list-events [--contact <ref>]
  crmkit submit-report --week <2026-W35> --author <name> [--summary]
  crmkit list-reports [--week <2026-W35>]

MAINTENANCE:
  crmkit flush-cache     Drop all cached reads

EXAMPLES:
  # Promote lead row 5, correcting the department
  crmkit promote-lead --department Sales --actor alice 5

  # Log a call against a contact
  crmkit log-interaction --contact C01HXY... --type call --notes "intro call"

`, version)
}
