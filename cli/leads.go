// ABOUTME: Lead CLI commands covering the RAW-row lifecycle
// ABOUTME: upgrade promotes to an official contact, file archives, link attaches
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/harperreed/crmkit/bridge"
	"github.com/harperreed/crmkit/models"
)

// AddLeadCommand appends a new RAW row.
func AddLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-lead", flag.ExitOnError)
	name := fs.String("name", "", "Lead name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	notes := fs.String("notes", "", "Notes about the lead")
	_ = fs.Parse(args)

	err := app.Leads.Add(ctx, models.RawContact{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Company: *company,
		Notes:   *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to add lead: %w", err)
	}
	fmt.Printf("✓ Lead added: %s\n", *name)
	return nil
}

// ListLeadsCommand lists RAW rows in sheet order.
func ListLeadsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-leads", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status (Pending, Promoted, Archived, Linked)")
	_ = fs.Parse(args)

	leads, err := app.Leads.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tNAME\tEMAIL\tCOMPANY\tSTATUS")
	for _, l := range leads {
		if *status != "" && l.Status != *status {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.RowIndex, l.Name, l.Email, l.Company, l.Status)
	}
	return w.Flush()
}

// UpdateLeadCommand applies a partial update to a RAW row.
func UpdateLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-lead", flag.ExitOnError)
	name := fs.String("name", "", "Lead name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	notes := fs.String("notes", "", "Notes about the lead")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: update-lead [flags] <row> (flags must come before the row)")
	}
	row, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid row number %q", fs.Arg(0))
	}

	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			fields["name"] = *name
		case "email":
			fields["email"] = *email
		case "phone":
			fields["phone"] = *phone
		case "company":
			fields["company"] = *company
		case "notes":
			fields["notes"] = *notes
		}
	})

	if err := app.Leads.Update(ctx, row, fields); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	fmt.Printf("✓ Lead updated: row %d\n", row)
	return nil
}

// DeleteLeadCommand removes a RAW row entirely. Rows below it shift up.
func DeleteLeadCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete-lead <row>")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid row number %q", args[0])
	}
	if err := app.Leads.Delete(ctx, row); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	fmt.Printf("✓ Lead deleted: row %d\n", row)
	return nil
}

// PromoteLeadCommand upgrades a RAW row into an official contact.
func PromoteLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("promote-lead", flag.ExitOnError)
	name := fs.String("name", "", "Override the contact name")
	email := fs.String("email", "", "Override the email address")
	phone := fs.String("phone", "", "Override the phone number")
	department := fs.String("department", "", "Department on the new contact")
	companyID := fs.String("company-id", "", "Company id on the new contact")
	actor := fs.String("actor", "", "Acting user")
	force := fs.Bool("force", false, "Promote even if the row is already promoted")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: promote-lead [flags] <row> (flags must come before the row)")
	}
	row, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid row number %q", fs.Arg(0))
	}

	overrides := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			overrides["name"] = *name
		case "email":
			overrides["email"] = *email
		case "phone":
			overrides["phone"] = *phone
		case "department":
			overrides["department"] = *department
		case "company-id":
			overrides["company_id"] = *companyID
		}
	})

	id, err := app.Bridge.Upgrade(ctx, bridge.UpgradeRequest{
		RowIndex:       row,
		Overrides:      overrides,
		Actor:          *actor,
		AllowRepromote: *force,
	})
	if err != nil {
		return fmt.Errorf("failed to promote lead: %w", err)
	}
	fmt.Printf("✓ Lead promoted: row %d → contact %s\n", row, id)
	return nil
}

// FileLeadCommand archives a RAW row.
func FileLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("file-lead", flag.ExitOnError)
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: file-lead [flags] <row>")
	}
	row, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid row number %q", fs.Arg(0))
	}

	if err := app.Bridge.File(ctx, row, *actor); err != nil {
		return fmt.Errorf("failed to file lead: %w", err)
	}
	fmt.Printf("✓ Lead filed: row %d\n", row)
	return nil
}

// LinkLeadCommand attaches an unpromoted RAW row to an opportunity.
func LinkLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("link-lead", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity id (required)")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if *oppID == "" || fs.NArg() == 0 {
		return fmt.Errorf("usage: link-lead --opportunity <id> <row>")
	}
	row, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid row number %q", fs.Arg(0))
	}

	if err := app.Bridge.Link(ctx, row, *oppID, *actor); err != nil {
		return fmt.Errorf("failed to link lead: %w", err)
	}
	fmt.Printf("✓ Lead linked: row %d → opportunity %s\n", row, *oppID)
	return nil
}

// RetryPendingCommand replays promotion flag writes that previously failed.
func RetryPendingCommand(ctx context.Context, app *App, args []string) error {
	if err := app.Bridge.RetryPending(ctx); err != nil {
		return fmt.Errorf("retry left pending intents: %w", err)
	}
	fmt.Println("✓ Pending promotion flags replayed")
	return nil
}
