// ABOUTME: Opportunity CLI commands including contact link management
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/crmkit/models"
)

// AddOpportunityCommand creates an opportunity.
func AddOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-opportunity", flag.ExitOnError)
	title := fs.String("title", "", "Opportunity title (required)")
	companyID := fs.String("company-id", "", "Company id")
	amount := fs.Int64("amount", 0, "Amount in cents")
	currency := fs.String("currency", "", "Currency code (default: USD)")
	stage := fs.String("stage", "", "Stage (default: prospecting)")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	id, err := app.Opportunities.Create(ctx, models.Opportunity{
		Title:     *title,
		CompanyID: *companyID,
		Amount:    *amount,
		Currency:  *currency,
		Stage:     *stage,
		UpdatedBy: *actor,
	})
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	fmt.Printf("✓ Opportunity created: %s (ID: %s)\n", *title, id)
	return nil
}

// ListOpportunitiesCommand lists opportunities, most recently updated first.
func ListOpportunitiesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-opportunities", flag.ExitOnError)
	_ = fs.Parse(args)

	opps, err := app.Opportunities.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list opportunities: %w", err)
	}
	if len(opps) == 0 {
		fmt.Println("No opportunities found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTAGE\tAMOUNT\tCURRENCY")
	for _, o := range opps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Title, o.Stage, o.Amount, o.Currency)
	}
	return w.Flush()
}

// UpdateOpportunityCommand applies a partial update.
func UpdateOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-opportunity", flag.ExitOnError)
	title := fs.String("title", "", "Opportunity title")
	amount := fs.Int64("amount", 0, "Amount in cents")
	stage := fs.String("stage", "", "Stage")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: update-opportunity [flags] <id> (flags must come before the id)")
	}
	id := fs.Arg(0)

	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			fields["title"] = *title
		case "amount":
			fields["amount"] = *amount
		case "stage":
			fields["stage"] = *stage
		case "actor":
			fields["updated_by"] = *actor
		}
	})

	if err := app.Opportunities.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	fmt.Printf("✓ Opportunity updated: %s\n", id)
	return nil
}

// DeleteOpportunityCommand deletes an opportunity and its contact links.
func DeleteOpportunityCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete-opportunity <id>")
	}
	if err := app.Opportunities.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	fmt.Printf("✓ Opportunity deleted: %s\n", args[0])
	return nil
}

// LinkContactCommand attaches an official contact to an opportunity.
func LinkContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("link-contact", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity id (required)")
	contactID := fs.String("contact", "", "Contact id (required)")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if *oppID == "" || *contactID == "" {
		return fmt.Errorf("--opportunity and --contact are required")
	}

	contact, err := app.Contacts.GetByID(ctx, *contactID)
	if err != nil {
		return fmt.Errorf("failed to look up contact: %w", err)
	}
	if contact == nil {
		return fmt.Errorf("contact %s not found", *contactID)
	}

	err = app.Opportunities.AddContact(ctx, models.OpportunityContact{
		OpportunityID: *oppID,
		ContactRef:    contact.ID,
		Name:          contact.Name,
		Email:         contact.Email,
		UpdatedBy:     *actor,
	})
	if err != nil {
		return fmt.Errorf("failed to link contact: %w", err)
	}
	fmt.Printf("✓ Linked %s to opportunity %s\n", contact.Name, *oppID)
	return nil
}

// UnlinkContactCommand removes a contact link from an opportunity.
func UnlinkContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("unlink-contact", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity id (required)")
	ref := fs.String("contact", "", "Contact id or lead reference (required)")
	_ = fs.Parse(args)

	if *oppID == "" || *ref == "" {
		return fmt.Errorf("--opportunity and --contact are required")
	}
	if err := app.Opportunities.RemoveContact(ctx, *oppID, *ref); err != nil {
		return fmt.Errorf("failed to unlink contact: %w", err)
	}
	fmt.Printf("✓ Unlinked %s from opportunity %s\n", *ref, *oppID)
	return nil
}

// ShowOpportunityCommand prints one opportunity with its linked contacts.
func ShowOpportunityCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: show-opportunity <id>")
	}

	o, err := app.Opportunities.GetByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to look up opportunity: %w", err)
	}

	fmt.Printf("%s\n", o.Title)
	fmt.Printf("  ID: %s\n", o.ID)
	fmt.Printf("  Stage: %s\n", o.Stage)
	if o.Amount != 0 {
		fmt.Printf("  Amount: %d %s\n", o.Amount, o.Currency)
	}

	links, err := app.Opportunities.Contacts(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list linked contacts: %w", err)
	}
	if len(links) > 0 {
		fmt.Println("  Contacts:")
		for _, l := range links {
			fmt.Printf("    %s (%s) [%s]\n", l.Name, l.ContactRef, l.Status)
		}
	}
	return nil
}
