// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing official contacts
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/crmkit/models"
)

// AddContactCommand creates an official contact.
func AddContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	department := fs.String("department", "", "Department")
	companyID := fs.String("company-id", "", "Company id")
	notes := fs.String("notes", "", "Notes about the contact")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	id, err := app.Contacts.Create(ctx, models.Contact{
		Name:       *name,
		Email:      *email,
		Phone:      *phone,
		Department: *department,
		CompanyID:  *companyID,
		Notes:      *notes,
		UpdatedBy:  *actor,
	})
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", *name, id)
	return nil
}

// ListContactsCommand lists contacts from whichever store serves the read.
func ListContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	_ = fs.Parse(args)

	contacts, err := app.Contacts.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tDEPARTMENT")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.CompanyName, c.Department)
	}
	return w.Flush()
}

// ShowContactCommand prints one contact by id.
func ShowContactCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: show-contact <id>")
	}

	c, err := app.Contacts.GetByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to look up contact: %w", err)
	}
	if c == nil {
		fmt.Printf("Contact %s not found\n", args[0])
		return nil
	}

	fmt.Printf("%s\n", c.Name)
	fmt.Printf("  ID: %s\n", c.ID)
	if c.Email != "" {
		fmt.Printf("  Email: %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Printf("  Phone: %s\n", c.Phone)
	}
	if c.CompanyName != "" {
		fmt.Printf("  Company: %s\n", c.CompanyName)
	}
	if c.Department != "" {
		fmt.Printf("  Department: %s\n", c.Department)
	}
	if c.SourceID != "" {
		fmt.Printf("  Promoted from: %s\n", c.SourceID)
	}
	if c.Notes != "" {
		fmt.Printf("  Notes: %s\n", c.Notes)
	}
	return nil
}

// UpdateContactCommand applies a partial update; only provided flags change.
func UpdateContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	department := fs.String("department", "", "Department")
	notes := fs.String("notes", "", "Notes about the contact")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: update-contact [flags] <id> (flags must come before the id)")
	}
	id := fs.Arg(0)

	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			fields["name"] = *name
		case "email":
			fields["email"] = *email
		case "phone":
			fields["phone"] = *phone
		case "department":
			fields["department"] = *department
		case "notes":
			fields["notes"] = *notes
		case "actor":
			fields["updated_by"] = *actor
		}
	})

	if err := app.Contacts.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	fmt.Printf("✓ Contact updated: %s\n", id)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete-contact <id>")
	}
	if err := app.Contacts.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	fmt.Printf("✓ Contact deleted: %s\n", args[0])
	return nil
}
