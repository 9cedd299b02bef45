// ABOUTME: Company CLI commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/crmkit/models"
)

// AddCompanyCommand creates a company.
func AddCompanyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-company", flag.ExitOnError)
	name := fs.String("name", "", "Company name (required)")
	domain := fs.String("domain", "", "Company domain (e.g., acme.com)")
	companyType := fs.String("type", "", "Company type (e.g., prospect, customer, partner)")
	industry := fs.String("industry", "", "Industry")
	notes := fs.String("notes", "", "Notes about the company")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	id, err := app.Companies.Create(ctx, models.Company{
		Name:        *name,
		Domain:      *domain,
		CompanyType: *companyType,
		Industry:    *industry,
		Notes:       *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	fmt.Printf("✓ Company created: %s (ID: %s)\n", *name, id)
	return nil
}

// ListCompaniesCommand lists companies.
func ListCompaniesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-companies", flag.ExitOnError)
	_ = fs.Parse(args)

	companies, err := app.Companies.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	if len(companies) == 0 {
		fmt.Println("No companies found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tTYPE\tINDUSTRY")
	for _, c := range companies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Domain, c.CompanyType, c.Industry)
	}
	return w.Flush()
}

// UpdateCompanyCommand applies a partial update to a company.
func UpdateCompanyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-company", flag.ExitOnError)
	name := fs.String("name", "", "Company name")
	domain := fs.String("domain", "", "Company domain")
	companyType := fs.String("type", "", "Company type")
	industry := fs.String("industry", "", "Industry")
	notes := fs.String("notes", "", "Notes about the company")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: update-company [flags] <id> (flags must come before the id)")
	}
	id := fs.Arg(0)

	fields := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			fields["name"] = *name
		case "domain":
			fields["domain"] = *domain
		case "type":
			fields["company_type"] = *companyType
		case "industry":
			fields["industry"] = *industry
		case "notes":
			fields["notes"] = *notes
		}
	})

	if err := app.Companies.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	fmt.Printf("✓ Company updated: %s\n", id)
	return nil
}

// DeleteCompanyCommand deletes a company.
func DeleteCompanyCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete-company <id>")
	}
	if err := app.Companies.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	fmt.Printf("✓ Company deleted: %s\n", args[0])
	return nil
}
