// ABOUTME: Activity CLI commands: interaction log, events and weekly reports
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harperreed/crmkit/models"
)

// LogInteractionCommand records a manually entered interaction.
func LogInteractionCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("log-interaction", flag.ExitOnError)
	contact := fs.String("contact", "", "Contact id or lead reference (required)")
	kind := fs.String("type", models.InteractionCall, "Interaction type (meeting, call, email, message)")
	notes := fs.String("notes", "", "Notes")
	actor := fs.String("actor", "", "Acting user")
	_ = fs.Parse(args)

	if *contact == "" {
		return fmt.Errorf("--contact is required")
	}

	err := app.Activity.LogInteraction(ctx, models.Interaction{
		ContactRef: *contact,
		Type:       *kind,
		Notes:      *notes,
		Actor:      *actor,
	})
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	fmt.Printf("✓ Interaction logged: %s with %s\n", *kind, *contact)
	return nil
}

// ListEventsCommand prints the event log, most recent first.
func ListEventsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-events", flag.ExitOnError)
	contact := fs.String("contact", "", "Filter by contact id or lead reference")
	_ = fs.Parse(args)

	var (
		events []models.EventLog
		err    error
	)
	if *contact != "" {
		events, err = app.Activity.EventsForContact(ctx, *contact)
	} else {
		events, err = app.Activity.ListEvents(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tCONTACT\tSUBJECT\tACTOR")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.OccurredAt.Format(time.RFC3339), e.Kind, e.ContactRef, e.Subject, e.Actor)
	}
	return w.Flush()
}

// SubmitReportCommand appends a weekly report.
func SubmitReportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("submit-report", flag.ExitOnError)
	week := fs.String("week", "", "ISO week, e.g. 2026-W35 (required)")
	author := fs.String("author", "", "Report author (required)")
	summary := fs.String("summary", "", "Report summary")
	_ = fs.Parse(args)

	if *week == "" || *author == "" {
		return fmt.Errorf("--week and --author are required")
	}

	err := app.Activity.SubmitReport(ctx, models.WeeklyReport{
		Week:    *week,
		Author:  *author,
		Summary: *summary,
	})
	if err != nil {
		return fmt.Errorf("failed to submit report: %w", err)
	}
	fmt.Printf("✓ Report submitted for %s\n", *week)
	return nil
}

// ListReportsCommand prints weekly reports, most recent first, or a single
// week's report with --week.
func ListReportsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-reports", flag.ExitOnError)
	week := fs.String("week", "", "Show only this ISO week, e.g. 2026-W35")
	_ = fs.Parse(args)

	if *week != "" {
		r, err := app.Activity.ReportForWeek(ctx, *week)
		if err != nil {
			return fmt.Errorf("failed to look up report: %w", err)
		}
		if r == nil {
			fmt.Printf("No report for %s\n", *week)
			return nil
		}
		fmt.Printf("%s by %s (%s)\n%s\n", r.Week, r.Author, r.SubmittedAt.Format("2006-01-02"), r.Summary)
		return nil
	}

	reports, err := app.Activity.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "WEEK\tAUTHOR\tSUBMITTED\tSUMMARY")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.Week, r.Author, r.SubmittedAt.Format("2006-01-02"), r.Summary)
	}
	return w.Flush()
}

// FlushCacheCommand empties the read cache.
func FlushCacheCommand(ctx context.Context, app *App, args []string) error {
	app.Cache.Flush()
	fmt.Println("✓ Cache flushed")
	return nil
}
