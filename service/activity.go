// ABOUTME: Activity service over the legacy-only event log and weekly reports
// ABOUTME: Several logical write tables share the one activity tab and read model
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/sheets"
	"github.com/harperreed/crmkit/writer"
)

// LegacyActivityColumns is the column layout of the activity tab. Manual
// interaction logs and calendar-sourced events all land here; the kind column
// tells them apart.
var LegacyActivityColumns = []string{
	"kind", "contact_ref", "subject", "occurred_at", "actor", "notes",
}

// LegacyReportColumns is the column layout of the weekly reports tab.
var LegacyReportColumns = []string{
	"week", "author", "summary", "submitted_at",
}

// ParseEventLog turns one activity row into the event read model.
func ParseEventLog(row []any, idx int) (models.EventLog, bool) {
	e := models.EventLog{
		Kind:       sheets.Str(row, 0),
		ContactRef: sheets.Str(row, 1),
		Subject:    sheets.Str(row, 2),
		OccurredAt: sheets.Time(row, 3),
		Actor:      sheets.Str(row, 4),
		Notes:      sheets.Str(row, 5),
	}
	if e.Kind == "" && e.Subject == "" {
		return models.EventLog{}, false
	}
	return e, true
}

// ParseWeeklyReport turns one reports row into the report read model.
func ParseWeeklyReport(row []any, idx int) (models.WeeklyReport, bool) {
	r := models.WeeklyReport{
		Week:        sheets.Str(row, 0),
		Author:      sheets.Str(row, 1),
		Summary:     sheets.Str(row, 2),
		SubmittedAt: sheets.Time(row, 3),
	}
	if r.Week == "" || r.Author == "" {
		return models.WeeklyReport{}, false
	}
	return r, true
}

type EventReads interface {
	Fetch(ctx context.Context) ([]models.EventLog, error)
}

type ReportReads interface {
	Fetch(ctx context.Context) ([]models.WeeklyReport, error)
}

// RowAppender appends one row to a legacy tab. The legacy scoped writer
// satisfies it.
type RowAppender interface {
	Append(ctx context.Context, row []any) error
}

// Activity serves the interaction/event log and weekly reports. Reads are
// legacy-only; writes go through per-table scoped writers that share the
// event-log cache key.
type Activity struct {
	events       EventReads
	reports      ReportReads
	interactions RowAppender
	eventLogs    map[string]RowAppender // kind -> appender
	reportLog    RowAppender
	cache        writer.Invalidator

	now func() time.Time
}

func NewActivity(events EventReads, reports ReportReads, interactions RowAppender, eventLogs map[string]RowAppender, reportLog RowAppender, cache writer.Invalidator) *Activity {
	return &Activity{
		events:       events,
		reports:      reports,
		interactions: interactions,
		eventLogs:    eventLogs,
		reportLog:    reportLog,
		cache:        cache,
		now:          time.Now,
	}
}

// ListEvents returns the event log, most recent first.
func (s *Activity) ListEvents(ctx context.Context) ([]models.EventLog, error) {
	events, err := s.events.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	return events, nil
}

// EventsForContact filters the event log to one contact reference.
func (s *Activity) EventsForContact(ctx context.Context, contactRef string) ([]models.EventLog, error) {
	if contactRef == "" {
		return nil, ErrInvalidInput
	}
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	matched := events[:0:0]
	for _, e := range events {
		if e.ContactRef == contactRef {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// interactionTypes is the set of kinds accepted on a manual interaction log.
var interactionTypes = map[string]bool{
	models.InteractionMeeting: true,
	models.InteractionCall:    true,
	models.InteractionEmail:   true,
	models.InteractionMessage: true,
	models.InteractionEvent:   true,
}

// LogInteraction records a manually entered interaction.
func (s *Activity) LogInteraction(ctx context.Context, i models.Interaction) error {
	if i.ContactRef == "" || i.Type == "" {
		return ErrInvalidInput
	}
	if !interactionTypes[i.Type] {
		return fmt.Errorf("%w: unknown interaction type %q", ErrInvalidInput, i.Type)
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = s.now()
	}
	row := []any{i.Type, i.ContactRef, "", i.Timestamp.Format(time.RFC3339), i.Actor, i.Notes}
	return s.interactions.Append(ctx, row)
}

// LogEvent records a calendar-sourced event. Kinds without a dedicated table
// fall back to the interactions log.
func (s *Activity) LogEvent(ctx context.Context, e models.EventLog) error {
	if e.Kind == "" {
		return ErrInvalidInput
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	appender := s.interactions
	if a, ok := s.eventLogs[e.Kind]; ok {
		appender = a
	}
	row := []any{e.Kind, e.ContactRef, e.Subject, e.OccurredAt.Format(time.RFC3339), e.Actor, e.Notes}
	return appender.Append(ctx, row)
}

// ListReports returns weekly reports, most recent first.
func (s *Activity) ListReports(ctx context.Context) ([]models.WeeklyReport, error) {
	reports, err := s.reports.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].SubmittedAt.After(reports[j].SubmittedAt)
	})
	return reports, nil
}

// ReportForWeek returns the report for one ISO week, or (nil, nil) when none
// was submitted. With multiple submissions the latest wins.
func (s *Activity) ReportForWeek(ctx context.Context, week string) (*models.WeeklyReport, error) {
	if week == "" {
		return nil, ErrInvalidInput
	}
	reports, err := s.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].Week == week {
			return &reports[i], nil
		}
	}
	return nil, nil
}

// SubmitReport appends a weekly report.
func (s *Activity) SubmitReport(ctx context.Context, r models.WeeklyReport) error {
	if r.Week == "" || r.Author == "" {
		return ErrInvalidInput
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	row := []any{r.Week, r.Author, r.Summary, r.SubmittedAt.Format(time.RFC3339)}
	return s.reportLog.Append(ctx, row)
}

func (s *Activity) InvalidateCache() {
	s.cache.Invalidate("eventLogs")
	s.cache.Invalidate("weeklyReports")
}
