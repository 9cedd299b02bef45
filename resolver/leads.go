// ABOUTME: Row layout and parser for the RAW leads tab
// ABOUTME: Leads stay legacy-only until promoted, so there is no dual source
package resolver

import (
	"github.com/harperreed/crmkit/models"
	"github.com/harperreed/crmkit/sheets"
)

// LegacyLeadColumns is the column layout of the leads tab. Status lives in the
// last column so lifecycle flag writes touch a single cell.
var LegacyLeadColumns = []string{
	"name", "email", "phone", "company", "notes", "status",
}

// ParseLead turns one leads row into a RawContact. The row index is assigned
// by the cached reader; blank rows are dropped.
func ParseLead(row []any, idx int) (models.RawContact, bool) {
	c := models.RawContact{
		Name:    sheets.Str(row, 0),
		Email:   sheets.Str(row, 1),
		Phone:   sheets.Str(row, 2),
		Company: sheets.Str(row, 3),
		Notes:   sheets.Str(row, 4),
		Status:  sheets.Str(row, 5),
	}
	if c.Name == "" && c.Email == "" {
		return models.RawContact{}, false
	}
	if c.Status == "" {
		c.Status = models.RawStatusPending
	}
	return c, true
}
