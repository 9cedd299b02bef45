// ABOUTME: Field normalization between the two backing store shapes
// ABOUTME: Maps relational snake_case and legacy column names onto canonical DTOs
package resolver

import (
	"strings"

	"github.com/harperreed/crmkit/models"
)

// pick returns the first non-empty value among the named fields. Callers list
// names in precedence order: canonical camelCase first, then legacy/alternate
// spellings, so a raw object carrying both resolves to the canonical one.
func pick(fields map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := fields[name]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// NormalizeContact maps a raw field bag from either store into the canonical
// contact DTO.
func NormalizeContact(fields map[string]any) models.Contact {
	return models.Contact{
		ID:          pick(fields, "id", "contactId", "contact_id"),
		Name:        pick(fields, "name", "fullName", "full_name"),
		Email:       pick(fields, "email", "emailAddress", "email_address"),
		Phone:       pick(fields, "phone", "phoneNumber", "phone_number"),
		Department:  pick(fields, "department", "dept"),
		CompanyID:   pick(fields, "companyId", "company_id"),
		CompanyName: pick(fields, "companyName", "company_name", "company"),
		Notes:       pick(fields, "notes", "memo"),
		SourceID:    pick(fields, "sourceId", "source_id"),
		UpdatedBy:   pick(fields, "updatedBy", "updated_by"),
	}
}

// NormalizeCompany maps a raw field bag from either store into the canonical
// company DTO shape (id handling is left to the caller, which knows whether
// the id is a uuid or a legacy coordinate).
func NormalizeCompany(fields map[string]any) models.Company {
	return models.Company{
		Name:        pick(fields, "name", "companyName", "company_name"),
		Domain:      pick(fields, "domain", "website"),
		CompanyType: pick(fields, "companyType", "company_type", "type"),
		Industry:    pick(fields, "industry"),
		Notes:       pick(fields, "notes", "memo"),
	}
}
