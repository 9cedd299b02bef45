// ABOUTME: Stable id generation for official records
// ABOUTME: ULID-based so ids sort by creation time and never collide with row indices
package ids

import "github.com/oklog/ulid/v2"

// NewContactID mints an official contact id. The "C" prefix keeps contact ids
// recognizable in logs and the legacy sheet's audit columns; the ULID body
// encodes the creation timestamp.
func NewContactID() string {
	return "C" + ulid.Make().String()
}

// NewIntentID mints a promotion-intent journal id.
func NewIntentID() string {
	return ulid.Make().String()
}
