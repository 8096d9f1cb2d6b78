// Package leads owns the lead lifecycle between the CRM and the operator
// chat: deciding which converted leads have gone stale, remembering them for
// button callbacks, and writing the operator's decision back to the CRM.
package leads

import "time"

const (
	fallbackName     = "Unknown"
	phonePlaceholder = "N/A"
)

// Lead is a CRM lead reduced to what the operator needs to see. Read-only
// after construction.
type Lead struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
