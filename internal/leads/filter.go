package leads

import (
	"log/slog"
	"time"

	"leadwatch/internal/crm/bitrix"
)

// Bitrix reports DATE_CREATE as ISO 8601, usually with an explicit offset.
// Offset-naive layouts carry no zone, so time.Parse interprets them as UTC,
// which is the assumption the filter wants.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// SelectExpired returns the leads whose creation time is more than threshold
// before now, preserving input order. A record with a missing ID or an
// unparseable timestamp is logged and skipped without affecting the rest of
// the batch.
func SelectExpired(raw []bitrix.RawLead, now time.Time, threshold time.Duration, logger *slog.Logger) []Lead {
	var expired []Lead
	for _, r := range raw {
		if r.ID == "" {
			logger.Warn("skipping lead without ID", "name", r.Name)
			continue
		}

		created, err := parseCreatedAt(r.DateCreate)
		if err != nil {
			logger.Warn("skipping lead with unparseable timestamp",
				"lead_id", r.ID, "date_create", r.DateCreate, "error", err)
			continue
		}

		if now.Sub(created) > threshold {
			expired = append(expired, newLead(r, created))
		}
	}
	return expired
}

func newLead(r bitrix.RawLead, created time.Time) Lead {
	lead := Lead{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		CreatedAt: created.UTC(),
	}
	if lead.Name == "" {
		lead.Name = fallbackName
	}
	if lead.Phone == "" {
		lead.Phone = phonePlaceholder
	}
	return lead
}

func parseCreatedAt(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range createdAtLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			lastErr = err
			continue
		}
		return t, nil
	}
	return time.Time{}, lastErr
}
