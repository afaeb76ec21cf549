package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

// MeetingRow is one first-call meeting from the CRM, with the contact
// email already resolved through the meeting's contact association.
type MeetingRow struct {
	ID           string
	ContactEmail string
	CreatedAt    time.Time
	OwnerID      string
}

// NormalizeMeetings converts meeting rows into first-call events. The
// meeting id identifies the canonical record: repeats across incremental
// fetches keep the first occurrence.
func NormalizeMeetings(rows []MeetingRow, loc *time.Location, log *zap.Logger) []domain.Event {
	seen := make(map[string]bool, len(rows))
	events := make([]domain.Event, 0, len(rows))

	for _, row := range rows {
		if row.ID == "" {
			log.Warn("Dropping meeting row without id",
				zap.String("email", row.ContactEmail))
			continue
		}
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true

		events = append(events, domain.Event{
			Source:  domain.SourceMeeting,
			Email:   row.ContactEmail,
			Date:    timeutil.Day(row.CreatedAt, loc),
			Stage:   domain.StageFirstCall,
			OwnerID: row.OwnerID,
		})
	}

	return events
}
