package source

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

// SessionRow is one landing-page session row from the analytics back end.
// Dimensions arrive source-native from the session's manual tagging.
type SessionRow struct {
	Date     string // YYYYMMDD, the analytics API date format
	Sessions string
	Campaign string
	Source   string
	Medium   string
	Content  string
	Term     string
}

// NormalizeSessions converts analytics rows into pageview events. Numeric
// coercion is lenient: an unparsable session count becomes a missing value
// and the row is kept for its dimension presence.
func NormalizeSessions(rows []SessionRow, loc *time.Location, log *zap.Logger) []domain.Event {
	events := make([]domain.Event, 0, len(rows))

	for _, row := range rows {
		date, err := time.ParseInLocation("20060102", row.Date, loc)
		if err != nil {
			log.Warn("Dropping session row with unparsable date",
				zap.String("date", row.Date))
			continue
		}

		sessions, err := strconv.ParseInt(row.Sessions, 10, 64)
		if err != nil {
			sessions = 0
		}

		events = append(events, domain.Event{
			Source:   domain.SourcePageview,
			Stage:    domain.StagePageview,
			Date:     timeutil.Day(date, loc),
			Sessions: sessions,
			Dimensions: domain.Dimensions{
				Campaign: row.Campaign,
				Source:   row.Source,
				Medium:   row.Medium,
				Content:  row.Content,
				Term:     row.Term,
			}.FillUnknown(),
		})
	}

	return events
}
