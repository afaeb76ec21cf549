package source

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

// CRM tag ids marking the conversion a deal reached. These are fixed in the
// CRM workspace configuration.
const (
	TagVerbalAgreement = "33264189"
	TagPlacement       = "32600779"
)

// DealRow is one CRM deal from the default pipeline.
type DealRow struct {
	ID              string
	ContactEmail    string
	CreatedAt       time.Time
	DealStage       string
	VerbalAgreement bool
	TagIDs          []string
	OwnerID         string
}

// NormalizeDeals converts CRM deals into deal-tag events. A contact's deal
// relationship is singular: when the same email recurs, the earliest
// created deal wins. Each kept deal emits one event per conversion tag it
// carries, with the deal's stage flags riding along.
func NormalizeDeals(rows []DealRow, loc *time.Location, log *zap.Logger) []domain.Event {
	sorted := make([]DealRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	seen := make(map[string]bool, len(sorted))
	var events []domain.Event

	for _, row := range sorted {
		if row.ContactEmail != "" {
			if seen[row.ContactEmail] {
				continue
			}
			seen[row.ContactEmail] = true
		}

		base := domain.Event{
			Source:          domain.SourceDealTag,
			Email:           row.ContactEmail,
			Date:            timeutil.Day(row.CreatedAt, loc),
			OwnerID:         row.OwnerID,
			DealStage:       row.DealStage,
			VerbalAgreement: row.VerbalAgreement,
		}

		emitted := false
		for _, tag := range row.TagIDs {
			switch tag {
			case TagVerbalAgreement:
				ev := base
				ev.Stage = domain.StageVerbalAgreement
				events = append(events, ev)
				emitted = true
			case TagPlacement:
				ev := base
				ev.Stage = domain.StagePlacementScheduled
				events = append(events, ev)
				emitted = true
			}
		}

		if !emitted && row.DealStage == domain.DealStageClosedWon {
			// A closed-won deal with no conversion tag still matters to the
			// funnel integrity check; surface it at debug level.
			log.Debug("Deal closed won without conversion tags",
				zap.String("deal_id", row.ID),
				zap.String("email", row.ContactEmail))
		}
	}

	return events
}
