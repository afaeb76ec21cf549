package attribution

import (
	"context"
	"time"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

// UpdateFetcher retrieves attribution records captured after a given date.
// It is backed by the scheduling tool's invitee listing.
type UpdateFetcher interface {
	FetchUpdates(ctx context.Context, since time.Time) ([]domain.AttributionRecord, error)
}

// SnapshotRepository persists the store's contents so attribution survives
// process restarts.
type SnapshotRepository interface {
	// Load returns all persisted records and the freshness watermark. A
	// repository that was never written returns no records and a zero
	// watermark without error.
	Load(ctx context.Context) ([]domain.AttributionRecord, time.Time, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, records []domain.AttributionRecord, watermark time.Time) error
}
