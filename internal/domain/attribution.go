package domain

import (
	"errors"
	"time"
)

// ErrStoreNotSeeded is returned when enrichment is requested before the
// attribution store was loaded from a snapshot or refreshed at least once.
var ErrStoreNotSeeded = errors.New("attribution store has never been seeded")

// AttributionRecord maps a contact identity to the campaign-attribution
// tags captured when the contact first booked a call.
type AttributionRecord struct {
	Email      string
	Dimensions Dimensions
	CreatedAt  time.Time
}
