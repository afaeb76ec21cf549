package attribution

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

// Store is the process-wide attribution side table: contact email →
// campaign dimensions, plus the freshness watermark gating refreshes.
// Mutation is append-and-reconcile only; existing keys are replaced solely
// when a newer record supersedes them.
type Store struct {
	fetcher   UpdateFetcher
	snapshots SnapshotRepository
	timeout   time.Duration
	log       *zap.Logger

	mu                   sync.Mutex
	records              map[string]domain.AttributionRecord
	lastRefreshedThrough time.Time
	seeded               bool
}

// NewStore creates an empty store. Call LoadSnapshot before first use.
func NewStore(fetcher UpdateFetcher, snapshots SnapshotRepository, refreshTimeout time.Duration, log *zap.Logger) *Store {
	return &Store{
		fetcher:   fetcher,
		snapshots: snapshots,
		timeout:   refreshTimeout,
		log:       log,
		records:   make(map[string]domain.AttributionRecord),
	}
}

// LoadSnapshot seeds the store from the persisted snapshot. An empty
// repository leaves the store unseeded; that is not an error at startup,
// but enrichment will fail until a refresh succeeds.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	records, watermark, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range reduceBatch(records) {
		s.mergeLocked(rec)
	}
	if watermark.After(s.lastRefreshedThrough) {
		s.lastRefreshedThrough = watermark
	}
	if len(records) > 0 || !watermark.IsZero() {
		s.seeded = true
	}

	s.log.Info("Attribution snapshot loaded",
		zap.Int("records", len(records)),
		zap.Time("last_refreshed_through", watermark))
	return nil
}

// Seeded reports whether the store holds usable attribution data.
func (s *Store) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeded
}

// Watermark returns the date through which the store is known to be up to
// date.
func (s *Store) Watermark() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefreshedThrough
}

// Len returns the number of known contacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Enrich populates event dimensions from the side table. Events carrying
// a contact identity newer than the watermark trigger a bounded refresh
// first; refresh failure degrades to stale data. Events without a contact
// keep their source-native dimensions. A contact with no record resolves
// to the "unknown" placeholder tuple so grouping never sees an absent
// dimension.
func (s *Store) Enrich(ctx context.Context, events []domain.Event) ([]domain.Event, error) {
	var latest time.Time
	hasContacts := false
	for _, ev := range events {
		if !ev.HasContact() {
			continue
		}
		hasContacts = true
		if ev.Date.After(latest) {
			latest = ev.Date
		}
	}

	s.refresh(ctx, latest)

	s.mu.Lock()
	defer s.mu.Unlock()

	if hasContacts && !s.seeded {
		return nil, domain.ErrStoreNotSeeded
	}

	enriched := make([]domain.Event, len(events))
	for i, ev := range events {
		if !ev.HasContact() {
			enriched[i] = ev
			continue
		}
		if rec, ok := s.records[ev.Email]; ok {
			ev.Dimensions = rec.Dimensions.FillUnknown()
		} else {
			ev.Dimensions = domain.Unknown()
		}
		enriched[i] = ev
	}

	return enriched, nil
}

// refresh fetches attribution updates for the open interval
// (watermark, latest] when latest exceeds the watermark. The whole
// read-modify-write runs under the store lock: two concurrent aggregations
// must not both observe staleness and double-fetch.
func (s *Store) refresh(ctx context.Context, latest time.Time) {
	if latest.IsZero() || s.fetcher == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !latest.After(s.lastRefreshedThrough) {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	since := s.lastRefreshedThrough
	updates, err := s.fetcher.FetchUpdates(fetchCtx, since)
	if err != nil {
		// Stale-but-available beats unavailable: keep serving what we have.
		s.log.Warn("Attribution refresh failed, serving stale data",
			zap.Time("last_refreshed_through", since),
			zap.Time("needed_through", latest),
			zap.Error(err))
		return
	}

	for _, rec := range reduceBatch(updates) {
		s.mergeLocked(rec)
	}
	s.lastRefreshedThrough = latest
	s.seeded = true

	s.log.Info("Attribution store refreshed",
		zap.Int("updates", len(updates)),
		zap.Time("last_refreshed_through", latest))

	s.saveLocked(ctx)
}

// Merge reconciles a batch of records into the store outside the refresh
// path (e.g. backfills). Most recent record per contact wins.
func (s *Store) Merge(records []domain.AttributionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range reduceBatch(records) {
		s.mergeLocked(rec)
	}
	if len(records) > 0 {
		s.seeded = true
	}
}

// reduceBatch collapses a batch to one record per contact before it meets
// the store. Within a batch, fetch order is meaningful: a later entry wins
// a capture-date tie, as an upstream export lists revisions last.
func reduceBatch(records []domain.AttributionRecord) []domain.AttributionRecord {
	latest := make(map[string]int, len(records))
	var reduced []domain.AttributionRecord

	for _, rec := range records {
		if rec.Email == "" {
			continue
		}
		if i, ok := latest[rec.Email]; ok {
			if !rec.CreatedAt.Before(reduced[i].CreatedAt) {
				reduced[i] = rec
			}
			continue
		}
		latest[rec.Email] = len(reduced)
		reduced = append(reduced, rec)
	}

	return reduced
}

// mergeLocked applies most-recent-wins per contact: an incoming record
// replaces the known one only when captured strictly later. Across
// batches an equal capture date keeps the existing record, trading the
// ordering of same-timestamp duplicates (resolved keep-last inside each
// batch by reduceBatch) for batch-order-independent merging.
func (s *Store) mergeLocked(rec domain.AttributionRecord) {
	if rec.Email == "" {
		return
	}
	if existing, ok := s.records[rec.Email]; ok {
		if !rec.CreatedAt.After(existing.CreatedAt) {
			return
		}
	}
	s.records[rec.Email] = rec
}

// saveLocked persists the snapshot best-effort; a write failure must not
// fail the aggregation that triggered the refresh.
func (s *Store) saveLocked(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	records := make([]domain.AttributionRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	if err := s.snapshots.Save(ctx, records, s.lastRefreshedThrough); err != nil {
		s.log.Warn("Failed to persist attribution snapshot", zap.Error(err))
	}
}
