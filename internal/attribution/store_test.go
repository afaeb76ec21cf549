package attribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

// MockUpdateFetcher is a mock implementation of UpdateFetcher
type MockUpdateFetcher struct {
	mock.Mock
}

func (m *MockUpdateFetcher) FetchUpdates(ctx context.Context, since time.Time) ([]domain.AttributionRecord, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttributionRecord), args.Error(1)
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Load(ctx context.Context) ([]domain.AttributionRecord, time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(time.Time), args.Error(2)
	}
	return args.Get(0).([]domain.AttributionRecord), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, records []domain.AttributionRecord, watermark time.Time) error {
	args := m.Called(ctx, records, watermark)
	return args.Error(0)
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(email string, dims domain.Dimensions, createdAt time.Time) domain.AttributionRecord {
	return domain.AttributionRecord{Email: email, Dimensions: dims, CreatedAt: createdAt}
}

func TestStore_Enrich_PopulatesDimensions(t *testing.T) {
	log := zap.NewNop()
	store := NewStore(nil, nil, time.Second, log)
	store.Merge([]domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "launch", Source: "google"}, utcDay(2024, 1, 1)),
	})

	events := []domain.Event{
		{Email: "a@example.com", Date: utcDay(2024, 1, 1), Stage: domain.StageFirstCall},
	}

	enriched, err := store.Enrich(context.Background(), events)

	assert.NoError(t, err)
	assert.Equal(t, "launch", enriched[0].Dimensions.Campaign)
	assert.Equal(t, "google", enriched[0].Dimensions.Source)
	// Absent fields on the record resolve to the placeholder.
	assert.Equal(t, domain.UnknownValue, enriched[0].Dimensions.Medium)
}

func TestStore_Enrich_UnknownContactGetsPlaceholder(t *testing.T) {
	log := zap.NewNop()
	store := NewStore(nil, nil, time.Second, log)
	store.Merge([]domain.AttributionRecord{
		record("known@example.com", domain.Dimensions{Campaign: "launch"}, utcDay(2024, 1, 1)),
	})

	events := []domain.Event{
		{Email: "missing@example.com", Date: utcDay(2024, 1, 1)},
	}

	enriched, err := store.Enrich(context.Background(), events)

	assert.NoError(t, err)
	assert.Equal(t, domain.Unknown(), enriched[0].Dimensions)
}

func TestStore_Enrich_ContactlessEventsBypassLookup(t *testing.T) {
	log := zap.NewNop()
	store := NewStore(nil, nil, time.Second, log)

	native := domain.Dimensions{Campaign: "launch"}.FillUnknown()
	events := []domain.Event{
		{Date: utcDay(2024, 1, 1), Stage: domain.StageAdClick, Dimensions: native},
	}

	// The store is unseeded, but no event carries a contact, so enrichment
	// must still succeed and leave dimensions untouched.
	enriched, err := store.Enrich(context.Background(), events)

	assert.NoError(t, err)
	assert.Equal(t, native, enriched[0].Dimensions)
}

func TestStore_Enrich_UnseededWithContactsFails(t *testing.T) {
	log := zap.NewNop()
	store := NewStore(nil, nil, time.Second, log)

	events := []domain.Event{
		{Email: "a@example.com", Date: utcDay(2024, 1, 1)},
	}

	_, err := store.Enrich(context.Background(), events)

	assert.ErrorIs(t, err, domain.ErrStoreNotSeeded)
}

func TestStore_Enrich_RefreshesWhenEventsPassWatermark(t *testing.T) {
	log := zap.NewNop()
	fetcher := new(MockUpdateFetcher)
	snapshots := new(MockSnapshotRepository)

	snapshots.On("Load", mock.Anything).
		Return([]domain.AttributionRecord{
			record("a@example.com", domain.Dimensions{Campaign: "old"}, utcDay(2024, 1, 1)),
		}, utcDay(2024, 1, 10), nil)
	snapshots.On("Save", mock.Anything, mock.Anything, utcDay(2024, 1, 20)).Return(nil)

	fetcher.On("FetchUpdates", mock.Anything, utcDay(2024, 1, 10)).
		Return([]domain.AttributionRecord{
			record("b@example.com", domain.Dimensions{Campaign: "new"}, utcDay(2024, 1, 15)),
		}, nil)

	store := NewStore(fetcher, snapshots, time.Second, log)
	assert.NoError(t, store.LoadSnapshot(context.Background()))

	events := []domain.Event{
		{Email: "b@example.com", Date: utcDay(2024, 1, 20)},
	}

	enriched, err := store.Enrich(context.Background(), events)

	assert.NoError(t, err)
	assert.Equal(t, "new", enriched[0].Dimensions.Campaign)
	assert.Equal(t, utcDay(2024, 1, 20), store.Watermark())
	fetcher.AssertExpectations(t)
	snapshots.AssertExpectations(t)
}

func TestStore_Enrich_SkipsRefreshWithinWatermark(t *testing.T) {
	log := zap.NewNop()
	fetcher := new(MockUpdateFetcher)

	store := NewStore(fetcher, nil, time.Second, log)
	store.Merge([]domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "launch"}, utcDay(2024, 1, 1)),
	})
	// No event date exceeds the watermark, so no fetch may happen.
	events := []domain.Event{
		{Email: "a@example.com", Date: time.Time{}},
	}

	_, err := store.Enrich(context.Background(), events)

	assert.NoError(t, err)
	fetcher.AssertNotCalled(t, "FetchUpdates")
}

func TestStore_Enrich_DegradesToStaleOnRefreshFailure(t *testing.T) {
	log := zap.NewNop()
	fetcher := new(MockUpdateFetcher)

	fetcher.On("FetchUpdates", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream timeout"))

	store := NewStore(fetcher, nil, time.Second, log)
	store.Merge([]domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "launch"}, utcDay(2024, 1, 1)),
	})

	events := []domain.Event{
		{Email: "a@example.com", Date: utcDay(2024, 2, 1)},
	}

	enriched, err := store.Enrich(context.Background(), events)

	// Stale data still serves; the failure never surfaces as an error.
	assert.NoError(t, err)
	assert.Equal(t, "launch", enriched[0].Dimensions.Campaign)
	assert.True(t, store.Watermark().IsZero())
	fetcher.AssertExpectations(t)
}

func TestStore_Merge_Commutative(t *testing.T) {
	log := zap.NewNop()

	batchX := []domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "x"}, utcDay(2024, 1, 5)),
		record("b@example.com", domain.Dimensions{Campaign: "x"}, utcDay(2024, 1, 1)),
	}
	batchY := []domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "y"}, utcDay(2024, 1, 3)),
		record("b@example.com", domain.Dimensions{Campaign: "y"}, utcDay(2024, 1, 2)),
	}

	xy := NewStore(nil, nil, time.Second, log)
	xy.Merge(batchX)
	xy.Merge(batchY)

	yx := NewStore(nil, nil, time.Second, log)
	yx.Merge(batchY)
	yx.Merge(batchX)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		events := []domain.Event{{Email: email, Date: time.Time{}}}
		fromXY, err := xy.Enrich(context.Background(), events)
		assert.NoError(t, err)
		fromYX, err := yx.Enrich(context.Background(), events)
		assert.NoError(t, err)
		assert.Equal(t, fromXY[0].Dimensions, fromYX[0].Dimensions, email)
	}

	// Most recent record won in both orders.
	fromXY, _ := xy.Enrich(context.Background(), []domain.Event{{Email: "a@example.com"}})
	assert.Equal(t, "x", fromXY[0].Dimensions.Campaign)
	fromXY, _ = xy.Enrich(context.Background(), []domain.Event{{Email: "b@example.com"}})
	assert.Equal(t, "y", fromXY[0].Dimensions.Campaign)
}

func TestStore_Merge_SameTimestampDuplicatesInBatchKeepLast(t *testing.T) {
	log := zap.NewNop()
	store := NewStore(nil, nil, time.Second, log)

	// One export listing the same contact twice with identical capture
	// dates: the later entry is the revision and must win.
	store.Merge([]domain.AttributionRecord{
		record("a@example.com", domain.Dimensions{Campaign: "draft"}, utcDay(2024, 1, 5)),
		record("a@example.com", domain.Dimensions{Campaign: "revised"}, utcDay(2024, 1, 5)),
	})

	enriched, err := store.Enrich(context.Background(), []domain.Event{{Email: "a@example.com"}})

	assert.NoError(t, err)
	assert.Equal(t, "revised", enriched[0].Dimensions.Campaign)
	assert.Equal(t, 1, store.Len())
}

func TestStore_LoadSnapshot_EmptyRepositoryLeavesStoreUnseeded(t *testing.T) {
	log := zap.NewNop()
	snapshots := new(MockSnapshotRepository)
	snapshots.On("Load", mock.Anything).Return([]domain.AttributionRecord{}, time.Time{}, nil)

	store := NewStore(nil, snapshots, time.Second, log)

	assert.NoError(t, store.LoadSnapshot(context.Background()))
	assert.False(t, store.Seeded())
	assert.Equal(t, 0, store.Len())
}
