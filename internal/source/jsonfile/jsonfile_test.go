package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDir_FetchCampaignMetrics_RangeFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ads.json", `[
		{"Campaign": "launch", "Date": "2024-01-01", "Metrics": {"clicks": "5"}},
		{"Campaign": "launch", "Date": "2024-02-01", "Metrics": {"clicks": "7"}}
	]`)

	d := New(dir, time.UTC, zap.NewNop())

	rows, err := d.FetchCampaignMetrics(context.Background(), source.TimeRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01", rows[0].Date)
}

func TestDir_FetchDeals(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deals.json", `[
		{"ID": "d1", "ContactEmail": "a@example.com",
		 "CreatedAt": "2024-01-03T09:00:00Z", "DealStage": "closedwon",
		 "TagIDs": ["33264189"], "OwnerID": "u1"}
	]`)

	d := New(dir, time.UTC, zap.NewNop())

	rows, err := d.FetchDeals(context.Background())

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "closedwon", rows[0].DealStage)
	assert.Equal(t, []string{"33264189"}, rows[0].TagIDs)
}

func TestDir_FetchStaff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "staff.json", `{"u1": "Jane Doe"}`)

	d := New(dir, time.UTC, zap.NewNop())

	staff, err := d.FetchStaff(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "Jane Doe", staff["u1"])
}

func TestDir_FetchUpdates_FiltersByWatermark(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "attribution.json", `[
		{"Email": "old@example.com", "CreatedAt": "2024-01-01T00:00:00Z",
		 "Dimensions": {"campaign": "winter"}},
		{"Email": "new@example.com", "CreatedAt": "2024-02-01T00:00:00Z",
		 "Dimensions": {"campaign": "spring"}}
	]`)

	d := New(dir, time.UTC, zap.NewNop())

	updates, err := d.FetchUpdates(context.Background(),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Len(t, updates, 1)
	assert.Equal(t, "new@example.com", updates[0].Email)
}

func TestDir_MissingFileIsFetchFailure(t *testing.T) {
	d := New(t.TempDir(), time.UTC, zap.NewNop())

	_, err := d.FetchSales(context.Background())

	assert.Error(t, err)
}
