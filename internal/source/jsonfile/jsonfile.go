// Package jsonfile backs the source collaborator interfaces with JSON
// dumps on local disk. It stands in for the real API clients in local
// deployments and integration-style tests: drop exports from the upstream
// systems into a directory and the pipeline runs against them.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/source"
)

// File names expected inside the data directory. A missing file is a fetch
// failure for that source only.
const (
	adsFile         = "ads.json"
	dealsFile       = "deals.json"
	meetingsFile    = "meetings.json"
	sessionsFile    = "sessions.json"
	salesFile       = "sales.json"
	staffFile       = "staff.json"
	attributionFile = "attribution.json"
)

// Dir serves all collaborator interfaces from one directory of JSON dumps.
type Dir struct {
	path string
	loc  *time.Location
	log  *zap.Logger
}

// New creates a JSON-file collaborator over the given directory.
func New(path string, loc *time.Location, log *zap.Logger) *Dir {
	return &Dir{path: path, loc: loc, log: log}
}

// FetchCampaignMetrics implements source.AdMetricsFetcher.
func (d *Dir) FetchCampaignMetrics(_ context.Context, tr source.TimeRange) ([]source.AdMetricRow, error) {
	rows, err := readJSON[source.AdMetricRow](d, adsFile)
	if err != nil {
		return nil, err
	}
	if tr.From.IsZero() && tr.To.IsZero() {
		return rows, nil
	}

	filtered := rows[:0]
	for _, row := range rows {
		date, err := time.ParseInLocation("2006-01-02", row.Date, d.loc)
		if err != nil {
			// Normalization reports unparsable dates; pass the row through.
			filtered = append(filtered, row)
			continue
		}
		if !tr.From.IsZero() && date.Before(tr.From) {
			continue
		}
		if !tr.To.IsZero() && date.After(tr.To) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered, nil
}

// FetchDeals implements source.DealFetcher.
func (d *Dir) FetchDeals(_ context.Context) ([]source.DealRow, error) {
	return readJSON[source.DealRow](d, dealsFile)
}

// FetchFirstCalls implements source.MeetingFetcher.
func (d *Dir) FetchFirstCalls(_ context.Context) ([]source.MeetingRow, error) {
	return readJSON[source.MeetingRow](d, meetingsFile)
}

// FetchLandingPageSessions implements source.SessionFetcher.
func (d *Dir) FetchLandingPageSessions(_ context.Context, _ source.TimeRange) ([]source.SessionRow, error) {
	return readJSON[source.SessionRow](d, sessionsFile)
}

// FetchSales implements source.LedgerFetcher.
func (d *Dir) FetchSales(_ context.Context) ([]source.LedgerRow, error) {
	return readJSON[source.LedgerRow](d, salesFile)
}

// FetchStaff implements source.StaffDirectory.
func (d *Dir) FetchStaff(_ context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(filepath.Join(d.path, staffFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", staffFile, err)
	}
	var staff map[string]string
	if err := json.Unmarshal(raw, &staff); err != nil {
		return nil, fmt.Errorf("decode %s: %w", staffFile, err)
	}
	return staff, nil
}

// FetchUpdates implements attribution.UpdateFetcher: records captured
// strictly after the watermark.
func (d *Dir) FetchUpdates(_ context.Context, since time.Time) ([]domain.AttributionRecord, error) {
	records, err := readJSON[domain.AttributionRecord](d, attributionFile)
	if err != nil {
		return nil, err
	}

	updates := records[:0]
	for _, rec := range records {
		if rec.CreatedAt.After(since) {
			updates = append(updates, rec)
		}
	}

	d.log.Debug("Attribution updates read from file",
		zap.Time("since", since),
		zap.Int("updates", len(updates)))
	return updates, nil
}

func readJSON[T any](d *Dir, name string) ([]T, error) {
	raw, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return rows, nil
}
