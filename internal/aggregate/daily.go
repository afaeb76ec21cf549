// Package aggregate buckets enriched events into the unified daily
// attribution table: one row per (date, dimension-tuple), stage counts
// pivoted into columns, gap-free per tuple.
package aggregate

import (
	"sort"
	"time"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

type bucketKey struct {
	day  int64 // unix seconds of the day's midnight
	dims domain.Dimensions
}

// accumulator keeps micro-unit cost separate until finalization so the
// unit conversion happens once, after summation.
type accumulator struct {
	row         domain.DailyRow
	spendMicros int64
}

// Daily aggregates events by calendar day and the projection of their
// dimensions onto groupBy, then resamples so every tuple's day sequence is
// contiguous. An empty groupBy collapses all events into a single tuple.
func Daily(events []domain.Event, groupBy []string) []domain.DailyRow {
	buckets := make(map[bucketKey]*accumulator)

	for _, ev := range events {
		dims := ev.Dimensions.Project(groupBy)
		k := bucketKey{day: ev.Date.Unix(), dims: dims}
		acc, ok := buckets[k]
		if !ok {
			acc = &accumulator{row: domain.DailyRow{Date: ev.Date, Dimensions: dims}}
			buckets[k] = acc
		}

		switch ev.Stage {
		case domain.StageFirstCall:
			acc.row.FirstCalls++
		case domain.StageVerbalAgreement:
			acc.row.VerbalAgreements++
		case domain.StagePlacementScheduled:
			acc.row.PlacementsScheduled++
		case domain.StageSale:
			acc.row.Sales++
		case domain.StagePageview:
			acc.row.Pageviews++
		}

		acc.row.Spend += ev.Spend
		acc.spendMicros += ev.SpendMicros
		acc.row.Clicks += ev.Clicks
		acc.row.Impressions += ev.Impressions
		acc.row.Sessions += ev.Sessions
	}

	rows := make([]domain.DailyRow, 0, len(buckets))
	for _, acc := range buckets {
		row := acc.row
		// Micro-unit conversion after summation, never per event, to avoid
		// compounding rounding.
		row.Spend += float64(acc.spendMicros) / 1e6
		rows = append(rows, row)
	}

	return Resample(rows)
}

// Resample merges duplicate (date, tuple) rows and fills every tuple's
// observed date span so each calendar day appears exactly once. Spans are
// per tuple: one tuple's range never forces zero rows into another's.
// Resampling an already-resampled table is a no-op.
func Resample(rows []domain.DailyRow) []domain.DailyRow {
	type span struct {
		dims domain.Dimensions
		min  time.Time
		max  time.Time
	}

	merged := make(map[bucketKey]domain.DailyRow)
	spans := make(map[domain.Dimensions]*span)

	for _, row := range rows {
		k := bucketKey{day: row.Date.Unix(), dims: row.Dimensions}
		if have, ok := merged[k]; ok {
			merged[k] = addRows(have, row)
		} else {
			merged[k] = row
		}

		sp, ok := spans[row.Dimensions]
		if !ok {
			spans[row.Dimensions] = &span{dims: row.Dimensions, min: row.Date, max: row.Date}
			continue
		}
		if row.Date.Before(sp.min) {
			sp.min = row.Date
		}
		if row.Date.After(sp.max) {
			sp.max = row.Date
		}
	}

	out := make([]domain.DailyRow, 0, len(merged))
	for _, sp := range spans {
		timeutil.EachDay(sp.min, sp.max, func(day time.Time) {
			k := bucketKey{day: day.Unix(), dims: sp.dims}
			if row, ok := merged[k]; ok {
				out = append(out, row)
				return
			}
			out = append(out, domain.DailyRow{Date: day, Dimensions: sp.dims})
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Dimensions.Key(), out[j].Dimensions.Key()
		if ki != kj {
			return ki < kj
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

func addRows(a, b domain.DailyRow) domain.DailyRow {
	a.FirstCalls += b.FirstCalls
	a.VerbalAgreements += b.VerbalAgreements
	a.PlacementsScheduled += b.PlacementsScheduled
	a.Sales += b.Sales
	a.Pageviews += b.Pageviews
	a.Spend += b.Spend
	a.Clicks += b.Clicks
	a.Impressions += b.Impressions
	a.Sessions += b.Sessions
	return a
}
