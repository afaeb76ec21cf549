package source

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

// AdMetricRow is one daily campaign metric row as returned by an ad
// platform. Metric values arrive as strings and are coerced during
// normalization.
type AdMetricRow struct {
	Campaign string
	Date     string // YYYY-MM-DD in the platform's reporting zone
	Metrics  map[string]string
}

// CoercionMode controls how numeric coercion failures are handled.
type CoercionMode int

const (
	// CoercionStrict excludes the whole row when any present metric fails
	// to parse.
	CoercionStrict CoercionMode = iota
	// CoercionLenient treats an unparsable metric as missing and keeps the
	// row.
	CoercionLenient
)

// Metric keys shared across ad platforms. Cost arrives either in
// micro-units (cost_micros) or as a currency amount (spend).
const (
	metricCostMicros  = "cost_micros"
	metricSpend       = "spend"
	metricClicks      = "clicks"
	metricImpressions = "impressions"
)

// NormalizeAdMetrics converts ad platform rows into ad-click events. Rows
// have no contact identity: the campaign dimension is source-native and the
// remaining dimensions stay unknown.
func NormalizeAdMetrics(rows []AdMetricRow, mode CoercionMode, loc *time.Location, log *zap.Logger) []domain.Event {
	events := make([]domain.Event, 0, len(rows))

rows:
	for _, row := range rows {
		date, err := time.ParseInLocation("2006-01-02", row.Date, loc)
		if err != nil {
			log.Warn("Dropping ad metric row with unparsable date",
				zap.String("campaign", row.Campaign),
				zap.String("date", row.Date))
			continue
		}

		ev := domain.Event{
			Source: domain.SourceAdMetric,
			Stage:  domain.StageAdClick,
			Date:   timeutil.Day(date, loc),
			Dimensions: domain.Dimensions{
				Campaign: row.Campaign,
			}.FillUnknown(),
		}

		for key, raw := range row.Metrics {
			switch key {
			case metricCostMicros:
				v, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					if mode == CoercionStrict {
						log.Warn("Dropping ad metric row on strict coercion failure",
							zap.String("campaign", row.Campaign),
							zap.String("metric", key),
							zap.String("value", raw))
						continue rows
					}
					continue
				}
				ev.SpendMicros = v
			case metricSpend:
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					if mode == CoercionStrict {
						log.Warn("Dropping ad metric row on strict coercion failure",
							zap.String("campaign", row.Campaign),
							zap.String("metric", key),
							zap.String("value", raw))
						continue rows
					}
					continue
				}
				ev.Spend = v
			case metricClicks, metricImpressions:
				v, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					if mode == CoercionStrict {
						log.Warn("Dropping ad metric row on strict coercion failure",
							zap.String("campaign", row.Campaign),
							zap.String("metric", key),
							zap.String("value", raw))
						continue rows
					}
					continue
				}
				if key == metricClicks {
					ev.Clicks = v
				} else {
					ev.Impressions = v
				}
			}
		}

		events = append(events, ev)
	}

	return events
}
