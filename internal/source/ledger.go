package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/timeutil"
)

// LedgerRow is one enrollment row from the sales ledger sheet. PaidAmount
// is the raw cell value, e.g. "€1.234,56".
type LedgerRow struct {
	TransactionID  string
	Email          string
	EnrollmentDate time.Time
	PaidAmount     string
}

// NormalizeSales converts ledger rows into sale events. Rows without a
// transaction id are dropped, duplicates keep the first occurrence, and
// only rows with a positive, parsable paid amount count: anything else is
// not a completed conversion.
func NormalizeSales(rows []LedgerRow, loc *time.Location, log *zap.Logger) []domain.Event {
	seen := make(map[string]bool, len(rows))
	events := make([]domain.Event, 0, len(rows))

	for _, row := range rows {
		if row.TransactionID == "" {
			continue
		}
		if seen[row.TransactionID] {
			continue
		}
		seen[row.TransactionID] = true

		amount, err := parseAmount(row.PaidAmount)
		if err != nil {
			log.Warn("Dropping sale row with unparsable paid amount",
				zap.String("transaction_id", row.TransactionID),
				zap.String("paid_amount", row.PaidAmount))
			continue
		}
		if amount <= 0 {
			continue
		}

		events = append(events, domain.Event{
			Source: domain.SourceSale,
			Email:  row.Email,
			Date:   timeutil.Day(row.EnrollmentDate, loc),
			Stage:  domain.StageSale,
		})
	}

	return events
}

// parseAmount reads a euro-formatted sheet cell. The sheet uses a comma
// decimal separator and an optional currency sign; an empty cell means
// zero.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, nil
	}
	// "1.234,56" -> "1234.56"
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v, nil
}
