package source

import (
	"context"
	"fmt"
	"time"
)

// TimeRange bounds a collaborator fetch. A zero range means the source's
// default window (typically the last 90 days).
type TimeRange struct {
	From time.Time
	To   time.Time
}

// AdMetricsFetcher returns daily campaign metric rows from an ad platform.
type AdMetricsFetcher interface {
	FetchCampaignMetrics(ctx context.Context, tr TimeRange) ([]AdMetricRow, error)
}

// DealFetcher returns CRM deal rows from the default pipeline.
type DealFetcher interface {
	FetchDeals(ctx context.Context) ([]DealRow, error)
}

// MeetingFetcher returns first-call meeting rows with resolved contact
// emails.
type MeetingFetcher interface {
	FetchFirstCalls(ctx context.Context) ([]MeetingRow, error)
}

// SessionFetcher returns landing-page session rows from the analytics
// back end.
type SessionFetcher interface {
	FetchLandingPageSessions(ctx context.Context, tr TimeRange) ([]SessionRow, error)
}

// LedgerFetcher returns completed-sale rows from the sales ledger sheet.
type LedgerFetcher interface {
	FetchSales(ctx context.Context) ([]LedgerRow, error)
}

// StaffDirectory maps staff identities to display names.
type StaffDirectory interface {
	FetchStaff(ctx context.Context) (map[string]string, error)
}

// FetchError reports a collaborator that failed to return data. The
// pipeline proceeds with the remaining sources and surfaces these as
// warnings on the result.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
