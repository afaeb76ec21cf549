package service

import (
	"context"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/dto"
)

// DashboardServicer defines the interface for dashboard service operations
type DashboardServicer interface {
	GetDailyAttributionTable(ctx context.Context, req *dto.AttributionTableRequest) (*dto.AttributionTableResponse, error)
	GetFunnelTransitions(ctx context.Context) (*dto.FunnelResponse, error)
	GetFunnelStats(ctx context.Context) (*dto.FunnelStatsResponse, error)
}

// Enricher populates event dimensions from the attribution side table.
type Enricher interface {
	Enrich(ctx context.Context, events []domain.Event) ([]domain.Event, error)
}
