package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/aggregate"
	"github.com/antonhoreis/analytics-dashboard/internal/domain"
	"github.com/antonhoreis/analytics-dashboard/internal/dto"
	"github.com/antonhoreis/analytics-dashboard/internal/funnel"
	"github.com/antonhoreis/analytics-dashboard/internal/report"
	"github.com/antonhoreis/analytics-dashboard/internal/source"
)

const dateLayout = "2006-01-02"

// ErrInvalidRequest marks request validation failures so the handler can
// distinguish them from pipeline errors.
var ErrInvalidRequest = errors.New("invalid request")

// Sources bundles the upstream collaborators. A nil fetcher means the
// deployment has no such source; requests touching it get a warning
// instead of data.
type Sources struct {
	Ads      []source.AdMetricsFetcher
	Deals    source.DealFetcher
	Meetings source.MeetingFetcher
	Sessions source.SessionFetcher
	Ledger   source.LedgerFetcher
	Staff    source.StaffDirectory
}

// DashboardService orchestrates the fetch → normalize → enrich → filter →
// aggregate pipeline and caches full results by request shape.
type DashboardService struct {
	sources  Sources
	enricher Enricher
	loc      *time.Location
	coercion source.CoercionMode
	cache    *expirable.LRU[string, any]
	log      *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(sources Sources, enricher Enricher, loc *time.Location, coercion source.CoercionMode, cacheSize int, cacheTTL time.Duration, log *zap.Logger) *DashboardService {
	return &DashboardService{
		sources:  sources,
		enricher: enricher,
		loc:      loc,
		coercion: coercion,
		cache:    expirable.NewLRU[string, any](cacheSize, nil, cacheTTL),
		log:      log,
	}
}

// tableQuery is the parsed, validated form of an attribution table request.
type tableQuery struct {
	from       time.Time
	to         time.Time
	dimensions []string
	sources    map[domain.SourceType]bool
	filters    []domain.Filter
}

// GetDailyAttributionTable builds the attributed daily table for the
// requested range. Individual source failures degrade to warnings; only an
// unusable attribution store fails the request.
func (s *DashboardService) GetDailyAttributionTable(ctx context.Context, req *dto.AttributionTableRequest) (*dto.AttributionTableResponse, error) {
	q, err := s.parseTableRequest(req)
	if err != nil {
		return nil, err
	}

	key := q.cacheKey()
	if cached, ok := s.cache.Get(key); ok {
		s.log.Debug("Serving attribution table from cache", zap.String("key", key))
		return cached.(*dto.AttributionTableResponse), nil
	}

	events, warnings := s.collectEvents(ctx, q)

	enriched, err := s.enricher.Enrich(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("enrich events: %w", err)
	}

	filtered := applyFilters(enriched, q.filters)
	rows := aggregate.Daily(filtered, q.dimensions)
	report.SortRows(rows)

	resp := &dto.AttributionTableResponse{
		From:       req.From,
		To:         req.To,
		Dimensions: q.dimensions,
		Rows:       toRowDTOs(rows),
		Warnings:   warnings,
	}
	s.cache.Add(key, resp)

	s.log.Info("Attribution table built",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("events", len(filtered)),
		zap.Int("rows", len(resp.Rows)),
		zap.Int("warnings", len(warnings)))

	return resp, nil
}

// GetFunnelTransitions builds the aggregated funnel transition graph from
// CRM deals and meetings.
func (s *DashboardService) GetFunnelTransitions(ctx context.Context) (*dto.FunnelResponse, error) {
	const key = "funnel/transitions"
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*dto.FunnelResponse), nil
	}

	byContact, staff, warnings := s.funnelPipeline(ctx)
	transitions := funnel.Aggregate(funnel.ComputeTransitions(byContact, s.log))
	graph := report.BuildFunnelGraph(transitions, staff)

	links := make([]dto.FunnelLinkDTO, 0, len(graph.Links))
	for _, l := range graph.Links {
		links = append(links, dto.FunnelLinkDTO{
			Source: l.Source,
			Target: l.Target,
			User:   l.User,
			Weight: l.Weight,
		})
	}

	resp := &dto.FunnelResponse{Nodes: graph.Nodes, Links: links, Warnings: warnings}
	s.cache.Add(key, resp)

	s.log.Info("Funnel graph built",
		zap.Int("links", len(links)),
		zap.Int("warnings", len(warnings)))

	return resp, nil
}

// GetFunnelStats builds per-staff-member funnel stage counters from the
// same transition set as the graph.
func (s *DashboardService) GetFunnelStats(ctx context.Context) (*dto.FunnelStatsResponse, error) {
	const key = "funnel/stats"
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*dto.FunnelStatsResponse), nil
	}

	byContact, staff, warnings := s.funnelPipeline(ctx)
	stats := report.ResolveStats(funnel.ComputeStageStats(byContact), staff)

	users := make(map[string]dto.UserStageStatsDTO, len(stats))
	for user, st := range stats {
		users[user] = dto.UserStageStatsDTO{
			FirstCallTotal:    st.FirstCallTotal,
			FirstCallToSale:   st.FirstCallToSale,
			FirstCallVATotal:  st.FirstCallVATotal,
			FirstCallVAToSale: st.FirstCallVAToSale,
			PlacementTotal:    st.PlacementTotal,
			PlacementToSale:   st.PlacementToSale,
			PlacementVATotal:  st.PlacementVATotal,
			PlacementVAToSale: st.PlacementVAToSale,
		}
	}

	resp := &dto.FunnelStatsResponse{Users: users, Warnings: warnings}
	s.cache.Add(key, resp)
	return resp, nil
}

// funnelPipeline fetches deals and meetings, groups them into per-contact
// histories and resolves the staff directory. Every collaborator failure
// becomes a warning.
func (s *DashboardService) funnelPipeline(ctx context.Context) (map[string][]domain.Event, map[string]string, []string) {
	var events []domain.Event
	var warnings []string

	if s.sources.Deals == nil {
		warnings = append(warnings, notConfigured(domain.SourceDealTag))
	} else if rows, err := s.sources.Deals.FetchDeals(ctx); err != nil {
		warnings = append(warnings, s.fetchWarning(domain.SourceDealTag, err))
	} else {
		events = append(events, source.NormalizeDeals(rows, s.loc, s.log)...)
	}

	if s.sources.Meetings == nil {
		warnings = append(warnings, notConfigured(domain.SourceMeeting))
	} else if rows, err := s.sources.Meetings.FetchFirstCalls(ctx); err != nil {
		warnings = append(warnings, s.fetchWarning(domain.SourceMeeting, err))
	} else {
		events = append(events, source.NormalizeMeetings(rows, s.loc, s.log)...)
	}

	byContact := funnel.ByContact(events)

	staff := map[string]string{}
	if s.sources.Staff != nil {
		m, err := s.sources.Staff.FetchStaff(ctx)
		if err != nil {
			warnings = append(warnings, s.fetchWarning("staff", err))
		} else {
			staff = m
		}
	}

	return byContact, staff, warnings
}

// collectEvents fetches and normalizes every requested source. Failures
// never abort the pipeline; they surface as warnings on the result.
func (s *DashboardService) collectEvents(ctx context.Context, q *tableQuery) ([]domain.Event, []string) {
	var events []domain.Event
	var warnings []string

	tr := source.TimeRange{From: q.from, To: q.to}

	if q.sources[domain.SourceAdMetric] {
		if len(s.sources.Ads) == 0 {
			warnings = append(warnings, notConfigured(domain.SourceAdMetric))
		}
		for _, fetcher := range s.sources.Ads {
			rows, err := fetcher.FetchCampaignMetrics(ctx, tr)
			if err != nil {
				warnings = append(warnings, s.fetchWarning(domain.SourceAdMetric, err))
				continue
			}
			events = append(events, source.NormalizeAdMetrics(rows, s.coercion, s.loc, s.log)...)
		}
	}

	if q.sources[domain.SourceDealTag] {
		if s.sources.Deals == nil {
			warnings = append(warnings, notConfigured(domain.SourceDealTag))
		} else if rows, err := s.sources.Deals.FetchDeals(ctx); err != nil {
			warnings = append(warnings, s.fetchWarning(domain.SourceDealTag, err))
		} else {
			events = append(events, source.NormalizeDeals(rows, s.loc, s.log)...)
		}
	}

	if q.sources[domain.SourceMeeting] {
		if s.sources.Meetings == nil {
			warnings = append(warnings, notConfigured(domain.SourceMeeting))
		} else if rows, err := s.sources.Meetings.FetchFirstCalls(ctx); err != nil {
			warnings = append(warnings, s.fetchWarning(domain.SourceMeeting, err))
		} else {
			events = append(events, source.NormalizeMeetings(rows, s.loc, s.log)...)
		}
	}

	if q.sources[domain.SourcePageview] {
		if s.sources.Sessions == nil {
			warnings = append(warnings, notConfigured(domain.SourcePageview))
		} else if rows, err := s.sources.Sessions.FetchLandingPageSessions(ctx, tr); err != nil {
			warnings = append(warnings, s.fetchWarning(domain.SourcePageview, err))
		} else {
			events = append(events, source.NormalizeSessions(rows, s.loc, s.log)...)
		}
	}

	if q.sources[domain.SourceSale] {
		if s.sources.Ledger == nil {
			warnings = append(warnings, notConfigured(domain.SourceSale))
		} else if rows, err := s.sources.Ledger.FetchSales(ctx); err != nil {
			warnings = append(warnings, s.fetchWarning(domain.SourceSale, err))
		} else {
			events = append(events, source.NormalizeSales(rows, s.loc, s.log)...)
		}
	}

	return events, warnings
}

func (s *DashboardService) fetchWarning(src domain.SourceType, err error) string {
	ferr := &source.FetchError{Source: string(src), Err: err}
	s.log.Warn("Source fetch failed, proceeding without it",
		zap.String("source", string(src)),
		zap.Error(err))
	return ferr.Error()
}

func notConfigured(src domain.SourceType) string {
	return fmt.Sprintf("source %s not configured", src)
}

// parseTableRequest validates and normalizes the raw request.
func (s *DashboardService) parseTableRequest(req *dto.AttributionTableRequest) (*tableQuery, error) {
	from, err := time.ParseInLocation(dateLayout, req.From, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: from %q is not a valid date", ErrInvalidRequest, req.From)
	}
	to, err := time.ParseInLocation(dateLayout, req.To, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: to %q is not a valid date", ErrInvalidRequest, req.To)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidRequest)
	}

	dims := splitList(req.Dimensions)
	for _, d := range dims {
		if !domain.ValidDimension(d) {
			return nil, fmt.Errorf("%w: unknown dimension %q", ErrInvalidRequest, d)
		}
	}
	if len(dims) == 0 {
		dims = append(dims, domain.DimensionNames...)
	}

	known := map[domain.SourceType]bool{
		domain.SourceAdMetric: true,
		domain.SourceMeeting:  true,
		domain.SourceDealTag:  true,
		domain.SourceSale:     true,
		domain.SourcePageview: true,
	}
	srcs := make(map[domain.SourceType]bool)
	for _, raw := range splitList(req.Sources) {
		st := domain.SourceType(raw)
		if !known[st] {
			return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidRequest, raw)
		}
		srcs[st] = true
	}
	if len(srcs) == 0 {
		srcs = known
	}

	filters := []domain.Filter{domain.DateRange(from, to)}
	for _, f := range []struct {
		field  string
		values []string
	}{
		{"campaign", req.FilterCampaign},
		{"source", req.FilterSource},
		{"medium", req.FilterMedium},
		{"content", req.FilterContent},
		{"term", req.FilterTerm},
	} {
		if len(f.values) > 0 {
			filters = append(filters, domain.In(f.field, splitList(f.values)...))
		}
	}
	if req.VerbalAgreement != nil {
		filters = append(filters, domain.Equals("verbal_agreement", *req.VerbalAgreement))
	}
	if req.ClosedWon != nil {
		filters = append(filters, domain.Equals("closed_won", *req.ClosedWon))
	}

	return &tableQuery{
		from:       from,
		to:         to,
		dimensions: dims,
		sources:    srcs,
		filters:    filters,
	}, nil
}

// cacheKey hashes the request shape: date range, source set, grouping
// dimensions and filters.
func (q *tableQuery) cacheKey() string {
	srcs := make([]string, 0, len(q.sources))
	for st := range q.sources {
		srcs = append(srcs, string(st))
	}
	sort.Strings(srcs)

	var parts []string
	parts = append(parts,
		q.from.Format(dateLayout),
		q.to.Format(dateLayout),
		strings.Join(q.dimensions, ","),
		strings.Join(srcs, ","))
	for _, f := range q.filters {
		values := make([]string, len(f.Values))
		copy(values, f.Values)
		sort.Strings(values)
		parts = append(parts, fmt.Sprintf("%d:%s:%s:%t",
			f.Kind, f.Field, strings.Join(values, ","), f.Equals))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// applyFilters keeps events matching every filter.
func applyFilters(events []domain.Event, filters []domain.Filter) []domain.Event {
	out := make([]domain.Event, 0, len(events))
events:
	for _, ev := range events {
		for _, f := range filters {
			if !f.Match(ev) {
				continue events
			}
		}
		out = append(out, ev)
	}
	return out
}

// splitList flattens repeated query parameters that may themselves be
// comma separated.
func splitList(raw []string) []string {
	var out []string
	for _, chunk := range raw {
		for _, item := range strings.Split(chunk, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func toRowDTOs(rows []domain.DailyRow) []dto.DailyRowDTO {
	out := make([]dto.DailyRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.DailyRowDTO{
			Date:                row.Date.Format(dateLayout),
			Campaign:            row.Dimensions.Campaign,
			Source:              row.Dimensions.Source,
			Medium:              row.Dimensions.Medium,
			Content:             row.Dimensions.Content,
			Term:                row.Dimensions.Term,
			FirstCalls:          row.FirstCalls,
			VerbalAgreements:    row.VerbalAgreements,
			PlacementsScheduled: row.PlacementsScheduled,
			Sales:               row.Sales,
			Pageviews:           row.Pageviews,
			Spend:               row.Spend,
			Clicks:              row.Clicks,
			Impressions:         row.Impressions,
			Sessions:            row.Sessions,
		})
	}
	return out
}
