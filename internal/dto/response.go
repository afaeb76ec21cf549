package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"from is required"`
}

// DailyRowDTO is one (date, dimension-tuple) row of the attribution table
type DailyRowDTO struct {
	Date     string `json:"date" example:"2024-01-01"`
	Campaign string `json:"campaign" example:"summer_launch"`
	Source   string `json:"source" example:"google"`
	Medium   string `json:"medium" example:"cpc"`
	Content  string `json:"content" example:"variant_b"`
	Term     string `json:"term" example:"coaching"`

	FirstCalls          int64 `json:"first_calls" example:"3"`
	VerbalAgreements    int64 `json:"verbal_agreements" example:"1"`
	PlacementsScheduled int64 `json:"placements_scheduled" example:"1"`
	Sales               int64 `json:"sales" example:"1"`
	Pageviews           int64 `json:"pageviews" example:"240"`

	Spend       float64 `json:"spend" example:"125.5"`
	Clicks      int64   `json:"clicks" example:"87"`
	Impressions int64   `json:"impressions" example:"4100"`
	Sessions    int64   `json:"sessions" example:"195"`
}

// AttributionTableResponse represents the daily attribution table
type AttributionTableResponse struct {
	From       string        `json:"from" example:"2024-01-01"`
	To         string        `json:"to" example:"2024-01-31"`
	Dimensions []string      `json:"dimensions" example:"campaign,source"`
	Rows       []DailyRowDTO `json:"rows"`
	Warnings   []string      `json:"warnings,omitempty" example:"fetch pageview: upstream timeout"`
}

// FunnelLinkDTO is one weighted funnel edge, referencing nodes by index
type FunnelLinkDTO struct {
	Source int    `json:"source" example:"0"`
	Target int    `json:"target" example:"1"`
	User   string `json:"user" example:"Jane Doe"`
	Weight int    `json:"weight" example:"4"`
}

// FunnelResponse represents the aggregated funnel transition graph
type FunnelResponse struct {
	Nodes    []string        `json:"nodes"`
	Links    []FunnelLinkDTO `json:"links"`
	Warnings []string        `json:"warnings,omitempty"`
}

// UserStageStatsDTO represents one staff member's funnel stage counters
type UserStageStatsDTO struct {
	FirstCallTotal    int `json:"first_call_total" example:"12"`
	FirstCallToSale   int `json:"first_call_to_sale" example:"3"`
	FirstCallVATotal  int `json:"first_call_va_total" example:"5"`
	FirstCallVAToSale int `json:"first_call_va_to_sale" example:"3"`
	PlacementTotal    int `json:"placement_total" example:"4"`
	PlacementToSale   int `json:"placement_to_sale" example:"2"`
	PlacementVATotal  int `json:"placement_va_total" example:"2"`
	PlacementVAToSale int `json:"placement_va_to_sale" example:"2"`
}

// FunnelStatsResponse represents per-user funnel conversion counters
type FunnelStatsResponse struct {
	Users    map[string]UserStageStatsDTO `json:"users"`
	Warnings []string                     `json:"warnings,omitempty"`
}
