package dto

// AttributionTableRequest represents a daily attribution table query.
// Dates are calendar days in the service's reference zone. Repeated
// filter_* parameters form set-membership filters on the matching
// dimension; verbal_agreement and closed_won filter on deal flags.
type AttributionTableRequest struct {
	From            string   `form:"from" binding:"required" example:"2024-01-01"`
	To              string   `form:"to" binding:"required" example:"2024-01-31"`
	Dimensions      []string `form:"dimensions" example:"campaign,source"`
	Sources         []string `form:"sources" example:"ad-metric,pageview"`
	FilterCampaign  []string `form:"filter_campaign"`
	FilterSource    []string `form:"filter_source"`
	FilterMedium    []string `form:"filter_medium"`
	FilterContent   []string `form:"filter_content"`
	FilterTerm      []string `form:"filter_term"`
	VerbalAgreement *bool    `form:"verbal_agreement"`
	ClosedWon       *bool    `form:"closed_won"`
}
