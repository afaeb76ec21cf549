package domain

import "time"

// SourceType identifies which upstream system produced an event.
type SourceType string

const (
	SourceAdMetric SourceType = "ad-metric"
	SourceMeeting  SourceType = "meeting"
	SourceDealTag  SourceType = "deal-tag"
	SourceSale     SourceType = "sale"
	SourcePageview SourceType = "pageview"
)

// Stage is the conversion stage an event belongs to.
type Stage string

const (
	StageAdClick            Stage = "ad_click"
	StageFirstCall          Stage = "first_call"
	StageVerbalAgreement    Stage = "verbal_agreement_after_first_call"
	StagePlacementScheduled Stage = "placement_scheduled"
	StageSale               Stage = "sale"
	StagePageview           Stage = "pageview"
)

// DealStageClosedWon is the CRM deal stage marking a completed sale.
const DealStageClosedWon = "closedwon"

// Event is the canonical shape every source normalizes into. Date is always
// midnight in the configured reference zone; cross-source comparisons rely
// on that.
type Event struct {
	Source SourceType
	Email  string // contact identity, empty for pure ad-platform metrics
	Date   time.Time
	Stage  Stage
	// OwnerID is the staff member who owns the event in the source system.
	OwnerID    string
	Dimensions Dimensions

	// Source-native numeric attributes. Only the fields relevant to the
	// event's source are set; the rest stay zero.
	SpendMicros int64
	Spend       float64
	Clicks      int64
	Impressions int64
	Sessions    int64

	// Deal flags, carried on every event emitted from a CRM deal.
	DealStage       string
	VerbalAgreement bool
}

// HasContact reports whether the event can be joined to the attribution
// side table.
func (e Event) HasContact() bool {
	return e.Email != ""
}
