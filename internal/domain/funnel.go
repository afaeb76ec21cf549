package domain

// FunnelStep is a named stage in the sales conversion funnel.
type FunnelStep string

const (
	StepFirstCall    FunnelStep = "First Call"
	StepFirstCallVA  FunnelStep = "First Call Verbal Agreement"
	StepPlacement    FunnelStep = "Placement Call"
	StepPlacementVA  FunnelStep = "Placement Verbal Agreement"
	StepSale         FunnelStep = "Sale"
)

// FunnelSteps lists the steps in display order.
var FunnelSteps = []FunnelStep{
	StepFirstCall,
	StepFirstCallVA,
	StepPlacement,
	StepPlacementVA,
	StepSale,
}

// UnknownUser buckets transitions whose handling staff member could not be
// resolved.
const UnknownUser = "unknown"

// Transition is one weighted funnel edge credited to a staff member.
type Transition struct {
	From   FunnelStep `json:"from"`
	To     FunnelStep `json:"to"`
	User   string     `json:"user"`
	Weight int        `json:"weight"`
}
