package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

func TestComputeStageStats_CountsFirstCallWithoutProgression(t *testing.T) {
	// A contact who takes a first call and closes won without any
	// verbal-agreement or placement event still counts for the first-call
	// owner: totals are unconditional per stage.
	events := map[string][]domain.Event{
		"a@example.com": {
			{Email: "a@example.com", Date: day(1), Stage: domain.StageFirstCall, OwnerID: "userB",
				DealStage: domain.DealStageClosedWon},
		},
	}

	stats := ComputeStageStats(events)

	s := stats["userB"]
	assert.Equal(t, 1, s.FirstCallTotal)
	assert.Equal(t, 1, s.FirstCallToSale)
	assert.Equal(t, 0, s.FirstCallVATotal)
	assert.Equal(t, 0, s.PlacementTotal)
}

func TestComputeStageStats_CreditsFirstCallOwnerNotAgreementOwner(t *testing.T) {
	events := map[string][]domain.Event{
		"b@example.com": {
			{Email: "b@example.com", Date: day(1), Stage: domain.StageFirstCall, OwnerID: "userA"},
			{Email: "b@example.com", Date: day(3), Stage: domain.StageVerbalAgreement, OwnerID: "userB",
				DealStage: domain.DealStageClosedWon},
		},
	}

	stats := ComputeStageStats(events)

	// The call total belongs to whoever took the call; the agreement
	// counters to whoever secured the agreement.
	a := stats["userA"]
	assert.Equal(t, 1, a.FirstCallTotal)
	assert.Equal(t, 1, a.FirstCallToSale)
	assert.Equal(t, 0, a.FirstCallVATotal)

	b := stats["userB"]
	assert.Equal(t, 0, b.FirstCallTotal)
	assert.Equal(t, 1, b.FirstCallVATotal)
	assert.Equal(t, 1, b.FirstCallVAToSale)
}

func TestComputeStageStats_PlacementCountersGoToPlacementOwner(t *testing.T) {
	events := map[string][]domain.Event{
		"c@example.com": {
			{Email: "c@example.com", Date: day(1), Stage: domain.StageFirstCall, OwnerID: "userA"},
			{Email: "c@example.com", Date: day(5), Stage: domain.StagePlacementScheduled, OwnerID: "userB",
				DealStage: domain.DealStageClosedWon, VerbalAgreement: true},
		},
	}

	stats := ComputeStageStats(events)

	a := stats["userA"]
	assert.Equal(t, 1, a.FirstCallTotal)
	assert.Equal(t, 1, a.FirstCallToSale)

	b := stats["userB"]
	assert.Equal(t, 1, b.PlacementTotal)
	assert.Equal(t, 1, b.PlacementToSale)
	assert.Equal(t, 1, b.PlacementVATotal)
	assert.Equal(t, 1, b.PlacementVAToSale)
	assert.Equal(t, 0, b.FirstCallTotal)
}

func TestComputeStageStats_PlacementWithoutVerbalFlag(t *testing.T) {
	events := map[string][]domain.Event{
		"d@example.com": {
			{Email: "d@example.com", Date: day(1), Stage: domain.StageFirstCall, OwnerID: "userA"},
			{Email: "d@example.com", Date: day(4), Stage: domain.StagePlacementScheduled, OwnerID: "userB"},
		},
	}

	stats := ComputeStageStats(events)

	b := stats["userB"]
	assert.Equal(t, 1, b.PlacementTotal)
	assert.Equal(t, 0, b.PlacementToSale)
	assert.Equal(t, 0, b.PlacementVATotal)
}

func TestComputeStageStats_StageCountersWithoutFirstCall(t *testing.T) {
	// Stage counters are independent of funnel entry: a verbal agreement
	// on a contact with no first call on record still counts for the
	// agreement owner.
	events := map[string][]domain.Event{
		"e@example.com": {
			{Email: "e@example.com", Date: day(2), Stage: domain.StageVerbalAgreement, OwnerID: "userA",
				DealStage: domain.DealStageClosedWon},
		},
	}

	stats := ComputeStageStats(events)

	s := stats["userA"]
	assert.Equal(t, 0, s.FirstCallTotal)
	assert.Equal(t, 1, s.FirstCallVATotal)
	assert.Equal(t, 1, s.FirstCallVAToSale)
}

func TestComputeStageStats_AccumulatesAcrossContacts(t *testing.T) {
	events := map[string][]domain.Event{
		"f@example.com": {
			{Email: "f@example.com", Date: day(1), Stage: domain.StageFirstCall, OwnerID: "userA",
				DealStage: domain.DealStageClosedWon},
		},
		"g@example.com": {
			{Email: "g@example.com", Date: day(2), Stage: domain.StageFirstCall, OwnerID: "userA"},
		},
	}

	stats := ComputeStageStats(events)

	s := stats["userA"]
	assert.Equal(t, 2, s.FirstCallTotal)
	assert.Equal(t, 1, s.FirstCallToSale)
}

func TestComputeStageStats_UnknownUserBucket(t *testing.T) {
	events := map[string][]domain.Event{
		"h@example.com": {
			{Email: "h@example.com", Date: day(1), Stage: domain.StageFirstCall},
		},
	}

	stats := ComputeStageStats(events)

	assert.Contains(t, stats, domain.UnknownUser)
	assert.Equal(t, 1, stats[domain.UnknownUser].FirstCallTotal)
}

func TestComputeStageStats_Empty(t *testing.T) {
	stats := ComputeStageStats(nil)

	assert.Empty(t, stats)
}
