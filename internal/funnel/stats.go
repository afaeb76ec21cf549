package funnel

import "github.com/antonhoreis/analytics-dashboard/internal/domain"

// StageStats counts, per staff member, how many contacts they handled at
// each funnel stage and how many of those contacts closed won. All
// counters start at zero; a user appears as soon as any contact credits
// them.
type StageStats struct {
	FirstCallTotal    int `json:"first_call_total"`
	FirstCallToSale   int `json:"first_call_to_sale"`
	FirstCallVATotal  int `json:"first_call_va_total"`
	FirstCallVAToSale int `json:"first_call_va_to_sale"`
	PlacementTotal    int `json:"placement_total"`
	PlacementToSale   int `json:"placement_to_sale"`
	PlacementVATotal  int `json:"placement_va_total"`
	PlacementVAToSale int `json:"placement_va_to_sale"`
}

// ComputeStageStats folds per-contact event histories into per-user stage
// counters. Counters are unconditional per stage: every contact with a
// first call counts toward the first-call owner's total, whether or not
// the contact ever progressed, and a closed-won deal marks every stage
// the contact touched as converted. First-call counters credit the
// first-call owner, verbal-agreement counters the agreement owner, and
// all placement counters the placement owner.
func ComputeStageStats(eventsByContact map[string][]domain.Event) map[string]StageStats {
	stats := make(map[string]StageStats)

	for _, events := range eventsByContact {
		sum := summarize(events)

		if sum.firstCall != nil {
			user := ownerOf(sum.firstCall)
			s := stats[user]
			s.FirstCallTotal++
			if sum.closedWon {
				s.FirstCallToSale++
			}
			stats[user] = s
		}

		if sum.verbalAgreement != nil {
			user := ownerOf(sum.verbalAgreement)
			s := stats[user]
			s.FirstCallVATotal++
			if sum.closedWon {
				s.FirstCallVAToSale++
			}
			stats[user] = s
		}

		if sum.placement != nil {
			user := ownerOf(sum.placement)
			s := stats[user]
			s.PlacementTotal++
			if sum.closedWon {
				s.PlacementToSale++
			}
			if sum.verbalFlag {
				s.PlacementVATotal++
				if sum.closedWon {
					s.PlacementVAToSale++
				}
			}
			stats[user] = s
		}
	}

	return stats
}
