// Package funnel assigns per-contact conversion credit to handling staff
// and aggregates the resulting stage transitions into a weighted graph.
package funnel

import (
	"sort"

	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

// AllowedEdges is the fixed transition topology. Anything outside this set
// is never emitted.
var AllowedEdges = map[domain.FunnelStep][]domain.FunnelStep{
	domain.StepFirstCall:   {domain.StepFirstCallVA, domain.StepPlacement},
	domain.StepFirstCallVA: {domain.StepSale},
	domain.StepPlacement:   {domain.StepPlacementVA, domain.StepSale},
	domain.StepPlacementVA: {domain.StepSale},
}

// ByContact groups events by contact email, dropping events that carry no
// contact identity.
func ByContact(events []domain.Event) map[string][]domain.Event {
	byContact := make(map[string][]domain.Event)
	for _, ev := range events {
		if !ev.HasContact() {
			continue
		}
		byContact[ev.Email] = append(byContact[ev.Email], ev)
	}
	return byContact
}

// ComputeTransitions walks every contact's event history and emits the
// transitions the history supports. A contact enters the funnel only
// through a first call; a closed-won deal with no first call on record is
// an integrity violation and is logged and skipped. The verbal-agreement
// and placement branches are independent: a contact with both paths emits
// transitions from both.
func ComputeTransitions(eventsByContact map[string][]domain.Event, log *zap.Logger) []domain.Transition {
	// Iterate contacts in a fixed order so the unaggregated output is
	// reproducible run to run.
	contacts := make([]string, 0, len(eventsByContact))
	for contact := range eventsByContact {
		contacts = append(contacts, contact)
	}
	sort.Strings(contacts)

	var transitions []domain.Transition
	for _, contact := range contacts {
		transitions = append(transitions, contactTransitions(contact, eventsByContact[contact], log)...)
	}
	return transitions
}

// contactSummary is the per-contact digest both the transition walk and
// the stage stats work from: the canonical event per stage plus the
// contact-level deal flags.
type contactSummary struct {
	firstCall       *domain.Event
	verbalAgreement *domain.Event
	placement       *domain.Event
	closedWon       bool
	verbalFlag      bool
}

// summarize picks the canonical event per stage. Sorting makes "the"
// first-call/verbal-agreement/placement event well defined when a contact
// has several of the same stage.
func summarize(events []domain.Event) contactSummary {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].Stage != sorted[j].Stage {
			return sorted[i].Stage < sorted[j].Stage
		}
		return sorted[i].OwnerID < sorted[j].OwnerID
	})

	var sum contactSummary
	for i := range sorted {
		ev := &sorted[i]
		switch ev.Stage {
		case domain.StageFirstCall:
			if sum.firstCall == nil {
				sum.firstCall = ev
			}
		case domain.StageVerbalAgreement:
			if sum.verbalAgreement == nil {
				sum.verbalAgreement = ev
			}
		case domain.StagePlacementScheduled:
			if sum.placement == nil {
				sum.placement = ev
			}
		}
		if ev.DealStage == domain.DealStageClosedWon {
			sum.closedWon = true
		}
		if ev.VerbalAgreement {
			sum.verbalFlag = true
		}
	}
	return sum
}

func ownerOf(ev *domain.Event) string {
	if ev.OwnerID == "" {
		return domain.UnknownUser
	}
	return ev.OwnerID
}

func contactTransitions(contact string, events []domain.Event, log *zap.Logger) []domain.Transition {
	sum := summarize(events)
	firstCall, verbalAgreement, placement := sum.firstCall, sum.verbalAgreement, sum.placement
	closedWon, verbalFlag := sum.closedWon, sum.verbalFlag

	if firstCall == nil {
		if closedWon {
			log.Warn("Skipping closed-won contact with no first call on record",
				zap.String("contact", contact))
		}
		return nil
	}

	var out []domain.Transition
	emit := func(from, to domain.FunnelStep, user string) {
		if user == "" {
			user = domain.UnknownUser
		}
		out = append(out, domain.Transition{From: from, To: to, User: user, Weight: 1})
	}

	if verbalAgreement != nil {
		// Credit for the verbal-agreement branch goes to whoever secured
		// the agreement.
		emit(domain.StepFirstCall, domain.StepFirstCallVA, verbalAgreement.OwnerID)
		if closedWon {
			emit(domain.StepFirstCallVA, domain.StepSale, verbalAgreement.OwnerID)
		}
	}

	if placement != nil {
		// Entering the placement stage is credited to whoever drove the
		// first call; everything after belongs to the placement owner.
		emit(domain.StepFirstCall, domain.StepPlacement, firstCall.OwnerID)
		switch {
		case verbalFlag:
			emit(domain.StepPlacement, domain.StepPlacementVA, placement.OwnerID)
			if closedWon {
				emit(domain.StepPlacementVA, domain.StepSale, placement.OwnerID)
			}
		case closedWon:
			emit(domain.StepPlacement, domain.StepSale, placement.OwnerID)
		}
	}

	return out
}

// Aggregate sums transition weights by (from, to, user). The result is
// ordered by funnel step, then user, so equal inputs yield equal output.
func Aggregate(transitions []domain.Transition) []domain.Transition {
	type edgeKey struct {
		from domain.FunnelStep
		to   domain.FunnelStep
		user string
	}
	weights := make(map[edgeKey]int)
	for _, t := range transitions {
		weights[edgeKey{t.From, t.To, t.User}] += t.Weight
	}

	out := make([]domain.Transition, 0, len(weights))
	for k, w := range weights {
		out = append(out, domain.Transition{From: k.from, To: k.to, User: k.user, Weight: w})
	}

	order := make(map[domain.FunnelStep]int, len(domain.FunnelSteps))
	for i, step := range domain.FunnelSteps {
		order[step] = i
	}
	sort.Slice(out, func(i, j int) bool {
		if order[out[i].From] != order[out[j].From] {
			return order[out[i].From] < order[out[j].From]
		}
		if order[out[i].To] != order[out[j].To] {
			return order[out[i].To] < order[out[j].To]
		}
		return out[i].User < out[j].User
	})
	return out
}
