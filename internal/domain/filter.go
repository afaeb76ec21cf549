package domain

import "time"

// FilterKind discriminates the filter variants. Filters are dispatched on
// this tag, never on the runtime type of their values.
type FilterKind int

const (
	// FilterKindRange restricts the event date to [From, To].
	FilterKindRange FilterKind = iota + 1
	// FilterKindIn restricts a dimension to a value set.
	FilterKindIn
	// FilterKindEquals restricts a boolean event flag.
	FilterKindEquals
)

// Filter is a tagged filter variant applied to events before aggregation.
// Field names a dimension for FilterKindIn, or a flag ("verbal_agreement")
// for FilterKindEquals; it is ignored for FilterKindRange.
type Filter struct {
	Kind   FilterKind
	Field  string
	From   time.Time
	To     time.Time
	Values []string
	Equals bool
}

// DateRange builds a range filter over the event date.
func DateRange(from, to time.Time) Filter {
	return Filter{Kind: FilterKindRange, From: from, To: to}
}

// In builds a set-membership filter over a dimension.
func In(field string, values ...string) Filter {
	return Filter{Kind: FilterKindIn, Field: field, Values: values}
}

// Equals builds a boolean-equality filter over an event flag.
func Equals(field string, value bool) Filter {
	return Filter{Kind: FilterKindEquals, Field: field, Equals: value}
}

// Match reports whether the event passes the filter.
func (f Filter) Match(e Event) bool {
	switch f.Kind {
	case FilterKindRange:
		if !f.From.IsZero() && e.Date.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && e.Date.After(f.To) {
			return false
		}
		return true
	case FilterKindIn:
		if len(f.Values) == 0 {
			return true
		}
		have := e.Dimensions.Get(f.Field)
		for _, v := range f.Values {
			if have == v {
				return true
			}
		}
		return false
	case FilterKindEquals:
		switch f.Field {
		case "verbal_agreement":
			return e.VerbalAgreement == f.Equals
		case "closed_won":
			return (e.DealStage == DealStageClosedWon) == f.Equals
		}
		return true
	}
	return true
}
