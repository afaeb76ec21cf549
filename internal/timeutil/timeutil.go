// Package timeutil normalizes timestamps from heterogeneous sources onto
// calendar dates in a single reference time zone. Every comparison in the
// pipeline (watermarks, daily buckets, resampling) happens on these dates,
// so naive and zone-aware source timestamps never meet directly.
package timeutil

import "time"

// Day truncates t to midnight of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns the midnight following d.
func NextDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

// EachDay calls fn for every calendar day from from through to, inclusive.
// Both bounds are expected to be midnights from Day.
func EachDay(from, to time.Time, fn func(time.Time)) {
	for d := from; !d.After(to); d = NextDay(d) {
		fn(d)
	}
}
