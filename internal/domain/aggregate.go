package domain

import "time"

// DailyRow is one (date, dimension-tuple) bucket of the unified attribution
// table: conversion-stage counts plus numeric metrics summed from source
// events matching the tuple on that date.
type DailyRow struct {
	Date       time.Time
	Dimensions Dimensions

	FirstCalls          int64
	VerbalAgreements    int64
	PlacementsScheduled int64
	Sales               int64
	Pageviews           int64

	Spend       float64
	Clicks      int64
	Impressions int64
	Sessions    int64
}

// IsZero reports whether the row carries no counts or metrics, i.e. it was
// produced by gap filling.
func (r DailyRow) IsZero() bool {
	return r.FirstCalls == 0 && r.VerbalAgreements == 0 &&
		r.PlacementsScheduled == 0 && r.Sales == 0 && r.Pageviews == 0 &&
		r.Spend == 0 && r.Clicks == 0 && r.Impressions == 0 && r.Sessions == 0
}
