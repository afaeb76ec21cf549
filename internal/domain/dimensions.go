package domain

import "strings"

// UnknownValue is the placeholder for any attribution dimension that could
// not be resolved. Downstream grouping must never see an absent dimension.
const UnknownValue = "unknown"

// DimensionNames lists the attribution dimensions in canonical order.
var DimensionNames = []string{"campaign", "source", "medium", "content", "term"}

// Dimensions is the acquisition-channel tuple attached to every event and
// attribution record.
type Dimensions struct {
	Campaign string `json:"campaign"`
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Content  string `json:"content"`
	Term     string `json:"term"`
}

// Unknown returns a fully populated placeholder tuple.
func Unknown() Dimensions {
	return Dimensions{
		Campaign: UnknownValue,
		Source:   UnknownValue,
		Medium:   UnknownValue,
		Content:  UnknownValue,
		Term:     UnknownValue,
	}
}

// FillUnknown replaces empty fields with the placeholder value.
func (d Dimensions) FillUnknown() Dimensions {
	if d.Campaign == "" {
		d.Campaign = UnknownValue
	}
	if d.Source == "" {
		d.Source = UnknownValue
	}
	if d.Medium == "" {
		d.Medium = UnknownValue
	}
	if d.Content == "" {
		d.Content = UnknownValue
	}
	if d.Term == "" {
		d.Term = UnknownValue
	}
	return d
}

// Get returns a dimension by its canonical name.
func (d Dimensions) Get(name string) string {
	switch name {
	case "campaign":
		return d.Campaign
	case "source":
		return d.Source
	case "medium":
		return d.Medium
	case "content":
		return d.Content
	case "term":
		return d.Term
	}
	return ""
}

// Project keeps only the named dimensions, clearing the rest so rows
// grouped by a subset collapse together.
func (d Dimensions) Project(names []string) Dimensions {
	var p Dimensions
	for _, name := range names {
		switch name {
		case "campaign":
			p.Campaign = d.Campaign
		case "source":
			p.Source = d.Source
		case "medium":
			p.Medium = d.Medium
		case "content":
			p.Content = d.Content
		case "term":
			p.Term = d.Term
		}
	}
	return p
}

// Key returns a stable grouping key for the tuple.
func (d Dimensions) Key() string {
	return strings.Join([]string{d.Campaign, d.Source, d.Medium, d.Content, d.Term}, "|")
}

// ValidDimension reports whether name is one of the canonical dimensions.
func ValidDimension(name string) bool {
	for _, n := range DimensionNames {
		if n == name {
			return true
		}
	}
	return false
}
