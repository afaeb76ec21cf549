// Package report materializes aggregation output for presentation:
// deterministic row ordering and the funnel transition graph.
package report

import (
	"sort"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

// Link is one weighted edge of the funnel graph, referencing nodes by
// index.
type Link struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	User   string `json:"user"`
	Weight int    `json:"weight"`
}

// Graph is the funnel transition graph: the five fixed steps as nodes and
// the aggregated transitions as weighted links.
type Graph struct {
	Nodes []string `json:"nodes"`
	Links []Link   `json:"links"`
}

// SortRows orders daily rows by date, then by dimension tuple, so equal
// tables serialize identically.
func SortRows(rows []domain.DailyRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Dimensions.Key() < rows[j].Dimensions.Key()
	})
}

// BuildFunnelGraph turns aggregated transitions into the presentation
// graph, resolving staff ids to display names. Unresolvable ids fall back
// to the raw id so no credit silently disappears.
func BuildFunnelGraph(transitions []domain.Transition, staff map[string]string) Graph {
	nodes := make([]string, len(domain.FunnelSteps))
	index := make(map[domain.FunnelStep]int, len(domain.FunnelSteps))
	for i, step := range domain.FunnelSteps {
		nodes[i] = string(step)
		index[step] = i
	}

	links := make([]Link, 0, len(transitions))
	for _, t := range transitions {
		links = append(links, Link{
			Source: index[t.From],
			Target: index[t.To],
			User:   resolveUser(t.User, staff),
			Weight: t.Weight,
		})
	}

	return Graph{Nodes: nodes, Links: links}
}

// ResolveStats maps per-user stage stats from staff ids to display names.
func ResolveStats[T any](stats map[string]T, staff map[string]string) map[string]T {
	out := make(map[string]T, len(stats))
	for id, s := range stats {
		out[resolveUser(id, staff)] = s
	}
	return out
}

func resolveUser(id string, staff map[string]string) string {
	if id == domain.UnknownUser || id == "" {
		return domain.UnknownUser
	}
	if name, ok := staff[id]; ok && name != "" {
		return name
	}
	return id
}
