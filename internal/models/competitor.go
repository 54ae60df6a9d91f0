package models

import "strings"

// PerformanceModel holds the latent full-distance finish time distribution of a competitor.
// SigmaLow spreads finishes faster than Mu, SigmaHigh spreads finishes slower than Mu.
type PerformanceModel struct {
	Mu        float64 `json:"mu"`
	SigmaLow  float64 `json:"sigma_low"`
	SigmaHigh float64 `json:"sigma_high"`
}

// Competitor represents a roster member in the repeating race
type Competitor struct {
	Name    string           `json:"name"`
	Model   PerformanceModel `json:"model"`
	History []RaceResult     `json:"history"` // oldest first
}

// NewCompetitor creates a competitor with an empty history
func NewCompetitor(name string, model PerformanceModel) *Competitor {
	return &Competitor{
		Name:    name,
		Model:   model,
		History: []RaceResult{},
	}
}

// ID returns the stable identity used on the wire
func (c *Competitor) ID() string {
	return CompetitorID(c.Name)
}

// AppendResult records a finished race result
func (c *Competitor) AppendResult(result RaceResult) {
	c.History = append(c.History, result)
}

// RecentResults returns at most window most recent results, oldest first
func (c *Competitor) RecentResults(window int) []RaceResult {
	if window <= 0 || len(c.History) <= window {
		return c.History
	}
	return c.History[len(c.History)-window:]
}

// CompetitorID normalizes a competitor name into its wire identity
func CompetitorID(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
