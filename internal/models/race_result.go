package models

import (
	"fmt"
	"math"
	"sort"
)

// RaceResult is one competitor's outcome in a completed race
type RaceResult struct {
	Name       string  `json:"name" validate:"required"`
	FinishTime float64 `json:"finish_time" validate:"gt=0"`
	Place      int     `json:"place" validate:"gte=1"`
}

// RaceRecord is the persisted outcome of one completed race
type RaceRecord struct {
	RaceIndex int          `json:"race_index" validate:"gte=0"`
	Results   []RaceResult `json:"results" validate:"required,min=1,dive"`
}

// Validate checks the record invariants: finite positive finish times and unique places 1..K
func (r *RaceRecord) Validate() error {
	if r.RaceIndex < 0 {
		return fmt.Errorf("%w: negative race index %d", ErrInvalidRaceRecord, r.RaceIndex)
	}
	if len(r.Results) == 0 {
		return fmt.Errorf("%w: no results", ErrInvalidRaceRecord)
	}

	seen := make(map[int]bool, len(r.Results))
	for _, res := range r.Results {
		if res.FinishTime <= 0 || math.IsInf(res.FinishTime, 0) || math.IsNaN(res.FinishTime) {
			return fmt.Errorf("%w: %s has finish time %v", ErrInvalidRaceRecord, res.Name, res.FinishTime)
		}
		if res.Place < 1 || res.Place > len(r.Results) || seen[res.Place] {
			return fmt.Errorf("%w: %s has place %d", ErrInvalidRaceRecord, res.Name, res.Place)
		}
		seen[res.Place] = true
	}
	return nil
}

// SortedByPlace returns a copy of the results ordered by finishing place
func (r *RaceRecord) SortedByPlace() []RaceResult {
	out := append([]RaceResult{}, r.Results...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Place < out[j].Place
	})
	return out
}

// ResultFor returns the result of the named competitor, if present
func (r *RaceRecord) ResultFor(name string) (RaceResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return RaceResult{}, false
}
