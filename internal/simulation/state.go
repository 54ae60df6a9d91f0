package simulation

import (
	"sort"
	"time"
)

// Phase is the lifecycle state of the race
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	default:
		return "unknown"
	}
}

// RunnerProgress is the live position of one competitor
type RunnerProgress struct {
	Distance   float64
	FinishTime *float64 // nil until the runner crosses the line
}

// Finished reports whether the runner has crossed the line
func (r RunnerProgress) Finished() bool {
	return r.FinishTime != nil
}

// RaceState is the engine's mutable race state; Runners is indexed like the roster
type RaceState struct {
	Phase     Phase
	Runners   []RunnerProgress
	Elapsed   float64
	NextStart time.Time
}

// Start resets the state for a fresh race of k runners
func (s *RaceState) Start(k int) {
	s.Phase = PhaseRunning
	s.Runners = make([]RunnerProgress, k)
	s.Elapsed = 0
}

// Finish drops per-race data and schedules the next start
func (s *RaceState) Finish(nextStart time.Time) {
	s.Phase = PhaseIdle
	s.Runners = nil
	s.Elapsed = 0
	s.NextStart = nextStart
}

// AllFinished reports whether every runner has a finish time
func (s *RaceState) AllFinished() bool {
	for _, r := range s.Runners {
		if !r.Finished() {
			return false
		}
	}
	return len(s.Runners) > 0
}

// Distances returns a copy of the covered distances
func (s *RaceState) Distances() []float64 {
	out := make([]float64, len(s.Runners))
	for i, r := range s.Runners {
		out[i] = r.Distance
	}
	return out
}

// CurrentPlaces ranks runners by distance descending, ties kept in roster order.
// The returned slice holds the 1-based place of each runner.
func (s *RaceState) CurrentPlaces() []int {
	order := make([]int, len(s.Runners))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Runners[order[a]].Distance > s.Runners[order[b]].Distance
	})

	places := make([]int, len(s.Runners))
	for rank, idx := range order {
		places[idx] = rank + 1
	}
	return places
}

// Clone returns a deep copy safe to hand to callers
func (s *RaceState) Clone() RaceState {
	c := *s
	if s.Runners != nil {
		c.Runners = make([]RunnerProgress, len(s.Runners))
		for i, r := range s.Runners {
			c.Runners[i].Distance = r.Distance
			if r.FinishTime != nil {
				ft := *r.FinishTime
				c.Runners[i].FinishTime = &ft
			}
		}
	}
	return c
}
