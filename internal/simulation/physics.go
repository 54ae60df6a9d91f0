package simulation

import (
	"math/rand"
	"sort"

	"github.com/yourusername/racecast/internal/models"
)

// Step advances every unfinished runner by one tick and reports whether all have finished.
// A runner reaching the line gets a finish time interpolated within the tick.
func Step(state *RaceState, roster []*models.Competitor, rng *rand.Rand) bool {
	for i := range state.Runners {
		r := &state.Runners[i]
		if r.Finished() {
			continue
		}

		base := NominalDistance / roster[i].Model.Mu
		speed := SkewedNormal(rng, base, speedSigmaLowRatio*base, speedSigmaHighRatio*base)
		if speed < 0 {
			speed = 0
		}

		next := r.Distance + speed*TickSeconds
		if next >= NominalDistance {
			finish := state.Elapsed + (NominalDistance-r.Distance)/speed
			r.FinishTime = &finish
			r.Distance = NominalDistance
			continue
		}
		r.Distance = next
	}

	state.Elapsed += TickSeconds
	return state.AllFinished()
}

// Standings converts a finished race into results ordered by finish time.
// Equal times keep roster order.
func Standings(state *RaceState, roster []*models.Competitor) []models.RaceResult {
	results := make([]models.RaceResult, 0, len(state.Runners))
	for i, r := range state.Runners {
		ft := state.Elapsed
		if r.FinishTime != nil {
			ft = *r.FinishTime
		}
		results = append(results, models.RaceResult{
			Name:       roster[i].Name,
			FinishTime: ft,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].FinishTime < results[b].FinishTime
	})
	for i := range results {
		results[i].Place = i + 1
	}
	return results
}
