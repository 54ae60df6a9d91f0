package simulation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racecast/internal/models"
)

func testRoster(names ...string) []*models.Competitor {
	roster := make([]*models.Competitor, len(names))
	for i, name := range names {
		mu := 9.6 + 0.2*float64(i)
		roster[i] = models.NewCompetitor(name, models.PerformanceModel{
			Mu:        mu,
			SigmaLow:  0.07 * mu,
			SigmaHigh: 0.12 * mu,
		})
	}
	return roster
}

func TestStepRunsToCompletion(t *testing.T) {
	roster := testRoster("A", "B", "C", "D", "E", "F")
	rng := rand.New(rand.NewSource(42))
	var state RaceState
	state.Start(len(roster))

	complete := false
	for i := 0; i < 100 && !complete; i++ {
		complete = Step(&state, roster, rng)
	}
	require.True(t, complete, "race should finish")

	seen := make(map[int]bool)
	results := Standings(&state, roster)
	require.Len(t, results, 6)
	for _, r := range results {
		assert.Greater(t, r.FinishTime, 0.0)
		assert.GreaterOrEqual(t, r.Place, 1)
		assert.LessOrEqual(t, r.Place, 6)
		assert.False(t, seen[r.Place], "place %d assigned twice", r.Place)
		seen[r.Place] = true
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].FinishTime, results[i].FinishTime)
	}
	for _, r := range state.Runners {
		assert.Equal(t, NominalDistance, r.Distance)
	}

	record := models.RaceRecord{RaceIndex: 0, Results: results}
	assert.NoError(t, record.Validate())
}

func TestStepInterpolatesFinish(t *testing.T) {
	roster := testRoster("A", "B")
	rng := rand.New(rand.NewSource(3))
	state := RaceState{Phase: PhaseRunning, Elapsed: 5, Runners: []RunnerProgress{
		{Distance: 99.9},
		{Distance: 10},
	}}

	complete := Step(&state, roster, rng)

	assert.False(t, complete)
	require.True(t, state.Runners[0].Finished())
	assert.Greater(t, *state.Runners[0].FinishTime, 5.0)
	assert.Less(t, *state.Runners[0].FinishTime, 6.0)
	assert.False(t, state.Runners[1].Finished())
	assert.Greater(t, state.Runners[1].Distance, 10.0)
	assert.Equal(t, 6.0, state.Elapsed)
}

func TestStepLeavesFinishedRunners(t *testing.T) {
	roster := testRoster("A", "B")
	rng := rand.New(rand.NewSource(3))
	ft := 9.4
	state := RaceState{Phase: PhaseRunning, Elapsed: 10, Runners: []RunnerProgress{
		{Distance: NominalDistance, FinishTime: &ft},
		{Distance: 95},
	}}

	for !Step(&state, roster, rng) {
	}

	assert.Equal(t, 9.4, *state.Runners[0].FinishTime)
	assert.Greater(t, *state.Runners[1].FinishTime, 10.0)
}

func TestCurrentPlaces(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		want      []int
	}{
		{"distinct", []float64{10, 30, 20}, []int{3, 1, 2}},
		{"ties keep roster order", []float64{10, 10, 5}, []int{1, 2, 3}},
		{"strict leader is first", []float64{40, 41, 12, 39}, []int{2, 1, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := RaceState{Runners: make([]RunnerProgress, len(tt.distances))}
			for i, d := range tt.distances {
				state.Runners[i].Distance = d
			}
			assert.Equal(t, tt.want, state.CurrentPlaces())
		})
	}
}

func TestRaceStateClone(t *testing.T) {
	ft := 9.9
	state := RaceState{Phase: PhaseRunning, Runners: []RunnerProgress{{Distance: 100, FinishTime: &ft}}}

	clone := state.Clone()
	*clone.Runners[0].FinishTime = 1
	clone.Runners[0].Distance = 3

	assert.Equal(t, 9.9, *state.Runners[0].FinishTime)
	assert.Equal(t, 100.0, state.Runners[0].Distance)
	assert.Equal(t, "running", clone.Phase.String())
}
