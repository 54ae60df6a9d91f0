package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDistribution(t *testing.T, row []float64) {
	t.Helper()
	var sum float64
	for _, p := range row {
		require.GreaterOrEqual(t, p, MinProbability)
		require.LessOrEqual(t, p, MaxProbability)
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestClampProbability(t *testing.T) {
	assert.Equal(t, MinProbability, ClampProbability(0))
	assert.Equal(t, MinProbability, ClampProbability(-3))
	assert.Equal(t, MinProbability, ClampProbability(math.NaN()))
	assert.Equal(t, MaxProbability, ClampProbability(1))
	assert.Equal(t, 0.42, ClampProbability(0.42))
}

func TestClampAndNormalize(t *testing.T) {
	t.Run("certain winner", func(t *testing.T) {
		row := ClampAndNormalize([]float64{1, 0, 0, 0, 0, 0})
		assertDistribution(t, row)
		assert.InDelta(t, 0.995, row[0], 1e-9)
		for _, p := range row[1:] {
			assert.InDelta(t, MinProbability, p, 1e-12)
		}
	})

	t.Run("already valid row is unchanged", func(t *testing.T) {
		row := ClampAndNormalize([]float64{0.5, 0.3, 0.2})
		assert.InDeltaSlice(t, []float64{0.5, 0.3, 0.2}, row, 1e-12)
	})

	t.Run("all zero falls back to uniform", func(t *testing.T) {
		row := ClampAndNormalize([]float64{0, 0, 0, 0})
		assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, row)
	})

	t.Run("negative row falls back to uniform", func(t *testing.T) {
		row := ClampAndNormalize([]float64{-1, -0.5})
		assert.Equal(t, []float64{0.5, 0.5}, row)
	})

	t.Run("two competitors", func(t *testing.T) {
		row := ClampAndNormalize([]float64{1, 0})
		assertDistribution(t, row)
		assert.InDelta(t, MaxProbability, row[0], 1e-12)
	})

	t.Run("empty row", func(t *testing.T) {
		assert.Empty(t, ClampAndNormalize(nil))
	})
}

func TestClampAndNormalizeRandomRows(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 500; i++ {
		k := 2 + rng.Intn(7)
		row := make([]float64, k)
		var sum float64
		for j := range row {
			if rng.Float64() < 0.4 {
				continue
			}
			row[j] = rng.Float64()
			sum += row[j]
		}
		if sum > 0 {
			for j := range row {
				row[j] /= sum
			}
		}
		assertDistribution(t, ClampAndNormalize(row))
	}
}

func TestRoundRow(t *testing.T) {
	t.Run("uniform row keeps summing to one", func(t *testing.T) {
		uniform := ClampAndNormalize([]float64{1, 1, 1, 1, 1, 1})
		row := RoundRow(uniform, 4)
		assertDistribution(t, row)
		assert.Equal(t, 0.1665, row[0])
		for _, p := range row[1:] {
			assert.Equal(t, 0.1667, p)
		}
	})

	t.Run("pinned entries stay in band", func(t *testing.T) {
		row := RoundRow(ClampAndNormalize([]float64{1, 0, 0, 0, 0, 0}), 4)
		assertDistribution(t, row)
		assert.Equal(t, 0.995, row[0])
	})

	t.Run("coarse precision leaves the row unrounded", func(t *testing.T) {
		in := ClampAndNormalize([]float64{1, 0, 0})
		assert.Equal(t, in, RoundRow(in, 2))
	})

	t.Run("zero places is a copy", func(t *testing.T) {
		in := []float64{0.5, 0.3, 0.2}
		out := RoundRow(in, 0)
		assert.Equal(t, in, out)
		out[0] = 0
		assert.Equal(t, 0.5, in[0])
	})

	t.Run("random rows", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		for i := 0; i < 500; i++ {
			raw := make([]float64, 2+rng.Intn(7))
			for j := range raw {
				raw[j] = rng.Float64()
			}
			row := RoundRow(ClampAndNormalize(raw), 4)
			assertDistribution(t, row)
			for _, p := range row {
				assert.InDelta(t, p, math.Round(p*1e4)/1e4, 1e-12)
			}
		}
	})
}
