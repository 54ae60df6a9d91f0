package simulation

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racecast/internal/models"
)

func forecastInput(distances ...float64) ForecastInput {
	ids := []string{"a", "b", "c", "d", "e", "f"}[:len(distances)]
	in := ForecastInput{
		IDs:       ids,
		Models:    make([]models.PerformanceModel, len(distances)),
		Distances: distances,
		Elapsed:   4,
	}
	for i := range in.Models {
		mu := 9.8 + 0.1*float64(i)
		in.Models[i] = models.PerformanceModel{Mu: mu, SigmaLow: 0.07 * mu, SigmaHigh: 0.12 * mu}
	}
	return in
}

func TestForecastDistributions(t *testing.T) {
	f := NewForecaster(1000, 1)
	stats, err := f.Forecast(context.Background(), rand.New(rand.NewSource(1)), forecastInput(40, 42, 38, 41, 39, 40))
	require.NoError(t, err)
	require.Len(t, stats.RankProbabilities, 6)

	rankTotals := make([]float64, 6)
	for _, row := range stats.RankProbabilities {
		require.Len(t, row, 6)
		var sum float64
		for r, p := range row {
			sum += p
			rankTotals[r] += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
	for _, total := range rankTotals {
		assert.InDelta(t, 1.0, total, 1e-9)
	}

	var pairTotal float64
	for key, p := range stats.TopTwo {
		assert.NotEqual(t, key.First, key.Second)
		pairTotal += p
	}
	assert.InDelta(t, 1.0, pairTotal, 1e-9)
	assert.Len(t, stats.TopTwo, 30)
}

func TestForecastJointMatchesTopTwo(t *testing.T) {
	f := NewForecaster(500, 1)
	stats, err := f.Forecast(context.Background(), rand.New(rand.NewSource(5)), forecastInput(10, 12, 11))
	require.NoError(t, err)

	for _, a := range stats.IDs {
		for _, b := range stats.IDs {
			if a == b {
				continue
			}
			assert.InDelta(t, stats.TopTwoProbability(a, b), stats.JointProbability(a, 1, b, 2), 1e-12)
		}
	}
	assert.Zero(t, stats.JointProbability("a", 1, "a", 2))
	assert.Zero(t, stats.TopTwoProbability("a", "zz"))
}

func TestForecastFinishedRunnerIsPinned(t *testing.T) {
	f := NewForecaster(500, 1)
	in := forecastInput(NominalDistance, 50, 60)
	in.Elapsed = 8

	stats, err := f.Forecast(context.Background(), rand.New(rand.NewSource(2)), in)
	require.NoError(t, err)

	assert.Equal(t, 1.0, stats.RankProbabilities[0][0])
	assert.InDelta(t, 1.0, stats.TopTwoProbability("a", "b")+stats.TopTwoProbability("a", "c"), 1e-9)
}

func TestForecastLeaderFavoured(t *testing.T) {
	f := NewForecaster(1000, 1)
	stats, err := f.Forecast(context.Background(), rand.New(rand.NewSource(9)), forecastInput(90, 10, 12, 8))
	require.NoError(t, err)

	assert.Greater(t, stats.RankProbabilities[0][0], 0.99)
}

func TestForecastSeededIsRepeatable(t *testing.T) {
	in := forecastInput(30, 33, 29, 31, 35, 28)

	for _, workers := range []int{1, 4} {
		f := NewForecaster(1000, workers)
		first, err := f.Forecast(context.Background(), rand.New(rand.NewSource(77)), in)
		require.NoError(t, err)
		second, err := f.Forecast(context.Background(), rand.New(rand.NewSource(77)), in)
		require.NoError(t, err)

		assert.Equal(t, first, second, "workers=%d", workers)
		assert.Equal(t, 1000, first.Rollouts)
	}
}

func TestForecastParallelDistributions(t *testing.T) {
	f := NewForecaster(1001, 4)
	stats, err := f.Forecast(context.Background(), rand.New(rand.NewSource(3)), forecastInput(20, 22, 21, 25))
	require.NoError(t, err)

	for _, row := range stats.RankProbabilities {
		var sum float64
		for _, p := range row {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestForecastCancelledContext(t *testing.T) {
	in := forecastInput(20, 22, 21, 25)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewForecaster(1000, 4).Forecast(ctx, rand.New(rand.NewSource(3)), in)
	assert.ErrorIs(t, err, context.Canceled)

	stats, err := NewForecaster(1000, 4).ForecastInline(rand.New(rand.NewSource(3)), in)
	require.NoError(t, err)
	assert.Len(t, stats.RankProbabilities, 4)

	inline, err := NewForecaster(1000, 1).Forecast(ctx, rand.New(rand.NewSource(3)), in)
	require.NoError(t, err)
	assert.Equal(t, stats, inline)
}

func TestForecastRejectsMismatchedInput(t *testing.T) {
	f := NewForecaster(10, 1)
	in := forecastInput(1, 2, 3)
	in.Distances = in.Distances[:2]

	_, err := f.Forecast(context.Background(), rand.New(rand.NewSource(1)), in)
	assert.Error(t, err)

	_, err = f.Forecast(context.Background(), rand.New(rand.NewSource(1)), ForecastInput{})
	assert.Error(t, err)
}

func TestSkewedNormalAsymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	var above, below, n float64
	for i := 0; i < 20000; i++ {
		v := SkewedNormal(rng, 10, 0.5, 1.5)
		if v >= 10 {
			above += v - 10
		} else {
			below += 10 - v
		}
		n++
	}
	assert.Greater(t, above/n, 2*below/n)
}

func BenchmarkForecast(b *testing.B) {
	in := forecastInput(30, 33, 29, 31, 35, 28)
	f := NewForecaster(1000, 1)
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Forecast(context.Background(), rng, in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkForecastParallel(b *testing.B) {
	in := forecastInput(30, 33, 29, 31, 35, 28)
	f := NewForecaster(1000, 4)
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Forecast(context.Background(), rng, in); err != nil {
			b.Fatal(err)
		}
	}
}
