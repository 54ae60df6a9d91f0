package simulation

import (
	"math"

	"github.com/yourusername/racecast/internal/models"
)

// Estimator refits performance models from recent race results
type Estimator struct {
	MemoryWindow int
	Bounds       Bounds
}

// NewEstimator creates an estimator over the given window
func NewEstimator(memoryWindow int, bounds Bounds) *Estimator {
	return &Estimator{
		MemoryWindow: memoryWindow,
		Bounds:       bounds,
	}
}

// Fit computes a clamped model from results ordered oldest first.
// It returns current unchanged when there are no results.
func (e *Estimator) Fit(results []models.RaceResult, current models.PerformanceModel) models.PerformanceModel {
	if len(results) == 0 {
		return current
	}
	if e.MemoryWindow > 0 && len(results) > e.MemoryWindow {
		results = results[len(results)-e.MemoryWindow:]
	}

	n := len(results)
	if n == 1 {
		ft := results[0].FinishTime
		return e.Bounds.Clamp(models.PerformanceModel{
			Mu:        ft,
			SigmaLow:  singleSigmaLowRatio * ft,
			SigmaHigh: singleSigmaHighRatio * ft,
		})
	}

	// index 0 is the most recent result
	weights := make([]float64, n)
	times := make([]float64, n)
	var sumW, sumWT float64
	for i := 0; i < n; i++ {
		w := math.Max(1-float64(i)/float64(n-1), 0)
		ft := results[n-1-i].FinishTime
		weights[i] = w
		times[i] = ft
		sumW += w
		sumWT += w * ft
	}

	mu := sumWT / sumW
	var variance float64
	for i := range times {
		d := times[i] - mu
		variance += weights[i] * d * d
	}
	std := math.Sqrt(variance / sumW)

	return e.Bounds.Clamp(models.PerformanceModel{
		Mu:        mu,
		SigmaLow:  fittedSigmaLowFactor * std,
		SigmaHigh: fittedSigmaHighFactor * std,
	})
}

// ApplyRace appends each roster member's result to its history and,
// when refit is set, recomputes the model of every competitor with history.
// Results naming competitors outside the roster are ignored.
func (e *Estimator) ApplyRace(roster []*models.Competitor, results []models.RaceResult, refit bool) {
	byName := make(map[string]models.RaceResult, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	for _, c := range roster {
		if r, ok := byName[c.Name]; ok {
			c.AppendResult(r)
		}
	}

	if !refit {
		return
	}
	for _, c := range roster {
		if len(c.History) == 0 {
			continue
		}
		c.Model = e.Fit(c.RecentResults(e.MemoryWindow), c.Model)
	}
}
