package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/racecast/internal/models"
)

// ForecastInput is the live race snapshot handed to the forecaster.
// All slices are indexed like the roster.
type ForecastInput struct {
	IDs       []string
	Models    []models.PerformanceModel
	Distances []float64
	Elapsed   float64
}

// PairKey is an ordered competitor pair: First finishes first and Second finishes second
type PairKey struct {
	First  string
	Second string
}

// JointKey is a joint rank assignment of two competitors; ranks are 1-based
type JointKey struct {
	First      string
	FirstRank  int
	Second     string
	SecondRank int
}

// ForecastStats holds rollout frequencies for one tick
type ForecastStats struct {
	IDs      []string
	Rollouts int
	// RankProbabilities[i][r] is the chance competitor i finishes in rank r+1
	RankProbabilities [][]float64
	TopTwo            map[PairKey]float64
	Joint             map[JointKey]float64
}

// TopTwoProbability returns the chance first wins and second is runner-up.
// Unknown competitors yield 0.
func (s *ForecastStats) TopTwoProbability(first, second string) float64 {
	return s.TopTwo[PairKey{First: first, Second: second}]
}

// JointProbability returns the chance first holds firstRank while second holds secondRank
func (s *ForecastStats) JointProbability(first string, firstRank int, second string, secondRank int) float64 {
	return s.Joint[JointKey{First: first, FirstRank: firstRank, Second: second, SecondRank: secondRank}]
}

// Forecaster estimates finishing-order probabilities by rollout
type Forecaster struct {
	Rollouts int
	Workers  int
}

// NewForecaster creates a forecaster; workers below 2 runs rollouts inline
func NewForecaster(rollouts, workers int) *Forecaster {
	if workers < 1 {
		workers = 1
	}
	return &Forecaster{
		Rollouts: rollouts,
		Workers:  workers,
	}
}

// tally accumulates raw rollout counts
type tally struct {
	k      int
	places []int // k*k, competitor-major
	topTwo []int // k*k, first-major
	joint  []int // k^4, indexed by (a, rankA, b, rankB)
}

func newTally(k int) *tally {
	return &tally{
		k:      k,
		places: make([]int, k*k),
		topTwo: make([]int, k*k),
		joint:  make([]int, k*k*k*k),
	}
}

func (t *tally) jointIndex(a, ra, b, rb int) int {
	k := t.k
	return ((a*k+ra)*k+b)*k + rb
}

func (t *tally) record(order []int) {
	k := t.k
	for rank, idx := range order {
		t.places[idx*k+rank]++
	}
	if k >= 2 {
		t.topTwo[order[0]*k+order[1]]++
	}
	for p := 0; p < k; p++ {
		for q := 0; q < k; q++ {
			if p != q {
				t.joint[t.jointIndex(order[p], p, order[q], q)]++
			}
		}
	}
}

func (t *tally) merge(o *tally) {
	for i, v := range o.places {
		t.places[i] += v
	}
	for i, v := range o.topTwo {
		t.topTwo[i] += v
	}
	for i, v := range o.joint {
		t.joint[i] += v
	}
}

// Forecast runs the configured number of rollouts from the given snapshot.
// With more than one worker the rollouts are split statically and every worker
// gets its own generator seeded from rng, so a seeded rng gives repeatable output.
func (f *Forecaster) Forecast(ctx context.Context, rng *rand.Rand, in ForecastInput) (*ForecastStats, error) {
	if err := f.validate(in); err != nil {
		return nil, err
	}
	k := len(in.IDs)

	workers := f.Workers
	if workers > f.Rollouts {
		workers = f.Rollouts
	}

	if workers <= 1 {
		return f.forecastInline(rng, in), nil
	}

	seeds := make([]int64, workers)
	for w := range seeds {
		seeds[w] = rng.Int63()
	}

	partial := make([]*tally, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		n := f.Rollouts / workers
		if w < f.Rollouts%workers {
			n++
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := newTally(k)
			runRollouts(rand.New(rand.NewSource(seeds[w])), in, n, t)
			partial[w] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast rollouts: %w", err)
	}

	total := newTally(k)
	for _, t := range partial {
		total.merge(t)
	}
	return buildStats(in.IDs, f.Rollouts, total), nil
}

// ForecastInline runs every rollout on the calling goroutine.
// It ignores cancellation, so it always completes.
func (f *Forecaster) ForecastInline(rng *rand.Rand, in ForecastInput) (*ForecastStats, error) {
	if err := f.validate(in); err != nil {
		return nil, err
	}
	return f.forecastInline(rng, in), nil
}

func (f *Forecaster) forecastInline(rng *rand.Rand, in ForecastInput) *ForecastStats {
	t := newTally(len(in.IDs))
	runRollouts(rng, in, f.Rollouts, t)
	return buildStats(in.IDs, f.Rollouts, t)
}

func (f *Forecaster) validate(in ForecastInput) error {
	k := len(in.IDs)
	if k == 0 {
		return fmt.Errorf("forecast requires at least one competitor")
	}
	if len(in.Models) != k || len(in.Distances) != k {
		return fmt.Errorf("forecast input mismatch: %d ids, %d models, %d distances", k, len(in.Models), len(in.Distances))
	}
	if f.Rollouts <= 0 {
		return fmt.Errorf("rollouts must be positive")
	}
	return nil
}

// runRollouts projects every unfinished runner's finish n times.
// A finished runner is pinned at the current elapsed time.
func runRollouts(rng *rand.Rand, in ForecastInput, n int, t *tally) {
	k := len(in.IDs)
	projected := make([]float64, k)
	order := make([]int, k)

	for s := 0; s < n; s++ {
		for i := 0; i < k; i++ {
			if in.Distances[i] >= NominalDistance {
				projected[i] = in.Elapsed
				continue
			}
			m := in.Models[i]
			full := math.Max(SkewedNormal(rng, m.Mu, m.SigmaLow, m.SigmaHigh), MinFinishTime)
			done := math.Min(in.Distances[i]/NominalDistance, 1)
			projected[i] = in.Elapsed + full*(1-done)
		}

		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return projected[order[a]] < projected[order[b]]
		})
		t.record(order)
	}
}

func buildStats(ids []string, rollouts int, t *tally) *ForecastStats {
	k := len(ids)
	n := float64(rollouts)
	stats := &ForecastStats{
		IDs:               append([]string{}, ids...),
		Rollouts:          rollouts,
		RankProbabilities: make([][]float64, k),
		TopTwo:            make(map[PairKey]float64, k*(k-1)),
		Joint:             make(map[JointKey]float64),
	}

	for i := 0; i < k; i++ {
		row := make([]float64, k)
		for r := 0; r < k; r++ {
			row[r] = float64(t.places[i*k+r]) / n
		}
		stats.RankProbabilities[i] = row
	}

	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			if a == b {
				continue
			}
			stats.TopTwo[PairKey{First: ids[a], Second: ids[b]}] = float64(t.topTwo[a*k+b]) / n
		}
	}

	for a := 0; a < k; a++ {
		for ra := 0; ra < k; ra++ {
			for b := 0; b < k; b++ {
				for rb := 0; rb < k; rb++ {
					c := t.joint[t.jointIndex(a, ra, b, rb)]
					if c == 0 {
						continue
					}
					stats.Joint[JointKey{First: ids[a], FirstRank: ra + 1, Second: ids[b], SecondRank: rb + 1}] = float64(c) / n
				}
			}
		}
	}
	return stats
}
