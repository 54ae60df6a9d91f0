package simulation

import (
	"math"

	"github.com/yourusername/racecast/internal/models"
)

// ClampProbability forces p into [MinProbability, MaxProbability]
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) || p < MinProbability {
		return MinProbability
	}
	if p > MaxProbability {
		return MaxProbability
	}
	return p
}

// ClampAndNormalize turns a raw rank distribution into one that sums to 1
// with every entry inside [MinProbability, MaxProbability].
// Entries pushed past a bound by rescaling are pinned there and the remainder
// is spread over the others. A row with no positive entry becomes uniform.
func ClampAndNormalize(raw []float64) []float64 {
	k := len(raw)
	out := make([]float64, k)
	if k == 0 {
		return out
	}

	positive := false
	for i, p := range raw {
		out[i] = ClampProbability(p)
		if p > 0 {
			positive = true
		}
	}
	if !positive {
		for i := range out {
			out[i] = 1 / float64(k)
		}
		return out
	}

	pinned := make([]bool, k)
	for round := 0; round <= k; round++ {
		var pinnedSum, freeSum float64
		for i, v := range out {
			if pinned[i] {
				pinnedSum += v
			} else {
				freeSum += v
			}
		}
		if freeSum <= 0 {
			break
		}

		scale := (1 - pinnedSum) / freeSum
		changed := false
		for i := range out {
			if pinned[i] {
				continue
			}
			v := out[i] * scale
			switch {
			case v > MaxProbability:
				v = MaxProbability
				pinned[i] = true
				changed = true
			case v < MinProbability:
				v = MinProbability
				pinned[i] = true
				changed = true
			}
			out[i] = v
		}
		if !changed {
			break
		}
	}
	return out
}

// RoundRow rounds a normalized row to places decimals and puts the rounding
// remainder on the largest entry so the row still sums to 1.
// If that would push an entry out of [MinProbability, MaxProbability] the
// row is returned unrounded.
func RoundRow(row []float64, places int32) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	if places <= 0 || len(row) == 0 {
		return out
	}

	largest := 0
	var sum float64
	for i, p := range row {
		out[i] = models.RoundProbability(p, places)
		sum += out[i]
		if out[i] > out[largest] {
			largest = i
		}
	}
	out[largest] = models.RoundProbability(out[largest]+(1-sum), places)

	for _, p := range out {
		if p < MinProbability || p > MaxProbability {
			copy(out, row)
			return out
		}
	}
	return out
}
