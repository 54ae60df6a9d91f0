package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/racecast/internal/models"
)

// SkewedNormal draws from a two-piece normal centred on mu.
// A standard normal z is scaled by sigmaHigh when z >= 0 and by sigmaLow otherwise.
func SkewedNormal(rng *rand.Rand, mu, sigmaLow, sigmaHigh float64) float64 {
	z := rng.NormFloat64()
	if z >= 0 {
		return mu + z*sigmaHigh
	}
	return mu + z*sigmaLow
}

// Bounds is the plausible physical band for performance models
type Bounds struct {
	MuMin         float64
	MuMax         float64
	MaxSigmaRatio float64
}

// DefaultBounds keeps mu in [9, 13] seconds and both sigmas under half of mu
func DefaultBounds() Bounds {
	return Bounds{
		MuMin:         9.0,
		MuMax:         13.0,
		MaxSigmaRatio: 0.5,
	}
}

// Validate checks the band is usable
func (b Bounds) Validate() error {
	if b.MuMin <= 0 || b.MuMin > b.MuMax {
		return fmt.Errorf("mu band [%v, %v] is invalid", b.MuMin, b.MuMax)
	}
	if b.MaxSigmaRatio <= 0 {
		return fmt.Errorf("max sigma ratio must be positive")
	}
	return nil
}

// Clamp forces a model into the band
func (b Bounds) Clamp(m models.PerformanceModel) models.PerformanceModel {
	m.Mu = math.Min(math.Max(m.Mu, b.MuMin), b.MuMax)

	maxSigma := m.Mu * b.MaxSigmaRatio
	m.SigmaLow = math.Min(math.Max(m.SigmaLow, 0), maxSigma)
	m.SigmaHigh = math.Min(math.Max(m.SigmaHigh, 0), maxSigma)
	return m
}

// InitialModel draws a fresh model with mu uniform in [muMin, muMax]
func InitialModel(rng *rand.Rand, muMin, muMax float64) models.PerformanceModel {
	mu := muMin + rng.Float64()*(muMax-muMin)
	return models.PerformanceModel{
		Mu:        mu,
		SigmaLow:  initSigmaLowRatio * mu,
		SigmaHigh: initSigmaHighRatio * mu,
	}
}
