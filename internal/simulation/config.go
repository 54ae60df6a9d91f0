package simulation

import (
	"fmt"
	"time"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/models"
)

// Physical and statistical constants of the race model
const (
	NominalDistance = 100.0
	TickSeconds     = 1.0
	MinFinishTime   = 0.1

	speedSigmaLowRatio  = 0.10
	speedSigmaHighRatio = 0.15

	initSigmaLowRatio  = 0.07
	initSigmaHighRatio = 0.12

	singleSigmaLowRatio  = 0.10
	singleSigmaHighRatio = 0.15

	fittedSigmaLowFactor  = 0.7
	fittedSigmaHighFactor = 1.3

	MinProbability = 0.001
	MaxProbability = 0.999
)

// Config holds the engine settings
type Config struct {
	Competitors          []string
	RestInterval         time.Duration
	Rollouts             int
	Workers              int
	MemoryWindow         int
	WarmupRaces          int
	HistoryWindow        int
	Seed                 int64
	Bounds               Bounds
	InitMuMin            float64
	InitMuMax            float64
	ProbabilityPrecision int32
}

// DefaultConfig returns the settings of the classic six-lane sprint
func DefaultConfig() Config {
	return Config{
		Competitors:          []string{"A", "B", "C", "D", "E", "F"},
		RestInterval:         10 * time.Second,
		Rollouts:             1000,
		Workers:              1,
		MemoryWindow:         25,
		WarmupRaces:          3,
		HistoryWindow:        10,
		Bounds:               DefaultBounds(),
		InitMuMin:            9.5,
		InitMuMax:            10.5,
		ProbabilityPrecision: 4,
	}
}

// FromConfig converts app config to engine config
func FromConfig(cfg *config.SimulationConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("simulation config is required")
	}

	c := Config{
		Competitors:   append([]string{}, cfg.Competitors...),
		RestInterval:  cfg.RestInterval,
		Rollouts:      cfg.Rollouts,
		Workers:       cfg.Workers,
		MemoryWindow:  cfg.MemoryWindow,
		WarmupRaces:   cfg.WarmupRaces,
		HistoryWindow: cfg.HistoryWindow,
		Seed:          cfg.Seed,
		Bounds: Bounds{
			MuMin:         cfg.MuMin,
			MuMax:         cfg.MuMax,
			MaxSigmaRatio: cfg.MaxSigmaRatio,
		},
		InitMuMin:            cfg.InitMuMin,
		InitMuMax:            cfg.InitMuMax,
		ProbabilityPrecision: int32(cfg.ProbabilityPrecision),
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}

	return c, c.Validate()
}

// Validate validates engine config parameters
func (c Config) Validate() error {
	if len(c.Competitors) < 2 {
		return fmt.Errorf("at least two competitors are required")
	}
	seen := make(map[string]bool, len(c.Competitors))
	for _, name := range c.Competitors {
		id := models.CompetitorID(name)
		if id == "" {
			return fmt.Errorf("competitor names cannot be empty")
		}
		if seen[id] {
			return fmt.Errorf("duplicate competitor %q", name)
		}
		seen[id] = true
	}
	if c.RestInterval < 0 {
		return fmt.Errorf("rest interval cannot be negative")
	}
	if c.Rollouts <= 0 {
		return fmt.Errorf("rollouts must be positive")
	}
	if c.MemoryWindow <= 0 {
		return fmt.Errorf("memory window must be positive")
	}
	if c.WarmupRaces < 0 {
		return fmt.Errorf("warm-up races cannot be negative")
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive")
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.InitMuMin <= 0 || c.InitMuMin > c.InitMuMax {
		return fmt.Errorf("initial mu band [%v, %v] is invalid", c.InitMuMin, c.InitMuMax)
	}
	return nil
}
