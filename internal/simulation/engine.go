package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/racecast/internal/logger"
	"github.com/yourusername/racecast/internal/metrics"
	"github.com/yourusername/racecast/internal/models"
)

// HistoryStore is the part of the race history store the engine depends on
type HistoryStore interface {
	LoadAll(ctx context.Context) ([]models.RaceRecord, error)
	LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error)
	Append(ctx context.Context, record models.RaceRecord) error
}

// Status is a point-in-time view of the engine
type Status struct {
	Initialized bool
	Phase       Phase
	RaceIndex   int
	NextStart   time.Time
	Elapsed     float64
}

// Engine runs the repeating race: it steps physics, forecasts outcomes,
// refits competitor models and records finished races.
type Engine struct {
	cfg        Config
	history    HistoryStore
	estimator  *Estimator
	forecaster *Forecaster
	rng        *rand.Rand
	log        *logger.RaceLogger

	mu          sync.Mutex
	initialized bool
	roster      []*models.Competitor
	state       RaceState
	raceIndex   int

	// indexResolved is false until stored history has been read once
	indexResolved bool
}

// NewEngine creates an engine; the roster is drawn on the first tick.
// A zero seed seeds the generator from the clock.
func NewEngine(cfg Config, history HistoryStore, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if history == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		cfg:        cfg,
		history:    history,
		estimator:  NewEstimator(cfg.MemoryWindow, cfg.Bounds),
		forecaster: NewForecaster(cfg.Rollouts, cfg.Workers),
		rng:        rand.New(rand.NewSource(seed)),
		log:        logger.NewRaceLogger(log),
	}, nil
}

// Tick advances the engine by one period and returns the response for it.
// When the finished race cannot be written, the response is still returned
// together with an error wrapping models.ErrHistoryWrite.
func (e *Engine) Tick(ctx context.Context, now time.Time) (*models.RaceResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		e.initialize(ctx, now)
	}

	switch e.state.Phase {
	case PhaseRunning:
		if !Step(&e.state, e.roster, e.rng) {
			return e.buildSyncResponse(ctx, now)
		}
		writeErr := e.finishRace(ctx, now)
		return e.buildUpdateResponse(ctx), writeErr

	default:
		if now.Before(e.state.NextStart) {
			return e.buildUpdateResponse(ctx), nil
		}
		if !e.indexResolved {
			e.resolveRaceIndex(ctx)
		}
		e.startRace()
		return e.buildSyncResponse(ctx, now)
	}
}

// initialize draws the roster and resumes the race index from stored history
func (e *Engine) initialize(ctx context.Context, now time.Time) {
	e.roster = make([]*models.Competitor, 0, len(e.cfg.Competitors))
	for _, name := range e.cfg.Competitors {
		model := e.cfg.Bounds.Clamp(InitialModel(e.rng, e.cfg.InitMuMin, e.cfg.InitMuMax))
		e.roster = append(e.roster, models.NewCompetitor(name, model))
		metrics.UpdateCompetitorModel(models.CompetitorID(name), model.Mu, model.SigmaLow, model.SigmaHigh)
	}

	e.raceIndex = 0
	e.resolveRaceIndex(ctx)

	e.state = RaceState{Phase: PhaseIdle, NextStart: now}
	e.initialized = true
	e.log.LogRosterInitialized(len(e.roster), e.raceIndex)
}

// resolveRaceIndex moves the race index past every stored record.
// On a read failure the index is left as is and retried on a later call.
func (e *Engine) resolveRaceIndex(ctx context.Context) bool {
	records, err := e.history.LoadAll(ctx)
	if err != nil {
		e.indexResolved = false
		e.log.LogHistoryReadFailure("load_all", err)
		return false
	}
	for _, r := range records {
		if r.RaceIndex >= e.raceIndex {
			e.raceIndex = r.RaceIndex + 1
		}
	}
	e.indexResolved = true
	return true
}

func (e *Engine) startRace() {
	e.state.Start(len(e.roster))
	e.log.LogRaceStarted(e.raceIndex, len(e.roster))
}

// finishRace refits models, appends the record and schedules the next start.
// The race index advances even when the write fails.
func (e *Engine) finishRace(ctx context.Context, now time.Time) error {
	results := Standings(&e.state, e.roster)
	elapsed := e.state.Elapsed

	if !e.indexResolved {
		e.resolveRaceIndex(ctx)
	}

	refit := e.raceIndex >= e.cfg.WarmupRaces
	e.estimator.ApplyRace(e.roster, results, refit)
	if refit {
		for _, c := range e.roster {
			e.log.LogModelUpdate(c.Name, c.Model.Mu, c.Model.SigmaLow, c.Model.SigmaHigh)
			metrics.UpdateCompetitorModel(c.ID(), c.Model.Mu, c.Model.SigmaLow, c.Model.SigmaHigh)
		}
	} else {
		e.log.LogWarmupSkip(e.raceIndex, e.cfg.WarmupRaces)
	}

	record := models.RaceRecord{RaceIndex: e.raceIndex, Results: results}
	err := e.history.Append(ctx, record)
	if errors.Is(err, models.ErrDuplicateRaceRecord) {
		// another writer or an unread store already holds this index
		e.indexResolved = false
		if e.resolveRaceIndex(ctx) {
			record.RaceIndex = e.raceIndex
			err = e.history.Append(ctx, record)
		}
	}

	var writeErr error
	if err != nil {
		writeErr = fmt.Errorf("%w: race %d: %v", models.ErrHistoryWrite, record.RaceIndex, err)
		e.log.LogHistoryWriteFailure(record.RaceIndex, err)
		metrics.RecordHistoryWriteFailure()
	}

	e.log.LogRaceFinished(record.RaceIndex, results[0].Name, elapsed)
	metrics.RecordRaceCompleted(elapsed)

	e.raceIndex = record.RaceIndex + 1
	e.state.Finish(now.Add(e.cfg.RestInterval))
	return writeErr
}

// Status returns the engine lifecycle view
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		Initialized: e.initialized,
		Phase:       e.state.Phase,
		RaceIndex:   e.raceIndex,
		NextStart:   e.state.NextStart,
		Elapsed:     e.state.Elapsed,
	}
}

// State returns a copy of the live race state
func (e *Engine) State() RaceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Roster returns copies of the competitors in roster order
func (e *Engine) Roster() []models.Competitor {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Competitor, len(e.roster))
	for i, c := range e.roster {
		out[i] = models.Competitor{
			Name:    c.Name,
			Model:   c.Model,
			History: append([]models.RaceResult{}, c.History...),
		}
	}
	return out
}
