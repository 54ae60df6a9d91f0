package simulation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/racecast/internal/metrics"
	"github.com/yourusername/racecast/internal/models"
)

// buildSyncResponse reports the running race as of now
func (e *Engine) buildSyncResponse(ctx context.Context, now time.Time) (*models.RaceResponse, error) {
	currentRun, err := e.buildCurrentRun(ctx)
	if err != nil {
		return nil, err
	}

	return &models.RaceResponse{
		Type:         models.ResponseTypeSync,
		RemainBefore: now.UnixMilli(),
		History:      e.loadHistory(ctx),
		IsRunning:    true,
		LastResults:  []models.HistoryItem{},
		CurrentRun:   currentRun,
	}, nil
}

// buildUpdateResponse reports the countdown to the next start and the latest finished race
func (e *Engine) buildUpdateResponse(ctx context.Context) *models.RaceResponse {
	resp := &models.RaceResponse{
		Type:         models.ResponseTypeUpdate,
		RemainBefore: e.state.NextStart.UnixMilli(),
		History:      e.loadHistory(ctx),
		IsRunning:    e.state.Phase == PhaseRunning,
		LastResults:  []models.HistoryItem{},
		CurrentRun:   []models.HistoryItem{},
	}
	if resp.IsRunning {
		return resp
	}

	last, err := e.history.LoadLastN(ctx, 1)
	if err != nil {
		e.log.LogHistoryReadFailure("load_last_n", err)
		return resp
	}
	if len(last) > 0 {
		resp.LastResults = historyItems(last[len(last)-1])
	}
	return resp
}

// buildCurrentRun forecasts the live race and renders one item per competitor
func (e *Engine) buildCurrentRun(ctx context.Context) ([]models.HistoryItem, error) {
	k := len(e.roster)
	in := ForecastInput{
		IDs:       make([]string, k),
		Models:    make([]models.PerformanceModel, k),
		Distances: e.state.Distances(),
		Elapsed:   e.state.Elapsed,
	}
	for i, c := range e.roster {
		in.IDs[i] = c.ID()
		in.Models[i] = c.Model
	}

	start := time.Now()
	stats, err := e.forecaster.Forecast(ctx, e.rng, in)
	if err != nil {
		e.log.LogForecastFallback(e.raceIndex, err)
		stats, err = e.forecaster.ForecastInline(e.rng, in)
		if err != nil {
			return nil, fmt.Errorf("failed to forecast race %d: %w", e.raceIndex, err)
		}
	}
	metrics.RecordForecastDuration(time.Since(start).Seconds())

	places := e.state.CurrentPlaces()
	precision := e.cfg.ProbabilityPrecision

	items := make([]models.HistoryItem, 0, k)
	for i, id := range in.IDs {
		positions := RoundRow(ClampAndNormalize(stats.RankProbabilities[i]), precision)
		probs := models.NewProbabilities(positions)
		probs.InTwo = models.RoundProbability(probs.InTwo, precision)
		probs.InThree = models.RoundProbability(probs.InThree, precision)

		pairs := make(map[string]float64, k-1)
		for _, other := range in.IDs {
			if other == id {
				continue
			}
			p := ClampProbability(stats.TopTwoProbability(id, other))
			pairs[other] = models.RoundProbability(p, precision)
		}

		progress := in.Distances[i]
		items = append(items, models.HistoryItem{
			ID:                id,
			Place:             places[i],
			Progress:          &progress,
			Probabilities:     probs,
			PairProbabilities: pairs,
		})
	}
	return items, nil
}

// loadHistory reads the recent races ordered by race index; read failures yield none
func (e *Engine) loadHistory(ctx context.Context) [][]models.HistoryItem {
	records, err := e.history.LoadLastN(ctx, e.cfg.HistoryWindow)
	if err != nil {
		e.log.LogHistoryReadFailure("load_last_n", err)
		return [][]models.HistoryItem{}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RaceIndex < records[j].RaceIndex
	})

	out := make([][]models.HistoryItem, 0, len(records))
	for _, r := range records {
		out = append(out, historyItems(r))
	}
	return out
}

// historyItems renders a finished race ordered by place
func historyItems(record models.RaceRecord) []models.HistoryItem {
	sorted := record.SortedByPlace()
	items := make([]models.HistoryItem, 0, len(sorted))
	for _, r := range sorted {
		items = append(items, models.HistoryItem{
			ID:    models.CompetitorID(r.Name),
			Place: r.Place,
		})
	}
	return items
}
