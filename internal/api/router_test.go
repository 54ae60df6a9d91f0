package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/service"
)

type stubRoster struct{}

func (stubRoster) Roster() []models.Competitor {
	return []models.Competitor{
		{Name: "A", Model: models.PerformanceModel{Mu: 10, SigmaLow: 0.7, SigmaHigh: 1.2}},
		{Name: "B", Model: models.PerformanceModel{Mu: 10.3, SigmaLow: 0.7, SigmaHigh: 1.2}},
	}
}

type fixture struct {
	router  http.Handler
	history *service.HistoryService
}

func newFixture(t *testing.T, apiCfg config.APIConfig) fixture {
	t.Helper()
	history := service.NewHistoryService(repository.NewMemoryRaceHistoryRepository(), time.Minute, nil)
	stats := service.NewStatsService(repository.NewMemoryStatsRepository(), []string{"A", "B"}, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, history.Append(ctx, models.RaceRecord{RaceIndex: i, Results: []models.RaceResult{
			{Name: "B", FinishTime: 10.5, Place: 2},
			{Name: "A", FinishTime: 10.1, Place: 1},
		}}))
	}

	return fixture{
		router: NewRouter(Deps{
			History:       history,
			Stats:         stats,
			Roster:        stubRoster{},
			Config:        apiCfg,
			HistoryWindow: 3,
		}),
		history: history,
	}
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestGetHistory(t *testing.T) {
	f := newFixture(t, config.APIConfig{})

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantRaces []int
	}{
		{"default window", "/api/history", http.StatusOK, []int{1, 2, 3}},
		{"explicit limit", "/api/history?limit=2", http.StatusOK, []int{2, 3}},
		{"all", "/api/history?limit=0", http.StatusOK, []int{0, 1, 2, 3}},
		{"bad limit", "/api/history?limit=-1", http.StatusBadRequest, nil},
		{"non numeric", "/api/history?limit=abc", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, f.router, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantRaces == nil {
				return
			}

			var resp HistoryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			got := make([]int, len(resp.Races))
			for i, race := range resp.Races {
				got[i] = race.RaceIndex
				assert.Equal(t, "A", race.Results[0].Name, "results ordered by place")
			}
			assert.Equal(t, tt.wantRaces, got)
		})
	}
}

func TestGetCompetitors(t *testing.T) {
	f := newFixture(t, config.APIConfig{})

	rec := do(t, f.router, http.MethodGet, "/api/competitors", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []CompetitorView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, 10.0, out[0].Model.Mu)
}

func TestAdminRoutesDisabledByDefault(t *testing.T) {
	f := newFixture(t, config.APIConfig{})

	rec := do(t, f.router, http.MethodPut, "/api/admin/set-stats", models.SetStatsRequest{PersonName: "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, f.router, http.MethodDelete, "/api/admin/clear-history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSetStats(t *testing.T) {
	f := newFixture(t, config.APIConfig{AdminEnabled: true})
	speed := 11.4
	reaction := 0.14

	rec := do(t, f.router, http.MethodPut, "/api/admin/set-stats", models.SetStatsRequest{PersonName: "A", MaxSpeed: &speed})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, f.router, http.MethodPut, "/api/admin/set-stats", models.SetStatsRequest{PersonName: "A", ReactionTime: &reaction})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.CompetitorStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.NotNil(t, stats.MaxSpeed)
	assert.Equal(t, 11.4, *stats.MaxSpeed, "unset attributes keep stored values")
	assert.Equal(t, 0.14, *stats.ReactionTime)

	rec = do(t, f.router, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.CompetitorStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestAdminSetStatsErrors(t *testing.T) {
	f := newFixture(t, config.APIConfig{AdminEnabled: true})
	negative := -2.0

	rec := do(t, f.router, http.MethodPut, "/api/admin/set-stats", models.SetStatsRequest{PersonName: "Z"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, f.router, http.MethodPut, "/api/admin/set-stats", models.SetStatsRequest{PersonName: "A", LSF: &negative})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, f.router, http.MethodPut, "/api/admin/set-stats", map[string]string{"unknownField": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminClearHistory(t *testing.T) {
	f := newFixture(t, config.APIConfig{AdminEnabled: true})

	rec := do(t, f.router, http.MethodDelete, "/api/admin/clear-history", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	all, err := f.history.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, config.APIConfig{RateLimit: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, do(t, f.router, http.MethodGet, "/api/history", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, f.router, http.MethodGet, "/api/history", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, f.router, http.MethodGet, "/api/history", nil).Code)
}
