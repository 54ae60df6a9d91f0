package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yourusername/racecast/internal/models"
)

const adminSource = "admin_api"

// HistoryResponse is the body of GET /api/history
type HistoryResponse struct {
	Races []models.RaceRecord `json:"races"`
}

// CompetitorView is one roster entry in GET /api/competitors
type CompetitorView struct {
	ID    string                  `json:"id"`
	Name  string                  `json:"name"`
	Model models.PerformanceModel `json:"model"`
	Races int                     `json:"races"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// getHistory returns the last limit races, oldest first; limit=0 returns all
func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := h.deps.HistoryWindow
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var (
		records []models.RaceRecord
		err     error
	)
	if limit == 0 {
		records, err = h.deps.History.LoadAll(r.Context())
	} else {
		records, err = h.deps.History.LoadLastN(r.Context(), limit)
	}
	if err != nil {
		h.log.WithError(err).Error("History query failed")
		writeError(w, http.StatusServiceUnavailable, "history store unavailable")
		return
	}

	races := make([]models.RaceRecord, len(records))
	for i, rec := range records {
		races[i] = models.RaceRecord{RaceIndex: rec.RaceIndex, Results: rec.SortedByPlace()}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Races: races})
}

func (h *handler) getCompetitors(w http.ResponseWriter, r *http.Request) {
	roster := h.deps.Roster.Roster()
	out := make([]CompetitorView, len(roster))
	for i, c := range roster {
		out[i] = CompetitorView{
			ID:    c.ID(),
			Name:  c.Name,
			Model: c.Model,
			Races: len(c.History),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) setStats(w http.ResponseWriter, r *http.Request) {
	var req models.SetStatsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stats, err := h.deps.Stats.SetStats(r.Context(), req, adminSource)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, stats)
	case errors.Is(err, models.ErrInvalidStats):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnknownCompetitor):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.WithError(err).Error("Set stats failed")
		writeError(w, http.StatusInternalServerError, "failed to store stats")
	}
}

func (h *handler) listStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Stats.ListStats(r.Context())
	if err != nil {
		h.log.WithError(err).Error("List stats failed")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if stats == nil {
		stats = []*models.CompetitorStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.History.Clear(r.Context(), adminSource); err != nil {
		h.log.WithError(err).Error("Clear history failed")
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
