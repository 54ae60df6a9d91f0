// Package api exposes the websocket endpoint, the history query and the admin routes over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/logger"
	"github.com/yourusername/racecast/internal/models"
)

// HistoryReader serves stored races
type HistoryReader interface {
	LoadAll(ctx context.Context) ([]models.RaceRecord, error)
	LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error)
	Clear(ctx context.Context, source string) error
}

// StatsManager applies admin overrides of competitor attributes
type StatsManager interface {
	SetStats(ctx context.Context, req models.SetStatsRequest, source string) (*models.CompetitorStats, error)
	ListStats(ctx context.Context) ([]*models.CompetitorStats, error)
}

// RosterProvider exposes the live competitor models
type RosterProvider interface {
	Roster() []models.Competitor
}

// Deps are the collaborators mounted on the router
type Deps struct {
	WebSocket     http.HandlerFunc
	History       HistoryReader
	Stats         StatsManager
	Roster        RosterProvider
	Config        config.APIConfig
	HistoryWindow int
	Logger        *logrus.Logger
}

type handler struct {
	deps Deps
	log  *logrus.Entry
}

// NewRouter builds the HTTP routes. Admin routes exist only when admin access is enabled.
func NewRouter(deps Deps) *mux.Router {
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.HistoryWindow <= 0 {
		deps.HistoryWindow = 10
	}
	h := &handler{deps: deps, log: deps.Logger.WithField("component", "api")}

	r := mux.NewRouter()
	if deps.WebSocket != nil {
		r.HandleFunc("/socket/connection", deps.WebSocket).Methods(http.MethodGet)
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(metricsMiddleware)
	if deps.Config.RateLimit > 0 {
		burst := deps.Config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		apiRouter.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(deps.Config.RateLimit), burst)))
	}

	apiRouter.HandleFunc("/history", h.getHistory).Methods(http.MethodGet)
	if deps.Roster != nil {
		apiRouter.HandleFunc("/competitors", h.getCompetitors).Methods(http.MethodGet)
	}

	if deps.Config.AdminEnabled {
		admin := apiRouter.PathPrefix("/admin").Subrouter()
		admin.HandleFunc("/set-stats", h.setStats).Methods(http.MethodPut)
		admin.HandleFunc("/stats", h.listStats).Methods(http.MethodGet)
		admin.HandleFunc("/clear-history", h.clearHistory).Methods(http.MethodDelete)
		h.log.Warn("Admin routes enabled without authentication")
	}

	return r
}
