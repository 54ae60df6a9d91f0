package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/racecast/internal/alert"
	"github.com/yourusername/racecast/internal/api"
	"github.com/yourusername/racecast/internal/broadcast"
	"github.com/yourusername/racecast/internal/health"
	"github.com/yourusername/racecast/internal/metrics"
	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/scheduler"
	"github.com/yourusername/racecast/internal/service"
	"github.com/yourusername/racecast/internal/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the race engine and broadcast server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
		"competitors": len(cfg.Simulation.Competitors),
		"version":     Version,
	}).Info("racecast starting")

	repos, err := repository.NewRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer repos.Close()

	history := service.NewHistoryService(repos.History, cfg.Storage.HistoryCacheTTL, appLog)
	stats := service.NewStatsService(repos.Stats, cfg.Simulation.Competitors, appLog)

	simCfg, err := simulation.FromConfig(&cfg.Simulation)
	if err != nil {
		return err
	}
	engine, err := simulation.NewEngine(simCfg, history, appLog)
	if err != nil {
		return err
	}

	notifier, err := alert.FromConfig(cfg.Alerts)
	if err != nil {
		return fmt.Errorf("failed to set up alerts: %w", err)
	}

	hub := broadcast.NewHub(appLog, cfg.API.AllowedOrigins)
	defer hub.Close()

	raceService := service.NewRaceService(engine, hub, notifier, appLog, service.RaceServiceOptions{
		PayloadDump: cfg.Server.PayloadDump,
	})

	router := api.NewRouter(api.Deps{
		WebSocket:     hub.ServeWS,
		History:       history,
		Stats:         stats,
		Roster:        engine,
		Config:        cfg.API,
		HistoryWindow: cfg.Simulation.HistoryWindow,
		Logger:        appLog,
	})

	servers := []*http.Server{{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer = health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Health.Port,
			Logger:      appLog,
			Store:       history,
			Engine:      engine,
		})
		if err := healthServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
	}

	serveErr := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		go func() {
			appLog.WithField("addr", srv.Addr).Info("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}()
	}

	sched := scheduler.NewScheduler(appLog)
	if err := sched.ScheduleTick("race_tick", cfg.Server.TickInterval, raceService.RunTick); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	if healthServer != nil {
		healthServer.SetReady(true)
	}

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err = <-serveErr:
		appLog.WithError(err).Error("HTTP server failed")
	}

	if healthServer != nil {
		healthServer.SetReady(false)
	}
	if stopErr := sched.Stop(); stopErr != nil {
		appLog.WithError(stopErr).Error("Error stopping scheduler")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			appLog.WithError(shutdownErr).WithField("addr", srv.Addr).Error("Server shutdown failed")
		}
	}

	appLog.Info("racecast stopped")
	return err
}
