package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/service"
)

var (
	statsName         string
	statsReactionTime float64
	statsAcceleration float64
	statsMaxSpeed     float64
	statsLSF          float64
)

var setStatsCmd = &cobra.Command{
	Use:   "set-stats",
	Short: "Override tunable attributes of a competitor",
	Long:  `Attributes left unset keep their stored values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		req := models.SetStatsRequest{PersonName: statsName}
		flags := cmd.Flags()
		if flags.Changed("reaction-time") {
			req.ReactionTime = &statsReactionTime
		}
		if flags.Changed("acceleration") {
			req.Acceleration = &statsAcceleration
		}
		if flags.Changed("max-speed") {
			req.MaxSpeed = &statsMaxSpeed
		}
		if flags.Changed("lsf") {
			req.LSF = &statsLSF
		}

		repos, err := repository.NewRepositories(ctx, cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		svc := service.NewStatsService(repos.Stats, cfg.Simulation.Competitors, appLog)
		stats, err := svc.SetStats(ctx, req, "cli")
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	f := setStatsCmd.Flags()
	f.StringVar(&statsName, "name", "", "Competitor name")
	f.Float64Var(&statsReactionTime, "reaction-time", 0, "Reaction time in seconds")
	f.Float64Var(&statsAcceleration, "acceleration", 0, "Acceleration")
	f.Float64Var(&statsMaxSpeed, "max-speed", 0, "Top speed")
	f.Float64Var(&statsLSF, "lsf", 0, "Late speed factor")
	_ = setStatsCmd.MarkFlagRequired("name")
}
