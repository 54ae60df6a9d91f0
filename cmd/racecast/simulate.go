package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/simulation"
)

var (
	simulateRaces    int
	simulateRollouts int
	simulateSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Fast-forward the engine on a simulated clock and print finishing orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		simCfg, err := simulation.FromConfig(&cfg.Simulation)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("rollouts") {
			simCfg.Rollouts = simulateRollouts
		}
		if cmd.Flags().Changed("seed") {
			simCfg.Seed = simulateSeed
		}

		store := repository.NewMemoryRaceHistoryRepository()
		engine, err := simulation.NewEngine(simCfg, store, appLog)
		if err != nil {
			return err
		}

		if err := runSimulation(cmd.Context(), engine, simulateRaces); err != nil {
			return err
		}
		return printSimulation(cmd.Context(), os.Stdout, engine, store)
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&simulateRaces, "races", "n", 10, "Number of races to run")
	simulateCmd.Flags().IntVar(&simulateRollouts, "rollouts", 200, "Monte Carlo rollouts per tick")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed (0 uses the clock)")
}

// runSimulation ticks once per simulated second until races have finished
func runSimulation(ctx context.Context, engine *simulation.Engine, races int) error {
	now := time.Unix(0, 0).UTC()
	tick := time.Duration(simulation.TickSeconds) * time.Second

	for engine.Status().RaceIndex < races {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := engine.Tick(ctx, now); err != nil {
			return err
		}
		now = now.Add(tick)
	}
	return nil
}

func printSimulation(ctx context.Context, out io.Writer, engine *simulation.Engine, store *repository.MemoryRaceHistoryRepository) error {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeRaces(w, records)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMPETITOR\tMU\tSIGMA LOW\tSIGMA HIGH")
	for _, c := range engine.Roster() {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\n", c.Name, c.Model.Mu, c.Model.SigmaLow, c.Model.SigmaHigh)
	}
	return w.Flush()
}
