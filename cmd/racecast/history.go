package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/service"
)

var (
	historyLimit int
	clearConfirm bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print stored race results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		repos, err := repository.NewRepositories(ctx, cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		var records []models.RaceRecord
		if historyLimit == 0 {
			records, err = repos.History.LoadAll(ctx)
		} else {
			records, err = repos.History.LoadLastN(ctx, historyLimit)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		writeRaces(w, records)
		return w.Flush()
	},
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Delete every stored race record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearConfirm {
			return fmt.Errorf("refusing to clear history without --yes")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		repos, err := repository.NewRepositories(ctx, cfg)
		if err != nil {
			return err
		}
		defer repos.Close()

		history := service.NewHistoryService(repos.History, 0, appLog)
		if err := history.Clear(ctx, "cli"); err != nil {
			return err
		}
		fmt.Println("Race history cleared")
		return nil
	},
}

// writeRaces prints one line per race with the finishing order
func writeRaces(w io.Writer, records []models.RaceRecord) {
	fmt.Fprintln(w, "RACE\tORDER\tWINNING TIME")
	for _, rec := range records {
		results := rec.SortedByPlace()
		names := make([]string, len(results))
		for i, res := range results {
			names[i] = res.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%.3f\n", rec.RaceIndex, strings.Join(names, " > "), results[0].FinishTime)
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of most recent races to print (0 prints all)")
	clearHistoryCmd.Flags().BoolVar(&clearConfirm, "yes", false, "Confirm deletion")
}
