// Package main provides the racecast command line: the broadcast server and its operator tools.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "racecast",
	Short: "Repeating race simulator with live outcome forecasts",
	Long: `racecast runs a repeating simulated footrace, forecasts finishing positions
with Monte Carlo rollouts on every tick, and broadcasts the state to websocket clients.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd.Context(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLoggerWithOutput(cfg.App.LogLevel, cfg.App.LogFormat, os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, GitCommit)

	rootCmd.AddCommand(serveCmd, historyCmd, clearHistoryCmd, setStatsCmd, simulateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the file, overlays AWS secrets when enabled and validates the result
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	c, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, c, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(c); err != nil {
		return nil, err
	}
	if err := config.ValidateEnvironment(c); err != nil {
		return nil, err
	}
	return c, nil
}
