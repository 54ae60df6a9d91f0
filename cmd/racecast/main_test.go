package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racecast/internal/repository"
	"github.com/yourusername/racecast/internal/simulation"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	c, err := loadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Len(t, c.Simulation.Competitors, 6)
}

func TestLoadConfigRequiresSecretLocation(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")

	_, err := loadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunSimulation(t *testing.T) {
	simCfg := simulation.DefaultConfig()
	simCfg.Rollouts = 50
	simCfg.Seed = 7

	store := repository.NewMemoryRaceHistoryRepository()
	engine, err := simulation.NewEngine(simCfg, store, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, runSimulation(ctx, engine, 3))

	records, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i, rec.RaceIndex)
		assert.Len(t, rec.Results, len(simCfg.Competitors))
	}

	var out bytes.Buffer
	require.NoError(t, printSimulation(ctx, &out, engine, store))
	assert.Contains(t, out.String(), "WINNING TIME")
	assert.Contains(t, out.String(), "SIGMA HIGH")
}
