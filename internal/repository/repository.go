package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/racecast/internal/config"
	"github.com/yourusername/racecast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	History RaceHistoryRepository
	Stats   StatsRepository

	closeFn func()
}

// NewRepositories opens the storage backend selected by cfg.Storage.Driver
func NewRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresRepositories(db), nil

	case "sqlite":
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSQLiteSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		repos := &Repositories{
			History: NewSQLiteRaceHistoryRepository(db),
			Stats:   NewSQLiteStatsRepository(db),
			closeFn: func() { db.Close() },
		}
		return repos, nil

	case "memory", "":
		return NewMemoryRepositories(), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// NewPostgresRepositories wires both repositories to an open pool
func NewPostgresRepositories(db *database.DB) *Repositories {
	return &Repositories{
		History: NewPostgresRaceHistoryRepository(db),
		Stats:   NewPostgresStatsRepository(db),
		closeFn: db.Close,
	}
}

// NewMemoryRepositories returns process-local repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		History: NewMemoryRaceHistoryRepository(),
		Stats:   NewMemoryStatsRepository(),
	}
}

// Close releases the underlying storage handle
func (r *Repositories) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}
