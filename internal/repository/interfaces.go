package repository

import (
	"context"

	"github.com/yourusername/racecast/internal/models"
)

// RaceHistoryRepository is the ordered, append-only log of completed races keyed by race index.
// Reads return records oldest first.
type RaceHistoryRepository interface {
	LoadAll(ctx context.Context) ([]models.RaceRecord, error)
	LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error)
	Append(ctx context.Context, record models.RaceRecord) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// StatsRepository defines the interface for competitor stats data access
type StatsRepository interface {
	Get(ctx context.Context, personName string) (*models.CompetitorStats, error)
	List(ctx context.Context) ([]*models.CompetitorStats, error)
	Upsert(ctx context.Context, stats *models.CompetitorStats) error
}
