package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/racecast/internal/database"
	"github.com/yourusername/racecast/internal/models"
)

// PostgresStatsRepository implements StatsRepository for PostgreSQL
type PostgresStatsRepository struct {
	db *database.DB
}

// NewPostgresStatsRepository creates a new stats repository
func NewPostgresStatsRepository(db *database.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// Get retrieves the stats of a competitor
func (r *PostgresStatsRepository) Get(ctx context.Context, personName string) (*models.CompetitorStats, error) {
	query := `
		SELECT person_name, reaction_time, acceleration, max_speed, lsf, updated_at
		FROM competitor_stats
		WHERE person_name = $1
	`

	stats := &models.CompetitorStats{}
	err := r.db.GetPool().QueryRow(ctx, query, personName).Scan(
		&stats.PersonName, &stats.ReactionTime, &stats.Acceleration,
		&stats.MaxSpeed, &stats.LSF, &stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stats for %s: %w", personName, err)
	}

	return stats, nil
}

// List retrieves all stored competitor stats ordered by name
func (r *PostgresStatsRepository) List(ctx context.Context) ([]*models.CompetitorStats, error) {
	query := `
		SELECT person_name, reaction_time, acceleration, max_speed, lsf, updated_at
		FROM competitor_stats
		ORDER BY person_name
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []*models.CompetitorStats
	for rows.Next() {
		stats := &models.CompetitorStats{}
		if err := rows.Scan(
			&stats.PersonName, &stats.ReactionTime, &stats.Acceleration,
			&stats.MaxSpeed, &stats.LSF, &stats.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		out = append(out, stats)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return out, nil
}

// Upsert stores the complete stats row of a competitor
func (r *PostgresStatsRepository) Upsert(ctx context.Context, stats *models.CompetitorStats) error {
	query := `
		INSERT INTO competitor_stats (person_name, reaction_time, acceleration, max_speed, lsf, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (person_name) DO UPDATE SET
			reaction_time = EXCLUDED.reaction_time,
			acceleration = EXCLUDED.acceleration,
			max_speed = EXCLUDED.max_speed,
			lsf = EXCLUDED.lsf,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.db.GetPool().QueryRow(ctx, query,
		stats.PersonName, stats.ReactionTime, stats.Acceleration, stats.MaxSpeed, stats.LSF,
	).Scan(&stats.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stats for %s: %w", stats.PersonName, err)
	}

	return nil
}
