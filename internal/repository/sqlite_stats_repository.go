package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/racecast/internal/models"
)

// SQLiteStatsRepository implements StatsRepository on an embedded SQLite file
type SQLiteStatsRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStatsRepository creates a stats repository over an open SQLite handle
func NewSQLiteStatsRepository(db *sql.DB) *SQLiteStatsRepository {
	return &SQLiteStatsRepository{db: db, now: time.Now}
}

// Get retrieves the stats of a competitor
func (r *SQLiteStatsRepository) Get(ctx context.Context, personName string) (*models.CompetitorStats, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT person_name, reaction_time, acceleration, max_speed, lsf, updated_at
		 FROM competitor_stats WHERE person_name = ?`, personName)

	stats, err := scanSQLStats(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stats for %s: %w", personName, err)
	}
	return stats, nil
}

// List retrieves all stored competitor stats ordered by name
func (r *SQLiteStatsRepository) List(ctx context.Context) ([]*models.CompetitorStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT person_name, reaction_time, acceleration, max_speed, lsf, updated_at
		 FROM competitor_stats ORDER BY person_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []*models.CompetitorStats
	for rows.Next() {
		stats, err := scanSQLStats(rows)
		if err != nil {
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
func (r *SQLiteStatsRepository) Upsert(ctx context.Context, stats *models.CompetitorStats) error {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO competitor_stats (person_name, reaction_time, acceleration, max_speed, lsf, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (person_name) DO UPDATE SET
			reaction_time = excluded.reaction_time,
			acceleration = excluded.acceleration,
			max_speed = excluded.max_speed,
			lsf = excluded.lsf,
			updated_at = excluded.updated_at`,
		stats.PersonName, stats.ReactionTime, stats.Acceleration, stats.MaxSpeed, stats.LSF, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stats for %s: %w", stats.PersonName, err)
	}
	stats.UpdatedAt = now.Truncate(time.Second)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLStats(row rowScanner) (*models.CompetitorStats, error) {
	var (
		stats                                 models.CompetitorStats
		reaction, acceleration, maxSpeed, lsf sql.NullFloat64
		updatedAt                             int64
	)
	if err := row.Scan(&stats.PersonName, &reaction, &acceleration, &maxSpeed, &lsf, &updatedAt); err != nil {
		return nil, err
	}
	stats.ReactionTime = nullableFloat(reaction)
	stats.Acceleration = nullableFloat(acceleration)
	stats.MaxSpeed = nullableFloat(maxSpeed)
	stats.LSF = nullableFloat(lsf)
	stats.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &stats, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
