package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/racecast/internal/database"
	"github.com/yourusername/racecast/internal/models"
)

// PostgresRaceHistoryRepository implements RaceHistoryRepository for PostgreSQL
type PostgresRaceHistoryRepository struct {
	db *database.DB
}

// NewPostgresRaceHistoryRepository creates a new race history repository
func NewPostgresRaceHistoryRepository(db *database.DB) *PostgresRaceHistoryRepository {
	return &PostgresRaceHistoryRepository{db: db}
}

// Append inserts a completed race; an existing index yields ErrDuplicateRaceRecord
func (r *PostgresRaceHistoryRepository) Append(ctx context.Context, record models.RaceRecord) error {
	data, err := encodeResults(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO race_history (race_index, results)
		VALUES ($1, $2)
		ON CONFLICT (race_index) DO NOTHING
	`

	tag, err := r.db.GetPool().Exec(ctx, query, record.RaceIndex, string(data))
	if err != nil {
		return fmt.Errorf("failed to append race %d: %w", record.RaceIndex, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: race %d", models.ErrDuplicateRaceRecord, record.RaceIndex)
	}

	return nil
}

// LoadAll retrieves every completed race, oldest first
func (r *PostgresRaceHistoryRepository) LoadAll(ctx context.Context) ([]models.RaceRecord, error) {
	query := `
		SELECT race_index, results
		FROM race_history
		ORDER BY race_index ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query race history: %w", err)
	}

	return scanPostgresRecords(rows)
}

// LoadLastN retrieves the n most recent races, oldest first
func (r *PostgresRaceHistoryRepository) LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error) {
	if n <= 0 {
		return []models.RaceRecord{}, nil
	}

	query := `
		SELECT race_index, results
		FROM race_history
		ORDER BY race_index DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent races: %w", err)
	}

	records, err := scanPostgresRecords(rows)
	if err != nil {
		return nil, err
	}
	reverseRecords(records)
	return records, nil
}

// Clear removes every race record
func (r *PostgresRaceHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.GetPool().Exec(ctx, `DELETE FROM race_history`); err != nil {
		return fmt.Errorf("failed to clear race history: %w", err)
	}
	return nil
}

// Count returns the number of stored races
func (r *PostgresRaceHistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetPool().QueryRow(ctx, `SELECT COUNT(*) FROM race_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count race history: %w", err)
	}
	return count, nil
}

// Ping verifies database connectivity
func (r *PostgresRaceHistoryRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanPostgresRecords(rows pgx.Rows) ([]models.RaceRecord, error) {
	defer rows.Close()

	records := []models.RaceRecord{}
	for rows.Next() {
		var (
			raceIndex int
			data      []byte
		)
		if err := rows.Scan(&raceIndex, &data); err != nil {
			return nil, fmt.Errorf("failed to scan race record: %w", err)
		}
		record, err := decodeRecord(raceIndex, data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating race records: %w", err)
	}

	return records, nil
}
