package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yourusername/racecast/internal/models"
)

// SQLiteRaceHistoryRepository implements RaceHistoryRepository on an embedded SQLite file
type SQLiteRaceHistoryRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRaceHistoryRepository creates a history repository over an open SQLite handle
func NewSQLiteRaceHistoryRepository(db *sql.DB) *SQLiteRaceHistoryRepository {
	return &SQLiteRaceHistoryRepository{db: db, now: time.Now}
}

// Append inserts a completed race; an existing index yields ErrDuplicateRaceRecord
func (r *SQLiteRaceHistoryRepository) Append(ctx context.Context, record models.RaceRecord) error {
	data, err := encodeResults(record)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO race_history (race_index, results, recorded_at) VALUES (?, ?, ?)
		 ON CONFLICT (race_index) DO NOTHING`,
		record.RaceIndex, string(data), r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append race %d: %w", record.RaceIndex, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to append race %d: %w", record.RaceIndex, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: race %d", models.ErrDuplicateRaceRecord, record.RaceIndex)
	}
	return nil
}

// LoadAll retrieves every completed race, oldest first
func (r *SQLiteRaceHistoryRepository) LoadAll(ctx context.Context) ([]models.RaceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT race_index, results FROM race_history ORDER BY race_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query race history: %w", err)
	}
	return scanSQLRecords(rows)
}

// LoadLastN retrieves the n most recent races, oldest first
func (r *SQLiteRaceHistoryRepository) LoadLastN(ctx context.Context, n int) ([]models.RaceRecord, error) {
	if n <= 0 {
		return []models.RaceRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT race_index, results FROM race_history ORDER BY race_index DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent races: %w", err)
	}

	records, err := scanSQLRecords(rows)
	if err != nil {
		return nil, err
	}
	reverseRecords(records)
	return records, nil
}

// Clear removes every race record
func (r *SQLiteRaceHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM race_history`); err != nil {
		return fmt.Errorf("failed to clear race history: %w", err)
	}
	return nil
}

// Count returns the number of stored races
func (r *SQLiteRaceHistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM race_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count race history: %w", err)
	}
	return count, nil
}

// Ping verifies the database handle
func (r *SQLiteRaceHistoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLRecords(rows *sql.Rows) ([]models.RaceRecord, error) {
	defer rows.Close()

	records := []models.RaceRecord{}
	for rows.Next() {
		var (
			raceIndex int
			data      string
		)
		if err := rows.Scan(&raceIndex, &data); err != nil {
			return nil, fmt.Errorf("failed to scan race record: %w", err)
		}
		record, err := decodeRecord(raceIndex, []byte(data))
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
