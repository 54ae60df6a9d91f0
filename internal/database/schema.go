package database

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS race_history (
		race_index  BIGINT PRIMARY KEY,
		results     JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_stats (
		person_name   TEXT PRIMARY KEY,
		reaction_time DOUBLE PRECISION,
		acceleration  DOUBLE PRECISION,
		max_speed     DOUBLE PRECISION,
		lsf           DOUBLE PRECISION,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS race_history (
		race_index  INTEGER PRIMARY KEY,
		results     TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_stats (
		person_name   TEXT PRIMARY KEY,
		reaction_time REAL,
		acceleration  REAL,
		max_speed     REAL,
		lsf           REAL,
		updated_at    INTEGER NOT NULL
	)`,
}

// EnsurePostgresSchema creates the race tables when missing
func EnsurePostgresSchema(ctx context.Context, db *DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply postgres schema: %w", err)
		}
	}
	return nil
}

// EnsureSQLiteSchema creates the race tables when missing
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}
