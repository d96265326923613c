package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the necessary
// schemas for persisting game runs, the immutable event log, and the monthly
// settlement reports.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	// Create tables
	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id INTEGER PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'playing',
			financial_goal INTEGER NOT NULL,
			initial_net_worth INTEGER NOT NULL,
			total_months INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			last_updated DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sim_events (
			id TEXT PRIMARY KEY,
			game_id INTEGER NOT NULL,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			month INTEGER NOT NULL,
			move INTEGER NOT NULL,
			payload TEXT NOT NULL,
			FOREIGN KEY (game_id) REFERENCES games(game_id)
		);`,
		`CREATE TABLE IF NOT EXISTS monthly_reports (
			game_id INTEGER NOT NULL,
			month INTEGER NOT NULL,
			income INTEGER NOT NULL,
			expenses INTEGER NOT NULL,
			cash_flow INTEGER NOT NULL,
			cash INTEGER NOT NULL,
			net_worth INTEGER NOT NULL,
			assets_value INTEGER NOT NULL,
			liabilities_value INTEGER NOT NULL,
			timestamp DATETIME NOT NULL,
			PRIMARY KEY (game_id, month),
			FOREIGN KEY (game_id) REFERENCES games(game_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_game_id ON sim_events(game_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_month ON sim_events(game_id, month);`,
		`CREATE INDEX IF NOT EXISTS idx_sim_events_type ON sim_events(game_id, event_type);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
