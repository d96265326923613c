// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// SimEventRecord mirrors the journal event structure for persistence.
// The domain packages must NOT import this; use interfaces instead.
type SimEventRecord struct {
	ID        string                 `json:"id" db:"id"`
	GameID    int                    `json:"game_id" db:"game_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	Month     int                    `json:"month" db:"month"`
	Move      int                    `json:"move" db:"move"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for simulation event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event SimEventRecord) error

	// GetByGameID retrieves all events for a specific game (for replay).
	GetByGameID(ctx context.Context, gameID int) ([]SimEventRecord, error)

	// GetByMonth retrieves all events from a specific in-game month.
	GetByMonth(ctx context.Context, gameID, month int) ([]SimEventRecord, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, gameID int, eventType string) ([]SimEventRecord, error)
}

// ReportRecord represents one month-end settlement report for quick reads.
type ReportRecord struct {
	GameID           int       `json:"game_id" db:"game_id"`
	Month            int       `json:"month" db:"month"`
	Income           int64     `json:"income" db:"income"`
	Expenses         int64     `json:"expenses" db:"expenses"`
	CashFlow         int64     `json:"cash_flow" db:"cash_flow"`
	Cash             int64     `json:"cash" db:"cash"`
	NetWorth         int64     `json:"net_worth" db:"net_worth"`
	AssetsValue      int64     `json:"assets_value" db:"assets_value"`
	LiabilitiesValue int64     `json:"liabilities_value" db:"liabilities_value"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
}

// ReportRepository defines the interface for monthly report persistence.
type ReportRepository interface {
	// Upsert updates or inserts a monthly report.
	Upsert(ctx context.Context, report ReportRecord) error

	// GetByGameID retrieves all reports for a game, oldest first.
	GetByGameID(ctx context.Context, gameID int) ([]ReportRecord, error)
}

// GameRecord represents the lifecycle row of one game run.
type GameRecord struct {
	GameID          int       `json:"game_id" db:"game_id"`
	Status          string    `json:"status" db:"status"`
	FinancialGoal   int64     `json:"financial_goal" db:"financial_goal"`
	InitialNetWorth int64     `json:"initial_net_worth" db:"initial_net_worth"`
	TotalMonths     int       `json:"total_months" db:"total_months"`
	StartedAt       time.Time `json:"started_at" db:"started_at"`
	LastUpdated     time.Time `json:"last_updated" db:"last_updated"`
}

// GameRepository defines the interface for game lifecycle rows.
type GameRepository interface {
	// Upsert updates or inserts a game record.
	Upsert(ctx context.Context, game GameRecord) error

	// GetByID retrieves a specific game record, nil when absent.
	GetByID(ctx context.Context, gameID int) (*GameRecord, error)
}
