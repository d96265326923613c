package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event SimEventRecord) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO sim_events (id, game_id, timestamp, event_type, month, move, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.GameID, event.Timestamp, event.EventType,
		event.Month, event.Move, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]SimEventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SimEventRecord
	for rows.Next() {
		var e SimEventRecord
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.GameID, &e.Timestamp, &e.EventType, &e.Month, &e.Move, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByGameID(ctx context.Context, gameID int) ([]SimEventRecord, error) {
	query := `SELECT id, game_id, timestamp, event_type, month, move, payload FROM sim_events WHERE game_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID)
}

func (r *SQLiteEventRepository) GetByMonth(ctx context.Context, gameID, month int) ([]SimEventRecord, error) {
	query := `SELECT id, game_id, timestamp, event_type, month, move, payload FROM sim_events WHERE game_id = ? AND month = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, month)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, gameID int, eventType string) ([]SimEventRecord, error) {
	query := `SELECT id, game_id, timestamp, event_type, month, move, payload FROM sim_events WHERE game_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, eventType)
}

// ---------------------------------------------------------
// SQLiteReportRepository
// ---------------------------------------------------------

type SQLiteReportRepository struct {
	db *sql.DB
}

func NewSQLiteReportRepository(db *sql.DB) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db}
}

func (r *SQLiteReportRepository) Upsert(ctx context.Context, report ReportRecord) error {
	query := `
		INSERT INTO monthly_reports (game_id, month, income, expenses, cash_flow, cash, net_worth, assets_value, liabilities_value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, month) DO UPDATE SET
			income=excluded.income,
			expenses=excluded.expenses,
			cash_flow=excluded.cash_flow,
			cash=excluded.cash,
			net_worth=excluded.net_worth,
			assets_value=excluded.assets_value,
			liabilities_value=excluded.liabilities_value,
			timestamp=excluded.timestamp
	`
	_, err := r.db.ExecContext(ctx, query,
		report.GameID, report.Month, report.Income, report.Expenses, report.CashFlow,
		report.Cash, report.NetWorth, report.AssetsValue, report.LiabilitiesValue, report.Timestamp,
	)
	return err
}

func (r *SQLiteReportRepository) GetByGameID(ctx context.Context, gameID int) ([]ReportRecord, error) {
	query := `SELECT game_id, month, income, expenses, cash_flow, cash, net_worth, assets_value, liabilities_value, timestamp FROM monthly_reports WHERE game_id = ? ORDER BY month ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		if err := rows.Scan(
			&rec.GameID, &rec.Month, &rec.Income, &rec.Expenses, &rec.CashFlow,
			&rec.Cash, &rec.NetWorth, &rec.AssetsValue, &rec.LiabilitiesValue, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rec)
	}
	return reports, rows.Err()
}

// ---------------------------------------------------------
// SQLiteGameRepository
// ---------------------------------------------------------

type SQLiteGameRepository struct {
	db *sql.DB
}

func NewSQLiteGameRepository(db *sql.DB) *SQLiteGameRepository {
	return &SQLiteGameRepository{db: db}
}

func (r *SQLiteGameRepository) Upsert(ctx context.Context, game GameRecord) error {
	query := `
		INSERT INTO games (game_id, status, financial_goal, initial_net_worth, total_months, started_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			status=excluded.status,
			financial_goal=excluded.financial_goal,
			initial_net_worth=excluded.initial_net_worth,
			total_months=excluded.total_months,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		game.GameID, game.Status, game.FinancialGoal, game.InitialNetWorth,
		game.TotalMonths, game.StartedAt, time.Now(),
	)
	return err
}

func (r *SQLiteGameRepository) GetByID(ctx context.Context, gameID int) (*GameRecord, error) {
	query := `SELECT game_id, status, financial_goal, initial_net_worth, total_months, started_at, last_updated FROM games WHERE game_id = ?`
	var g GameRecord
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(
		&g.GameID, &g.Status, &g.FinancialGoal, &g.InitialNetWorth, &g.TotalMonths, &g.StartedAt, &g.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}
