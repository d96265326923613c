package engine

import (
	"sync"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
)

// Server serializes access to the Engine for concurrent transports (HTTP
// handlers, WebSocket clients). The core state machine stays single-threaded:
// every command runs to completion under one lock before the next starts.
type Server struct {
	mu     sync.Mutex
	engine *Engine
}

// NewServer wraps an engine in the serializing facade.
func NewServer(e *Engine) *Server {
	return &Server{engine: e}
}

// AdvanceMove runs one turn and returns the resulting snapshot.
func (s *Server) AdvanceMove() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.AdvanceMove()
	return s.snapshotLocked()
}

// ResolveEvent resolves the current card and returns the resulting snapshot.
func (s *Server) ResolveEvent(action Action) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ResolveEvent(action)
	return s.snapshotLocked()
}

// NewGame resets to the scenario baseline and returns the fresh snapshot.
func (s *Server) NewGame(o Overrides) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.NewGame(o)
	return s.snapshotLocked()
}

// Snapshot returns the current state without mutating it.
func (s *Server) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// JournalEntries returns the merged display journal.
func (s *Server) JournalEntries() []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Game().JournalEntries()
}

// ProgressChart returns the chart series.
func (s *Server) ProgressChart() []ChartPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Game().ProgressChart()
}

// Snapshot is the read surface handed to the presentation layer: the raw
// state plus every derived figure, so clients never recompute finance math.
type Snapshot struct {
	GameID        int    `json:"game_id"`
	CurrentMonth  int    `json:"current_month"`
	CurrentMove   int    `json:"current_move"`
	MoveInMonth   int    `json:"move_in_month"`
	TotalMonths   int    `json:"total_months"`
	MovesPerMonth int    `json:"moves_per_month"`
	Status        Status `json:"status"`

	FinancialGoal   int64 `json:"financial_goal"`
	InitialNetWorth int64 `json:"initial_net_worth"`
	NetWorth        int64 `json:"net_worth"`
	GoalProgress    int   `json:"goal_progress"`
	RemainingMonths int   `json:"remaining_months"`

	Cash                   int64 `json:"cash"`
	CashFlow               int64 `json:"cash_flow"`
	TotalAssetIncome       int64 `json:"total_asset_income"`
	TotalLiabilityExpenses int64 `json:"total_liability_expenses"`
	TotalAssetsValue       int64 `json:"total_assets_value"`
	TotalLiabilitiesValue  int64 `json:"total_liabilities_value"`

	Assets      []portfolio.Asset     `json:"assets"`
	Liabilities []portfolio.Liability `json:"liabilities"`
	CurrentCard *deck.Card            `json:"current_card"`

	IncomeBreakdown   []IncomeExpenseItem `json:"income_breakdown"`
	ExpensesBreakdown []IncomeExpenseItem `json:"expenses_breakdown"`
}

func (s *Server) snapshotLocked() Snapshot {
	g := s.engine.Game()

	assets := make([]portfolio.Asset, 0, len(g.Assets))
	for _, a := range g.Assets {
		assets = append(assets, *a)
	}
	liabilities := make([]portfolio.Liability, 0, len(g.Liabilities))
	for _, l := range g.Liabilities {
		liabilities = append(liabilities, *l)
	}

	var card *deck.Card
	if g.CurrentCard != nil {
		copied := *g.CurrentCard
		card = &copied
	}

	return Snapshot{
		GameID:        g.GameID,
		CurrentMonth:  g.CurrentMonth,
		CurrentMove:   g.CurrentMove,
		MoveInMonth:   g.MoveInMonth(),
		TotalMonths:   g.TotalMonths,
		MovesPerMonth: g.MovesPerMonth,
		Status:        g.Status,

		FinancialGoal:   g.FinancialGoal,
		InitialNetWorth: g.InitialNetWorth,
		NetWorth:        g.NetWorth(),
		GoalProgress:    g.GoalProgress(),
		RemainingMonths: g.RemainingMonths(),

		Cash:                   g.CashAsset().Value,
		CashFlow:               g.CashFlow(),
		TotalAssetIncome:       g.TotalAssetIncome(),
		TotalLiabilityExpenses: g.TotalLiabilityExpenses(),
		TotalAssetsValue:       g.TotalAssetsValue(),
		TotalLiabilitiesValue:  g.TotalLiabilitiesValue(),

		Assets:      assets,
		Liabilities: liabilities,
		CurrentCard: card,

		IncomeBreakdown:   g.IncomeBreakdown(),
		ExpensesBreakdown: g.ExpensesBreakdown(),
	}
}
