package engine

import (
	"fmt"
	"time"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
	"github.com/mzhirov/moneyrace/server/internal/domain/rules"
)

// Status is the lifecycle state of a game. Transitions run one way:
// playing -> won or playing -> lost, and only a new game resets them.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Action is the player's choice when resolving an event card.
type Action string

const (
	ActionSkip          Action = "skip"
	ActionAcceptIncome  Action = "accept_income"
	ActionAcceptExpense Action = "accept_expense"
	ActionBuy           Action = "buy"
	ActionSell          Action = "sell"
)

// ResolvedCard is an event card after the player acted on it. Immutable once
// appended to the history.
type ResolvedCard struct {
	Card       deck.Card `json:"card"`
	Action     Action    `json:"action"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// MonthlyReport is the snapshot taken at each month-end settlement.
type MonthlyReport struct {
	Month            int       `json:"month"`
	Income           int64     `json:"income"`
	Expenses         int64     `json:"expenses"`
	CashFlow         int64     `json:"cash_flow"`
	Cash             int64     `json:"cash"`
	NetWorth         int64     `json:"net_worth"`
	AssetsValue      int64     `json:"assets_value"`
	LiabilitiesValue int64     `json:"liabilities_value"`
	Timestamp        time.Time `json:"timestamp"`
}

// Game is the authoritative state of one simulation run. It owns no behavior
// beyond invariant-preserving accessors; all mutation goes through the Engine.
type Game struct {
	GameID        int
	CurrentMonth  int // 1-based
	CurrentMove   int // monotonic, never reset within a game
	TotalMonths   int
	MovesPerMonth int
	Status        Status

	FinancialGoal   int64
	InitialNetWorth int64

	Assets      []*portfolio.Asset
	Liabilities []*portfolio.Liability

	CurrentCard    *deck.Card
	EventHistory   []ResolvedCard
	MonthlyReports []MonthlyReport

	// PrevTemplateID tracks the most recently drawn template so the next
	// draw excludes it.
	PrevTemplateID string
}

// CashAsset returns the single spendable-cash asset. A scenario without one
// is misconfigured; reaching this panic means the preset validation was
// bypassed.
func (g *Game) CashAsset() *portfolio.Asset {
	for _, a := range g.Assets {
		if a.Category == portfolio.AssetCash {
			return a
		}
	}
	panic(fmt.Sprintf("engine: game %d has no cash asset", g.GameID))
}

// RevolvingLiability returns the single credit-card liability that absorbs
// cash shortfalls. Same contract as CashAsset.
func (g *Game) RevolvingLiability() *portfolio.Liability {
	for _, l := range g.Liabilities {
		if l.Category == portfolio.LiabilityCreditCard {
			return l
		}
	}
	panic(fmt.Sprintf("engine: game %d has no revolving liability", g.GameID))
}

// TotalAssetIncome sums the monthly income of all assets.
func (g *Game) TotalAssetIncome() int64 {
	return portfolio.TotalIncome(g.Assets)
}

// TotalLiabilityExpenses sums the monthly expenses of all liabilities,
// deriving missing values without caching them (reads stay pure; the
// settlement owns the cache step).
func (g *Game) TotalLiabilityExpenses() int64 {
	return rules.TotalMonthlyExpenses(g.Liabilities)
}

// CashFlow is monthly income minus monthly expenses.
func (g *Game) CashFlow() int64 {
	return g.TotalAssetIncome() - g.TotalLiabilityExpenses()
}

// TotalAssetsValue sums the value of all assets, cash included.
func (g *Game) TotalAssetsValue() int64 {
	return portfolio.TotalValue(g.Assets)
}

// TotalLiabilitiesValue sums the outstanding balance of all liabilities.
func (g *Game) TotalLiabilitiesValue() int64 {
	return portfolio.TotalBalance(g.Liabilities)
}

// NetWorth is total asset value minus total liability balance. Cash is
// already counted inside the asset total.
func (g *Game) NetWorth() int64 {
	return g.TotalAssetsValue() - g.TotalLiabilitiesValue()
}

// GoalProgress reports progress from the initial net worth towards the goal,
// clamped to [0, 100].
func (g *Game) GoalProgress() int {
	return rules.GoalProgress(g.NetWorth(), g.InitialNetWorth, g.FinancialGoal)
}

// RemainingMonths reports how many months are left, this one included.
func (g *Game) RemainingMonths() int {
	return rules.RemainingMonths(g.TotalMonths, g.CurrentMonth)
}

// MoveInMonth is the 1-based position of the move counter within the month.
func (g *Game) MoveInMonth() int {
	return rules.MoveInMonth(g.CurrentMove, g.MovesPerMonth)
}

// GoalAchieved reports whether net worth has reached the financial goal.
func (g *Game) GoalAchieved() bool {
	return g.NetWorth() >= g.FinancialGoal
}

// TimeOver reports whether the month counter has run past the horizon.
func (g *Game) TimeOver() bool {
	return g.CurrentMonth > g.TotalMonths
}
