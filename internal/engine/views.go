package engine

import (
	"fmt"
	"sort"

	"github.com/mzhirov/moneyrace/server/internal/domain/rules"
)

// IncomeExpenseItem is one row of the income or expense breakdown tables.
type IncomeExpenseItem struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"` // "asset" or "liability"
}

// JournalEntry is one row of the merged, chronologically descending journal
// of monthly reports and resolved events.
type JournalEntry struct {
	Kind        string `json:"kind"` // "monthly_report" or "event"
	Month       int    `json:"month,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      Action `json:"action,omitempty"`
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
}

// ChartPoint is one point of the progress chart: actual net worth against the
// goal line interpolated from the baseline to the target.
type ChartPoint struct {
	Month    int   `json:"month"`
	NetWorth int64 `json:"net_worth"`
	Goal     int64 `json:"goal"`
}

// IncomeBreakdown lists every asset's monthly income for display.
func (g *Game) IncomeBreakdown() []IncomeExpenseItem {
	items := make([]IncomeExpenseItem, 0, len(g.Assets))
	for _, a := range g.Assets {
		items = append(items, IncomeExpenseItem{
			Name:   a.Name,
			Amount: a.MonthlyIncome,
			Kind:   "asset",
		})
	}
	return items
}

// ExpensesBreakdown lists every liability's monthly expense for display,
// deriving missing values without caching them.
func (g *Game) ExpensesBreakdown() []IncomeExpenseItem {
	items := make([]IncomeExpenseItem, 0, len(g.Liabilities))
	for _, l := range g.Liabilities {
		name := l.Name
		if l.ExpenseName != "" {
			name = l.ExpenseName
		}
		items = append(items, IncomeExpenseItem{
			Name:   name,
			Amount: rules.DeriveMonthlyExpense(l),
			Kind:   "liability",
		})
	}
	return items
}

// JournalEntries merges monthly reports and resolved events into one list,
// newest first.
func (g *Game) JournalEntries() []JournalEntry {
	entries := make([]JournalEntry, 0, len(g.MonthlyReports)+len(g.EventHistory))

	for _, report := range g.MonthlyReports {
		entries = append(entries, JournalEntry{
			Kind:        "monthly_report",
			Month:       report.Month,
			Title:       fmt.Sprintf("Month %d report", report.Month),
			Description: fmt.Sprintf("Net worth: %d", report.NetWorth),
			Timestamp:   report.Timestamp.UnixMilli(),
		})
	}

	for _, event := range g.EventHistory {
		entries = append(entries, JournalEntry{
			Kind:        "event",
			Title:       event.Card.Title,
			Description: event.Card.Description,
			Action:      event.Action,
			Timestamp:   event.ResolvedAt.UnixMilli(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}

// ProgressChart returns the (month, netWorth, goal) series: the baseline
// point, one point per settled month, and a live point for the current month
// when it has not settled yet.
func (g *Game) ProgressChart() []ChartPoint {
	points := []ChartPoint{{
		Month:    0,
		NetWorth: g.InitialNetWorth,
		Goal:     g.InitialNetWorth,
	}}

	for _, report := range g.MonthlyReports {
		points = append(points, ChartPoint{
			Month:    report.Month,
			NetWorth: report.NetWorth,
			Goal:     g.goalLineAt(report.Month),
		})
	}

	if len(g.MonthlyReports) < g.CurrentMonth-1 {
		points = append(points, ChartPoint{
			Month:    g.CurrentMonth - 1,
			NetWorth: g.NetWorth(),
			Goal:     g.goalLineAt(g.CurrentMonth - 1),
		})
	}

	return points
}

// goalLineAt interpolates the goal line linearly from the baseline at month 0
// to the financial goal at the horizon.
func (g *Game) goalLineAt(month int) int64 {
	return g.InitialNetWorth + (g.FinancialGoal-g.InitialNetWorth)*int64(month)/int64(g.TotalMonths)
}
