// Package engine contains the turn/month state machine of the simulation.
// This is the heartbeat of the game: move advancement, month-end settlement,
// event-card resolution and win/loss evaluation.
//
// ARCHITECTURAL RULE: the Engine is the only writer of the Game aggregate.
// Transports call it through the serializing Server facade; everything else
// reads derived views.
package engine

import (
	"fmt"
	"time"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
	"github.com/mzhirov/moneyrace/server/internal/domain/rules"
	"github.com/mzhirov/moneyrace/server/internal/journal"
	"github.com/mzhirov/moneyrace/server/internal/platform/logger"
	"github.com/mzhirov/moneyrace/server/internal/platform/metrics"
	"github.com/mzhirov/moneyrace/server/internal/scenario"
)

// Overrides adjusts the preset at new-game time.
type Overrides struct {
	FinancialGoal *int64
	TotalMonths   *int
}

// Engine orchestrates one game at a time over a scenario preset.
type Engine struct {
	game    *Game
	preset  scenario.Preset
	catalog *deck.Catalog
	journal *journal.Log
	logger  *logger.Logger

	movesPerMonth int
}

// New validates the preset, builds the engine and starts the first game.
func New(preset scenario.Preset, catalog *deck.Catalog, jl *journal.Log, log *logger.Logger, movesPerMonth int) (*Engine, error) {
	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid scenario: %w", err)
	}
	if movesPerMonth < 1 {
		return nil, fmt.Errorf("engine: moves per month must be at least 1, got %d", movesPerMonth)
	}

	e := &Engine{
		preset:        preset,
		catalog:       catalog,
		journal:       jl,
		logger:        log,
		movesPerMonth: movesPerMonth,
	}
	e.NewGame(Overrides{})
	return e, nil
}

// Game exposes the current aggregate for read-only use.
func (e *Engine) Game() *Game {
	return e.game
}

// NewGame resets everything to the scenario baseline, applies overrides,
// captures the fresh net worth as the progress baseline and draws the first
// card. The game id increments on every reset.
func (e *Engine) NewGame(o Overrides) {
	prevID := 0
	if e.game != nil {
		prevID = e.game.GameID
	}

	p := e.preset.Clone()
	g := &Game{
		GameID:        prevID + 1,
		CurrentMonth:  1,
		CurrentMove:   0,
		TotalMonths:   p.TotalMonths,
		MovesPerMonth: e.movesPerMonth,
		Status:        StatusPlaying,
		FinancialGoal: p.FinancialGoal,
		Assets:        p.Assets,
		Liabilities:   p.Liabilities,
	}
	if o.FinancialGoal != nil {
		g.FinancialGoal = *o.FinancialGoal
	}
	if o.TotalMonths != nil {
		g.TotalMonths = *o.TotalMonths
	}
	g.InitialNetWorth = g.NetWorth()
	e.game = g

	metrics.Get().RecordGameStart()
	e.emit(journal.EventGameStarted, map[string]interface{}{
		"financial_goal":    g.FinancialGoal,
		"total_months":      g.TotalMonths,
		"initial_net_worth": g.InitialNetWorth,
	})
	e.logger.Event("GAME_STARTED", g.GameID,
		fmt.Sprintf("goal=%d months=%d baseline=%d", g.FinancialGoal, g.TotalMonths, g.InitialNetWorth))

	e.drawCard()
}

// AdvanceMove performs one turn: bump the move counter, settle the month when
// the counter crosses the boundary, and draw the next event card. A terminal
// game makes this a no-op.
func (e *Engine) AdvanceMove() {
	g := e.game
	if g.Status != StatusPlaying {
		return
	}

	g.CurrentMove++
	metrics.Get().RecordMove()
	e.emit(journal.EventMoveAdvanced, map[string]interface{}{
		"move_in_month": g.MoveInMonth(),
	})

	if rules.MonthEndDue(g.CurrentMove, g.CurrentMonth, g.MovesPerMonth) {
		e.settleMonth()
	}

	e.drawCard()
}

// ResolveEvent applies the player's action to the current card, appends the
// resolved card to the event history and clears the current-card slot.
// Without a current card it is a guarded no-op.
func (e *Engine) ResolveEvent(action Action) {
	g := e.game
	if g.CurrentCard == nil {
		return
	}

	card := *g.CurrentCard

	switch action {
	case ActionAcceptIncome:
		if w, ok := card.Outcome.(deck.Windfall); ok {
			g.CashAsset().Value += w.Gain
		}
	case ActionAcceptExpense:
		if x, ok := card.Outcome.(deck.Expense); ok {
			e.spendCash(x.Cost)
		}
	case ActionBuy:
		e.buyAsset(card)
	case ActionSell:
		e.sellAsset(card)
	case ActionSkip:
		// no state change
	}

	g.EventHistory = append(g.EventHistory, ResolvedCard{
		Card:       card,
		Action:     action,
		ResolvedAt: time.Now(),
	})
	g.CurrentCard = nil

	metrics.Get().RecordCardResolved()
	e.emit(journal.EventCardResolved, map[string]interface{}{
		"card_id":  card.ID,
		"template": card.TemplateID,
		"action":   string(action),
	})
	e.logger.Event("CARD_RESOLVED", g.GameID, card.Title+" -> "+string(action))
}

// settleMonth runs the month-end batch: amortization, expense caching,
// cash-flow accrual, shortfall handling, reporting and end-condition checks.
func (e *Engine) settleMonth() {
	g := e.game

	// 1. Amortize every fixed-term liability from its current balance, rate
	// and term; drop the ones that reach zero balance or term. Removal
	// rebuilds the slice so it never disturbs the iteration.
	kept := make([]*portfolio.Liability, 0, len(g.Liabilities))
	for _, l := range g.Liabilities {
		if !l.HasTerm {
			kept = append(kept, l)
			continue
		}

		bd := rules.AnnuityPayment(l.Balance, rules.MonthlyRate(l.InterestRate), l.RemainingMonths)
		l.Balance = bd.RemainingBalance
		l.RemainingMonths--
		l.MonthlyExpense = bd.TotalPayment
		l.HasExpense = true

		if l.Balance <= 0 || l.RemainingMonths <= 0 {
			e.emit(journal.EventLiabilityPaidOff, map[string]interface{}{
				"liability_id": l.ID,
				"name":         l.Name,
			})
			e.logger.Event("LIABILITY_PAID_OFF", g.GameID, l.Name)
			continue
		}
		kept = append(kept, l)
	}
	g.Liabilities = kept

	// 2. Cache step: derive any still-missing monthly expense. This is the
	// only place a derived expense is written back.
	for _, l := range g.Liabilities {
		if !l.HasExpense {
			l.MonthlyExpense = rules.CalculatePayment(l).TotalPayment
			l.HasExpense = true
		}
	}

	income := g.TotalAssetIncome()
	expenses := g.TotalLiabilityExpenses()
	cashFlow := income - expenses

	// 3-4. Apply the cash flow; a negative result becomes revolving debt.
	cash := g.CashAsset()
	cash.Value += cashFlow
	if cash.Value < 0 {
		e.creditShortfall(-cash.Value)
	}

	// 5. Report snapshot, month index pre-increment.
	report := MonthlyReport{
		Month:            g.CurrentMonth,
		Income:           income,
		Expenses:         expenses,
		CashFlow:         cashFlow,
		Cash:             cash.Value,
		NetWorth:         g.NetWorth(),
		AssetsValue:      g.TotalAssetsValue(),
		LiabilitiesValue: g.TotalLiabilitiesValue(),
		Timestamp:        time.Now(),
	}
	g.MonthlyReports = append(g.MonthlyReports, report)

	metrics.Get().RecordSettlement()
	e.emit(journal.EventMonthSettled, report)
	e.logger.Event("MONTH_SETTLED", g.GameID,
		fmt.Sprintf("month=%d cashflow=%d networth=%d", report.Month, report.CashFlow, report.NetWorth))

	// 6.
	g.CurrentMonth++

	// 7.
	e.checkEndConditions()
}

// checkEndConditions evaluates the terminal states at a month boundary.
// Reaching the goal wins even when the horizon expired in the same month.
func (e *Engine) checkEndConditions() {
	g := e.game
	switch {
	case g.GoalAchieved():
		g.Status = StatusWon
		metrics.Get().RecordGameEnd(true)
		e.emit(journal.EventGameWon, map[string]interface{}{"net_worth": g.NetWorth()})
		e.logger.Event("GAME_WON", g.GameID, fmt.Sprintf("net worth %d reached goal %d", g.NetWorth(), g.FinancialGoal))
	case g.TimeOver():
		g.Status = StatusLost
		metrics.Get().RecordGameEnd(false)
		e.emit(journal.EventGameLost, map[string]interface{}{"net_worth": g.NetWorth()})
		e.logger.Event("GAME_LOST", g.GameID, fmt.Sprintf("horizon of %d months expired", g.TotalMonths))
	}
}

// spendCash deducts an amount from the cash asset, routing any deficit to
// the revolving liability.
func (e *Engine) spendCash(amount int64) {
	cash := e.game.CashAsset()
	cash.Value -= amount
	if cash.Value < 0 {
		e.creditShortfall(-cash.Value)
	}
}

// creditShortfall applies the shortfall rule: the deficit grows the revolving
// balance, cash clamps to zero, and the revolving monthly expense becomes the
// interest-only accrual on the new balance.
func (e *Engine) creditShortfall(deficit int64) {
	g := e.game
	card := g.RevolvingLiability()

	card.Balance += deficit
	card.MonthlyExpense = rules.RevolvingAccrual(card.Balance, card.InterestRate)
	card.HasExpense = true
	g.CashAsset().Value = 0

	metrics.Get().RecordShortfall()
	e.emit(journal.EventShortfallCredited, map[string]interface{}{
		"deficit":         deficit,
		"balance":         card.Balance,
		"monthly_expense": card.MonthlyExpense,
	})
	e.logger.Event("SHORTFALL_CREDITED", g.GameID,
		fmt.Sprintf("deficit=%d revolving balance=%d", deficit, card.Balance))
}

// buyAsset creates a new asset from an opportunity card when cash covers the
// cost; otherwise the purchase silently does not happen.
func (e *Engine) buyAsset(card deck.Card) {
	opp, ok := card.Outcome.(deck.Opportunity)
	if !ok {
		return
	}

	g := e.game
	cash := g.CashAsset()
	if cash.Value < opp.Cost {
		return
	}

	g.Assets = append(g.Assets, &portfolio.Asset{
		ID:            card.ID,
		Name:          card.Title,
		Category:      portfolio.AssetOther,
		MonthlyIncome: opp.MonthlyIncome,
		Value:         opp.Cost,
		PurchasePrice: opp.Cost,
	})
	cash.Value -= opp.Cost
}

// sellAsset removes the referenced asset and credits its sale price to cash.
// An unknown asset id is a guarded no-op.
func (e *Engine) sellAsset(card deck.Card) {
	sale, ok := card.Outcome.(deck.Sale)
	if !ok {
		return
	}

	g := e.game
	for i, a := range g.Assets {
		if a.ID == sale.AssetID {
			g.CashAsset().Value += sale.SalePrice
			g.Assets = append(g.Assets[:i], g.Assets[i+1:]...)
			return
		}
	}
}

// drawCard materializes the next event card, excluding the previously drawn
// template from selection.
func (e *Engine) drawCard() {
	g := e.game
	card := e.catalog.Draw(g.PrevTemplateID)
	g.CurrentCard = &card
	g.PrevTemplateID = card.TemplateID

	metrics.Get().RecordCardDrawn()
	e.emit(journal.EventCardDrawn, map[string]interface{}{
		"card_id":  card.ID,
		"template": card.TemplateID,
		"title":    card.Title,
	})
}

// emit appends a simulation event to the journal feed.
func (e *Engine) emit(eventType journal.EventType, payload interface{}) {
	g := e.game
	e.journal.Append(journal.SimEvent{
		ID:        journal.GenerateEventID(),
		GameID:    g.GameID,
		Timestamp: time.Now(),
		Type:      eventType,
		Month:     g.CurrentMonth,
		Move:      g.CurrentMove,
		Payload:   payload,
	})
}
