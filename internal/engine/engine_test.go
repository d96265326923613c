package engine

import (
	"math/rand"
	"testing"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
	"github.com/mzhirov/moneyrace/server/internal/journal"
	"github.com/mzhirov/moneyrace/server/internal/platform/logger"
	"github.com/mzhirov/moneyrace/server/internal/scenario"
)

// testPreset builds a minimal valid scenario: a salary, a cash buffer,
// a flat living expense and an empty revolving card at 50% annual.
func testPreset(cash, income, expense int64) scenario.Preset {
	return scenario.Preset{
		TotalMonths:   36,
		FinancialGoal: 0,
		Assets: []*portfolio.Asset{
			{ID: "salary", Name: "Salary", Category: portfolio.AssetWork, MonthlyIncome: income, Hidden: true},
			{ID: "cash", Name: "Cash", Category: portfolio.AssetCash, Value: cash},
		},
		Liabilities: []*portfolio.Liability{
			{ID: "living", Name: "Living expenses", Category: portfolio.LiabilityCommon, MonthlyExpense: expense, HasExpense: true, Hidden: true},
			{ID: "card", Name: "Credit card", Category: portfolio.LiabilityCreditCard, InterestRate: 50, HasExpense: true},
		},
	}
}

func newTestEngine(t *testing.T, p scenario.Preset, templates []deck.Template) (*Engine, *journal.Log) {
	t.Helper()

	log := logger.NewLogger()
	log.SetLevel("error")

	rng := rand.New(rand.NewSource(1))
	var catalog *deck.Catalog
	if templates == nil {
		catalog = deck.NewCatalog(rng)
	} else {
		catalog = deck.NewCustomCatalog(rng, templates)
	}

	jl := journal.NewLog(nil)
	e, err := New(p, catalog, jl, log, 4)
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	return e, jl
}

func countEvents(jl *journal.Log, eventType journal.EventType) int {
	n := 0
	for _, e := range jl.Replay() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func windfallOnly() []deck.Template {
	return []deck.Template{{ID: "w", Kind: deck.KindWindfall, Title: "Windfall"}}
}

func expenseOnly() []deck.Template {
	return []deck.Template{{ID: "x", Kind: deck.KindEmergencyExpense, Title: "Emergency"}}
}

func TestGameStartsWithFirstCard(t *testing.T) {
	e, jl := newTestEngine(t, testPreset(10000, 5000, 3000), nil)
	g := e.Game()

	if g.GameID != 1 {
		t.Errorf("Expected game id 1, got %d", g.GameID)
	}
	if g.CurrentMonth != 1 || g.CurrentMove != 0 {
		t.Errorf("Expected month 1 move 0, got month %d move %d", g.CurrentMonth, g.CurrentMove)
	}
	if g.Status != StatusPlaying {
		t.Errorf("Expected playing status, got %s", g.Status)
	}
	if g.CurrentCard == nil {
		t.Fatalf("Expected a card drawn at game start")
	}
	if countEvents(jl, journal.EventGameStarted) != 1 {
		t.Errorf("Expected one GAME_STARTED event")
	}
	if countEvents(jl, journal.EventCardDrawn) != 1 {
		t.Errorf("Expected one CARD_DRAWN event")
	}
}

func TestMonthSettlesOnBoundaryCrossing(t *testing.T) {
	e, jl := newTestEngine(t, testPreset(10000, 5000, 3000), nil)
	g := e.Game()

	// Four moves stay inside month 1
	for i := 0; i < 4; i++ {
		e.AdvanceMove()
	}
	if g.CurrentMonth != 1 {
		t.Errorf("Expected month 1 after 4 moves, got %d", g.CurrentMonth)
	}
	if len(g.MonthlyReports) != 0 {
		t.Errorf("Expected no reports yet, got %d", len(g.MonthlyReports))
	}

	// The fifth move crosses the boundary and settles month 1
	e.AdvanceMove()
	if g.CurrentMonth != 2 {
		t.Errorf("Expected month 2 after 5 moves, got %d", g.CurrentMonth)
	}
	if len(g.MonthlyReports) != 1 {
		t.Fatalf("Expected one report, got %d", len(g.MonthlyReports))
	}

	report := g.MonthlyReports[0]
	if report.Month != 1 {
		t.Errorf("Report must carry the settled month 1, got %d", report.Month)
	}
	if report.Income != 5000 || report.Expenses != 3000 || report.CashFlow != 2000 {
		t.Errorf("Expected 5000/3000/2000, got %d/%d/%d", report.Income, report.Expenses, report.CashFlow)
	}
	if got := g.CashAsset().Value; got != 12000 {
		t.Errorf("Expected cash 12000 after settlement, got %d", got)
	}
	if countEvents(jl, journal.EventMonthSettled) != 1 {
		t.Errorf("Expected one MONTH_SETTLED event")
	}
}

func TestEveryMoveDrawsFreshCard(t *testing.T) {
	// An out-of-reach goal keeps the game in progress across the
	// settlement on move 5
	p := testPreset(10000, 5000, 3000)
	p.FinancialGoal = 1000000000
	e, _ := newTestEngine(t, p, nil)
	g := e.Game()

	prevID := g.CurrentCard.ID
	for i := 0; i < 6; i++ {
		e.AdvanceMove()
		if g.CurrentCard == nil {
			t.Fatalf("Move %d left no current card", i+1)
		}
		if g.CurrentCard.ID == prevID {
			t.Errorf("Move %d did not draw a fresh card instance", i+1)
		}
		prevID = g.CurrentCard.ID
	}
}

func TestShortfallGrowsRevolvingDebt(t *testing.T) {
	// No income against a 2,000 living expense: the deficit becomes
	// revolving debt at interest-only accrual
	e, jl := newTestEngine(t, testPreset(0, 0, 2000), nil)
	g := e.Game()

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}

	if got := g.CashAsset().Value; got != 0 {
		t.Errorf("Expected cash clamped to 0, got %d", got)
	}
	card := g.RevolvingLiability()
	if card.Balance != 2000 {
		t.Errorf("Expected revolving balance 2000, got %d", card.Balance)
	}
	if card.MonthlyExpense != 84 {
		t.Errorf("Expected interest-only accrual 84, got %d", card.MonthlyExpense)
	}
	if countEvents(jl, journal.EventShortfallCredited) != 1 {
		t.Errorf("Expected one SHORTFALL_CREDITED event")
	}
}

func TestLiabilityRemovedWhenPaidOff(t *testing.T) {
	p := testPreset(10000, 20000, 0)
	p.Liabilities = append(p.Liabilities, &portfolio.Liability{
		ID:              "loan",
		Name:            "Last loan payment",
		Category:        portfolio.LiabilityConsumerLoan,
		Balance:         10000,
		RemainingMonths: 1,
		HasTerm:         true,
	})
	e, jl := newTestEngine(t, p, nil)
	g := e.Game()

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}

	for _, l := range g.Liabilities {
		if l.ID == "loan" {
			t.Fatalf("Paid-off loan still present with balance %d", l.Balance)
		}
	}
	if countEvents(jl, journal.EventLiabilityPaidOff) != 1 {
		t.Errorf("Expected one LIABILITY_PAID_OFF event")
	}
	// Settlement expenses reflect the liabilities that survive the month
	if got := g.CashAsset().Value; got != 30000 {
		t.Errorf("Expected cash 30000 after settlement, got %d", got)
	}
}

func TestSettlementCachesDerivedExpense(t *testing.T) {
	p := testPreset(1000000, 10000, 0)
	p.Liabilities = append(p.Liabilities, &portfolio.Liability{
		ID:              "mortgage",
		Name:            "Mortgage",
		Category:        portfolio.LiabilityMortgage,
		Balance:         115000,
		InterestRate:    8.64,
		RemainingMonths: 26,
		HasTerm:         true,
	})
	e, _ := newTestEngine(t, p, nil)
	g := e.Game()

	// Reads before settlement derive without caching
	if got := g.TotalLiabilityExpenses(); got != 4866 {
		t.Errorf("Expected derived expenses 4866, got %d", got)
	}
	var mortgage *portfolio.Liability
	for _, l := range g.Liabilities {
		if l.ID == "mortgage" {
			mortgage = l
		}
	}
	if mortgage.HasExpense {
		t.Fatalf("Read path must not cache the derived expense")
	}

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}

	if !mortgage.HasExpense || mortgage.MonthlyExpense != 4866 {
		t.Errorf("Expected settlement to cache payment 4866, got %d (cached=%v)",
			mortgage.MonthlyExpense, mortgage.HasExpense)
	}
	if mortgage.Balance != 110962 {
		t.Errorf("Expected balance 110962 after one payment, got %d", mortgage.Balance)
	}
	if mortgage.RemainingMonths != 25 {
		t.Errorf("Expected 25 months remaining, got %d", mortgage.RemainingMonths)
	}
}

func TestWinAtExactGoalOnSettlement(t *testing.T) {
	p := testPreset(1000, 5000, 0)
	p.FinancialGoal = 6000
	e, jl := newTestEngine(t, p, nil)
	g := e.Game()

	for i := 0; i < 4; i++ {
		e.AdvanceMove()
	}
	if g.Status != StatusPlaying {
		t.Fatalf("Game must not end before the month settles")
	}

	e.AdvanceMove()
	if g.Status != StatusWon {
		t.Errorf("Expected won at exact goal, got %s", g.Status)
	}
	if countEvents(jl, journal.EventGameWon) != 1 {
		t.Errorf("Expected one GAME_WON event")
	}
}

func TestWonTakesPriorityOverLost(t *testing.T) {
	// Goal reached in the same settlement that expires the horizon
	p := testPreset(1000, 5000, 0)
	p.FinancialGoal = 6000
	p.TotalMonths = 1
	e, _ := newTestEngine(t, p, nil)

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}

	if got := e.Game().Status; got != StatusWon {
		t.Errorf("Expected won to shadow the expired horizon, got %s", got)
	}
}

func TestLostWhenHorizonExpires(t *testing.T) {
	p := testPreset(1000, 5000, 0)
	p.FinancialGoal = 1000000000
	p.TotalMonths = 1
	e, jl := newTestEngine(t, p, nil)

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}

	if got := e.Game().Status; got != StatusLost {
		t.Errorf("Expected lost after the horizon, got %s", got)
	}
	if countEvents(jl, journal.EventGameLost) != 1 {
		t.Errorf("Expected one GAME_LOST event")
	}
}

func TestTerminalGameIgnoresMoves(t *testing.T) {
	p := testPreset(1000, 5000, 0)
	p.FinancialGoal = 6000
	p.TotalMonths = 1
	e, _ := newTestEngine(t, p, nil)
	g := e.Game()

	for i := 0; i < 5; i++ {
		e.AdvanceMove()
	}
	if g.Status != StatusWon {
		t.Fatalf("Setup failed: expected a won game, got %s", g.Status)
	}

	move, month, reports := g.CurrentMove, g.CurrentMonth, len(g.MonthlyReports)
	e.AdvanceMove()

	if g.CurrentMove != move || g.CurrentMonth != month || len(g.MonthlyReports) != reports {
		t.Errorf("Terminal game mutated on AdvanceMove")
	}
}

func TestResolveWindfall(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(10000, 5000, 3000), windfallOnly())
	g := e.Game()

	gain := g.CurrentCard.Outcome.(deck.Windfall).Gain
	e.ResolveEvent(ActionAcceptIncome)

	if got := g.CashAsset().Value; got != 10000+gain {
		t.Errorf("Expected cash %d, got %d", 10000+gain, got)
	}
	if g.CurrentCard != nil {
		t.Errorf("Resolved card must clear the current slot")
	}
	if len(g.EventHistory) != 1 {
		t.Fatalf("Expected one history entry, got %d", len(g.EventHistory))
	}
	if g.EventHistory[0].Action != ActionAcceptIncome {
		t.Errorf("History must record the action taken")
	}
}

func TestResolveExpense(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(100000, 5000, 3000), expenseOnly())
	g := e.Game()

	cost := g.CurrentCard.Outcome.(deck.Expense).Cost
	e.ResolveEvent(ActionAcceptExpense)

	if got := g.CashAsset().Value; got != 100000-cost {
		t.Errorf("Expected cash %d, got %d", 100000-cost, got)
	}
}

func TestResolveExpenseWithoutCashTakesCredit(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(0, 5000, 3000), expenseOnly())
	g := e.Game()

	cost := g.CurrentCard.Outcome.(deck.Expense).Cost
	e.ResolveEvent(ActionAcceptExpense)

	if got := g.CashAsset().Value; got != 0 {
		t.Errorf("Expected cash clamped to 0, got %d", got)
	}
	if got := g.RevolvingLiability().Balance; got != cost {
		t.Errorf("Expected revolving balance %d, got %d", cost, got)
	}
}

func TestResolveSkipLeavesCashUntouched(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(10000, 5000, 3000), windfallOnly())
	g := e.Game()

	e.ResolveEvent(ActionSkip)

	if got := g.CashAsset().Value; got != 10000 {
		t.Errorf("Expected cash 10000, got %d", got)
	}
	if len(g.EventHistory) != 1 {
		t.Errorf("Skip must still archive the card")
	}
}

func TestResolveWithoutCardIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(10000, 5000, 3000), windfallOnly())
	g := e.Game()

	e.ResolveEvent(ActionSkip)
	e.ResolveEvent(ActionAcceptIncome) // no card anymore

	if len(g.EventHistory) != 1 {
		t.Errorf("Expected history length 1, got %d", len(g.EventHistory))
	}
}

func TestBuyOpportunity(t *testing.T) {
	templates := []deck.Template{{
		ID:      "biz",
		Kind:    deck.KindOpportunity,
		Title:   "Vending machine route",
		Outcome: deck.Opportunity{Cost: 50000, MonthlyIncome: 2000},
	}}
	e, _ := newTestEngine(t, testPreset(60000, 5000, 3000), templates)
	g := e.Game()

	e.ResolveEvent(ActionBuy)

	if got := g.CashAsset().Value; got != 10000 {
		t.Errorf("Expected cash 10000 after purchase, got %d", got)
	}
	if len(g.Assets) != 3 {
		t.Fatalf("Expected a new asset, got %d total", len(g.Assets))
	}
	bought := g.Assets[2]
	if bought.MonthlyIncome != 2000 || bought.Value != 50000 {
		t.Errorf("Bought asset carries wrong figures: %+v", bought)
	}
}

func TestBuyWithoutCashIsSkipped(t *testing.T) {
	templates := []deck.Template{{
		ID:      "biz",
		Kind:    deck.KindOpportunity,
		Title:   "Vending machine route",
		Outcome: deck.Opportunity{Cost: 50000, MonthlyIncome: 2000},
	}}
	e, _ := newTestEngine(t, testPreset(1000, 5000, 3000), templates)
	g := e.Game()

	e.ResolveEvent(ActionBuy)

	if got := g.CashAsset().Value; got != 1000 {
		t.Errorf("Expected cash untouched, got %d", got)
	}
	if len(g.Assets) != 2 {
		t.Errorf("Expected no new asset, got %d total", len(g.Assets))
	}
	if len(g.EventHistory) != 1 {
		t.Errorf("Unaffordable purchase must still archive the card")
	}
}

func TestSellAsset(t *testing.T) {
	p := testPreset(10000, 5000, 3000)
	p.Assets = append(p.Assets, &portfolio.Asset{
		ID: "boat", Name: "Old boat", Category: portfolio.AssetOther, Value: 5000,
	})
	templates := []deck.Template{{
		ID:      "boat_sale",
		Kind:    deck.KindAssetSale,
		Title:   "Buyer for the boat",
		Outcome: deck.Sale{AssetID: "boat", SalePrice: 7000},
	}}
	e, _ := newTestEngine(t, p, templates)
	g := e.Game()

	e.ResolveEvent(ActionSell)

	if got := g.CashAsset().Value; got != 17000 {
		t.Errorf("Expected cash 17000 after sale, got %d", got)
	}
	for _, a := range g.Assets {
		if a.ID == "boat" {
			t.Errorf("Sold asset still present")
		}
	}
}

func TestSellUnknownAssetIsSkipped(t *testing.T) {
	templates := []deck.Template{{
		ID:      "ghost_sale",
		Kind:    deck.KindAssetSale,
		Title:   "Buyer for nothing",
		Outcome: deck.Sale{AssetID: "missing", SalePrice: 7000},
	}}
	e, _ := newTestEngine(t, testPreset(10000, 5000, 3000), templates)
	g := e.Game()

	e.ResolveEvent(ActionSell)

	if got := g.CashAsset().Value; got != 10000 {
		t.Errorf("Expected cash untouched, got %d", got)
	}
	if len(g.Assets) != 2 {
		t.Errorf("Expected assets untouched, got %d", len(g.Assets))
	}
}

func TestNewGameResetsState(t *testing.T) {
	e, _ := newTestEngine(t, testPreset(10000, 5000, 3000), nil)

	for i := 0; i < 7; i++ {
		e.AdvanceMove()
	}

	goal := int64(500000)
	months := 12
	e.NewGame(Overrides{FinancialGoal: &goal, TotalMonths: &months})
	g := e.Game()

	if g.GameID != 2 {
		t.Errorf("Expected game id 2 after reset, got %d", g.GameID)
	}
	if g.CurrentMonth != 1 || g.CurrentMove != 0 {
		t.Errorf("Expected month 1 move 0, got month %d move %d", g.CurrentMonth, g.CurrentMove)
	}
	if g.Status != StatusPlaying {
		t.Errorf("Expected playing status, got %s", g.Status)
	}
	if g.FinancialGoal != 500000 || g.TotalMonths != 12 {
		t.Errorf("Overrides not applied: goal %d months %d", g.FinancialGoal, g.TotalMonths)
	}
	if got := g.CashAsset().Value; got != 10000 {
		t.Errorf("Expected cash back at preset value, got %d", got)
	}
	if len(g.MonthlyReports) != 0 || len(g.EventHistory) != 0 {
		t.Errorf("Reports and history must reset")
	}
	if g.CurrentCard == nil {
		t.Errorf("New game must draw its first card")
	}
	if g.InitialNetWorth != g.NetWorth() {
		t.Errorf("Baseline must be recaptured at reset")
	}
}

func TestNetWorthCountsCashOnce(t *testing.T) {
	p := testPreset(10000, 5000, 3000)
	p.Liabilities[0].Balance = 4000
	e, _ := newTestEngine(t, p, nil)
	g := e.Game()

	// Assets: cash 10,000; liabilities: 4,000 balance
	if got := g.NetWorth(); got != 6000 {
		t.Errorf("Expected net worth 6000, got %d", got)
	}
}
