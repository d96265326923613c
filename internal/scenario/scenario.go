// Package scenario provides the starting presets for a simulation run and
// validates the structural invariants the engine relies on: exactly one cash
// asset and exactly one revolving credit-card liability.
package scenario

import (
	"fmt"

	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
)

// Preset is the initial totals and collections a game starts from.
type Preset struct {
	TotalMonths   int
	FinancialGoal int64
	Assets        []*portfolio.Asset
	Liabilities   []*portfolio.Liability
}

// Default returns the standard "dig out of debt" scenario: a salary, a small
// cash buffer, fixed living expenses, an empty credit card and three debts.
// The financial goal of zero net worth means clearing the debt load within
// the horizon.
func Default() Preset {
	return Preset{
		TotalMonths:   36,
		FinancialGoal: 0,
		Assets: []*portfolio.Asset{
			{
				ID:            "salary",
				Name:          "Day job",
				Category:      portfolio.AssetWork,
				MonthlyIncome: 150000,
				Hidden:        true,
			},
			{
				ID:       "cash",
				Name:     "Cash",
				Category: portfolio.AssetCash,
				Value:    10000,
			},
		},
		Liabilities: []*portfolio.Liability{
			{
				ID:             "living_expenses",
				Name:           "Living expenses",
				Category:       portfolio.LiabilityCommon,
				MonthlyExpense: 75000,
				HasExpense:     true,
				Hidden:         true,
			},
			{
				ID:           "credit_card",
				Name:         "Credit card",
				ExpenseName:  "Credit card interest",
				Category:     portfolio.LiabilityCreditCard,
				HasExpense:   true, // starts at zero until a shortfall grows the balance
				InterestRate: 50,
			},
			{
				ID:              "car_loan",
				Name:            "Car loan",
				ExpenseName:     "Car loan payment",
				Category:        portfolio.LiabilityCarLoan,
				Balance:         2372000,
				OriginalBalance: 2372000,
				InterestRate:    14.2,
				RemainingMonths: 84,
				HasTerm:         true,
			},
			{
				ID:              "mortgage",
				Name:            "Mortgage",
				ExpenseName:     "Mortgage payment",
				Category:        portfolio.LiabilityMortgage,
				Balance:         115000,
				OriginalBalance: 115000,
				InterestRate:    8.64,
				RemainingMonths: 26,
				HasTerm:         true,
			},
			{
				ID:              "family_debt",
				Name:            "Debt to relatives",
				Category:        portfolio.LiabilityOther,
				Balance:         300000,
				OriginalBalance: 300000,
				HasExpense:      true, // interest-free, no scheduled payment
			},
		},
	}
}

// Validate checks the invariants the engine treats as configuration
// contracts. A preset failing these must never reach the engine.
func (p Preset) Validate() error {
	if p.TotalMonths < 1 {
		return fmt.Errorf("scenario: total months must be at least 1, got %d", p.TotalMonths)
	}

	cashCount := 0
	for _, a := range p.Assets {
		if a.Category == portfolio.AssetCash {
			cashCount++
		}
	}
	if cashCount != 1 {
		return fmt.Errorf("scenario: exactly one cash asset required, got %d", cashCount)
	}

	revolvingCards := 0
	for _, l := range p.Liabilities {
		if l.Category == portfolio.LiabilityCreditCard {
			if l.HasTerm {
				return fmt.Errorf("scenario: credit card %q must not carry a fixed term", l.ID)
			}
			revolvingCards++
		}
	}
	if revolvingCards != 1 {
		return fmt.Errorf("scenario: exactly one credit-card liability required, got %d", revolvingCards)
	}

	return nil
}

// Clone deep-copies the preset so each new game mutates its own records.
func (p Preset) Clone() Preset {
	out := Preset{
		TotalMonths:   p.TotalMonths,
		FinancialGoal: p.FinancialGoal,
		Assets:        make([]*portfolio.Asset, len(p.Assets)),
		Liabilities:   make([]*portfolio.Liability, len(p.Liabilities)),
	}
	for i, a := range p.Assets {
		copied := *a
		out.Assets[i] = &copied
	}
	for i, l := range p.Liabilities {
		copied := *l
		out.Liabilities[i] = &copied
	}
	return out
}
