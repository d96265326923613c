package scenario

import (
	"testing"

	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
)

func TestDefaultPresetIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default preset failed validation: %v", err)
	}
}

func TestValidateRejectsMissingCash(t *testing.T) {
	p := Default()
	assets := p.Assets[:0]
	for _, a := range p.Assets {
		if a.Category != portfolio.AssetCash {
			assets = append(assets, a)
		}
	}
	p.Assets = assets

	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for a preset without a cash asset")
	}
}

func TestValidateRejectsDuplicateCreditCard(t *testing.T) {
	p := Default()
	p.Liabilities = append(p.Liabilities, &portfolio.Liability{
		ID:       "second_card",
		Category: portfolio.LiabilityCreditCard,
	})

	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for two credit-card liabilities")
	}
}

func TestValidateRejectsTermedCreditCard(t *testing.T) {
	p := Default()
	for _, l := range p.Liabilities {
		if l.Category == portfolio.LiabilityCreditCard {
			l.HasTerm = true
			l.RemainingMonths = 12
		}
	}

	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for a credit card with a fixed term")
	}
}

func TestValidateRejectsZeroHorizon(t *testing.T) {
	p := Default()
	p.TotalMonths = 0

	if err := p.Validate(); err == nil {
		t.Errorf("Expected error for a zero-month horizon")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := Default()
	clone := original.Clone()

	clone.Assets[0].MonthlyIncome = 999999
	clone.Liabilities[0].Balance = 123

	if original.Assets[0].MonthlyIncome == 999999 {
		t.Errorf("Clone shares asset records with the original")
	}
	if original.Liabilities[0].Balance == 123 {
		t.Errorf("Clone shares liability records with the original")
	}
}
