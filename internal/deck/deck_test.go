package deck

import (
	"math/rand"
	"testing"
)

func TestDrawNeverRepeatsTemplate(t *testing.T) {
	c := NewCatalog(rand.New(rand.NewSource(42)))

	prev := ""
	for i := 0; i < 200; i++ {
		card := c.Draw(prev)
		if card.TemplateID == prev {
			t.Fatalf("Draw %d repeated template %q", i, prev)
		}
		prev = card.TemplateID
	}
}

func TestDrawSingleTemplateFallsBack(t *testing.T) {
	// Excluding the only template must not dead-end the deck
	c := NewCustomCatalog(rand.New(rand.NewSource(1)), []Template{
		{ID: "only", Kind: KindWindfall, Title: "Only card"},
	})

	card := c.Draw("only")
	if card.TemplateID != "only" {
		t.Errorf("Expected fallback to the only template, got %q", card.TemplateID)
	}
}

func TestEmptyCatalogPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for empty template set")
		}
	}()
	NewCustomCatalog(rand.New(rand.NewSource(1)), nil)
}

func TestMaterializedAmountRange(t *testing.T) {
	c := NewCatalog(rand.New(rand.NewSource(7)))

	for i := 0; i < 500; i++ {
		card := c.Draw("")
		var amount int64
		switch o := card.Outcome.(type) {
		case Windfall:
			amount = o.Gain
		case Expense:
			amount = o.Cost
		default:
			t.Fatalf("Default catalog produced unexpected outcome %T", card.Outcome)
		}

		if amount < 1000 || amount > 30000 {
			t.Fatalf("Amount %d outside [1000, 30000]", amount)
		}
		if amount%100 != 0 {
			t.Fatalf("Amount %d not a multiple of 100", amount)
		}
	}
}

func TestOutcomeMatchesKind(t *testing.T) {
	c := NewCatalog(rand.New(rand.NewSource(3)))

	for i := 0; i < 100; i++ {
		card := c.Draw("")
		switch card.Kind {
		case KindWindfall:
			if _, ok := card.Outcome.(Windfall); !ok {
				t.Fatalf("Windfall card carries %T", card.Outcome)
			}
		case KindEmergencyExpense:
			if _, ok := card.Outcome.(Expense); !ok {
				t.Fatalf("Expense card carries %T", card.Outcome)
			}
		}
	}
}

func TestFixedOutcomeTemplatesKeepTheirOutcome(t *testing.T) {
	c := NewCustomCatalog(rand.New(rand.NewSource(5)), []Template{
		{
			ID:      "boat_deal",
			Kind:    KindOpportunity,
			Title:   "Boat for sale",
			Outcome: Opportunity{Cost: 50000, MonthlyIncome: 2000},
		},
	})

	card := c.Draw("")
	opp, ok := card.Outcome.(Opportunity)
	if !ok {
		t.Fatalf("Expected Opportunity outcome, got %T", card.Outcome)
	}
	if opp.Cost != 50000 || opp.MonthlyIncome != 2000 {
		t.Errorf("Template outcome was not carried over: %+v", opp)
	}
}

func TestCardInstancesAreUnique(t *testing.T) {
	c := NewCatalog(rand.New(rand.NewSource(9)))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		card := c.Draw("")
		if seen[card.ID] {
			t.Fatalf("Duplicate card instance id %q", card.ID)
		}
		seen[card.ID] = true
	}
}
