// Package deck provides the event-card catalog: a fixed set of templates and
// the randomized materialization of card instances from them.
//
// Randomness is injected (*rand.Rand) so tests can seed the draws; the
// package never touches the process-wide generator.
package deck

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// TemplateKind tags the behavior of an event template.
type TemplateKind string

const (
	KindWindfall         TemplateKind = "windfall"
	KindEmergencyExpense TemplateKind = "emergency_expense"
	KindOpportunity      TemplateKind = "investment_opportunity"
	KindAssetSale        TemplateKind = "asset_sale"
)

// Outcome is the tagged payload of a materialized card. Exactly one concrete
// type is attached per card, matching the template kind, so a windfall can
// never carry a cost and vice versa.
type Outcome interface {
	isOutcome()
}

// Windfall is a one-off cash gain.
type Windfall struct {
	Gain int64 `json:"gain"`
}

// Expense is a one-off cash cost.
type Expense struct {
	Cost int64 `json:"cost"`
}

// Opportunity offers a new income-producing asset at a purchase cost.
type Opportunity struct {
	Cost          int64 `json:"cost"`
	MonthlyIncome int64 `json:"monthly_income"`
}

// Sale offers to sell an existing asset at a price.
type Sale struct {
	AssetID   string `json:"asset_id"`
	SalePrice int64  `json:"sale_price"`
}

func (Windfall) isOutcome()    {}
func (Expense) isOutcome()     {}
func (Opportunity) isOutcome() {}
func (Sale) isOutcome()        {}

// Template is a catalog entry a card can be materialized from.
// Windfall and emergency-expense templates roll their description from the
// pool and their magnitude from the standard range; other kinds carry a
// fixed outcome.
type Template struct {
	ID           string
	Kind         TemplateKind
	Title        string
	Descriptions []string
	Outcome      Outcome
}

// Card is one materialized occurrence. It stays the current card until
// resolved, then is appended immutably to the event history.
type Card struct {
	ID          string       `json:"id"` // unique per instance
	TemplateID  string       `json:"template_id"`
	Kind        TemplateKind `json:"kind"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Outcome     Outcome      `json:"outcome"`
}

var windfallDescriptions = []string{
	"Found money in an old jacket",
	"Won the lottery",
	"Inherited from a distant relative",
	"An old debt was finally repaid",
	"Picked up a weekend side job",
	"Received a bonus at work",
	"Sold some collectibles",
	"Won a contest",
	"Received a tax refund",
	"Found a discount coupon worth a fortune",
}

var expenseDescriptions = []string{
	"The fridge broke down and needs repairs",
	"Unexpected medical bills",
	"Urgent car repairs",
	"Speeding ticket",
	"Lost a wallet full of cash",
	"The washing machine gave out",
	"Had to buy a new phone",
	"Unplanned education expenses",
	"The computer died",
	"Urgent winter clothes shopping",
}

// DefaultTemplates returns the standard two-template catalog.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:           "emergency_expense",
			Kind:         KindEmergencyExpense,
			Title:        "Unexpected expenses",
			Descriptions: expenseDescriptions,
		},
		{
			ID:           "windfall",
			Kind:         KindWindfall,
			Title:        "Unexpected income",
			Descriptions: windfallDescriptions,
		},
	}
}

// Catalog draws event cards from a template set with a "no immediate repeat"
// selection policy.
type Catalog struct {
	templates []Template
	rng       *rand.Rand
}

// NewCatalog creates a catalog over the default templates.
func NewCatalog(rng *rand.Rand) *Catalog {
	return NewCustomCatalog(rng, DefaultTemplates())
}

// NewCustomCatalog creates a catalog over a caller-supplied template set.
func NewCustomCatalog(rng *rand.Rand, templates []Template) *Catalog {
	if len(templates) == 0 {
		panic("deck: catalog requires at least one template")
	}
	return &Catalog{templates: templates, rng: rng}
}

// SelectTemplate picks one template uniformly at random, excluding the one
// with excludeID. If excluding would empty the set, the draw falls back to
// the full catalog. Selection is otherwise memoryless.
func (c *Catalog) SelectTemplate(excludeID string) Template {
	candidates := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		if t.ID != excludeID {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = c.templates
	}
	return candidates[c.rng.Intn(len(candidates))]
}

// Materialize instantiates a fresh card from a template, rolling the random
// description and magnitude for the randomized kinds.
func (c *Catalog) Materialize(t Template) Card {
	card := Card{
		ID:         uuid.NewString(),
		TemplateID: t.ID,
		Kind:       t.Kind,
		Title:      t.Title,
		Outcome:    t.Outcome,
	}

	if len(t.Descriptions) > 0 {
		card.Description = t.Descriptions[c.rng.Intn(len(t.Descriptions))]
	}

	switch t.Kind {
	case KindWindfall:
		card.Outcome = Windfall{Gain: c.randomAmount()}
	case KindEmergencyExpense:
		card.Outcome = Expense{Cost: c.randomAmount()}
	}

	return card
}

// Draw selects a template (excluding the previous one) and materializes it.
func (c *Catalog) Draw(excludeID string) Card {
	return c.Materialize(c.SelectTemplate(excludeID))
}

// randomAmount rolls a magnitude between 1,000 and 30,000, rounded to the
// nearest hundred: round(uniform(10, 300)) * 100.
func (c *Catalog) randomAmount() int64 {
	return int64(math.Round(c.rng.Float64()*290+10)) * 100
}
