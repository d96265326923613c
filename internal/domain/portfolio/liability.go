package portfolio

// LiabilityCategory classifies a debt obligation.
type LiabilityCategory string

const (
	LiabilityMortgage     LiabilityCategory = "mortgage"
	LiabilityCarLoan      LiabilityCategory = "car_loan"
	LiabilityConsumerLoan LiabilityCategory = "consumer_loan"
	LiabilityCreditCard   LiabilityCategory = "credit_card"
	LiabilityStudentLoan  LiabilityCategory = "student_loan"
	LiabilityCommon       LiabilityCategory = "common"
	LiabilityOther        LiabilityCategory = "other"
)

// Liability represents a debt obligation.
//
// A liability without a remaining term (HasTerm == false) is revolving: it
// never amortizes and never auto-expires. A fixed-term liability is amortized
// every settlement and removed once its balance or term reaches zero.
//
// MonthlyExpense is a cached value: HasExpense reports whether it has been
// set, either by the scenario preset or by the settlement cache step. Reads
// that need an expense for a liability without one must derive it through
// the rules package without writing it back.
type Liability struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ExpenseName     string            `json:"expense_name,omitempty"` // display label for the monthly charge
	Category        LiabilityCategory `json:"category"`
	MonthlyExpense  int64             `json:"monthly_expense"`
	HasExpense      bool              `json:"has_expense"`
	Balance         int64             `json:"balance"`
	OriginalBalance int64             `json:"original_balance"`
	InterestRate    float64           `json:"interest_rate"` // annual, percent
	RemainingMonths int               `json:"remaining_months,omitempty"`
	HasTerm         bool              `json:"has_term"`
	Hidden          bool              `json:"hidden,omitempty"`
}

// IsRevolving reports whether the liability has no fixed payoff schedule.
func (l *Liability) IsRevolving() bool {
	return !l.HasTerm
}

// TotalBalance sums the outstanding balance of all liabilities.
func TotalBalance(liabilities []*Liability) int64 {
	var sum int64
	for _, l := range liabilities {
		sum += l.Balance
	}
	return sum
}
