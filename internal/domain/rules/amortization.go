// Package rules contains the pure calculation logic for the simulation:
// loan amortization, revolving minimum payments and the small counter/progress
// formulas of the turn state machine.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"fmt"
	"math"

	"github.com/mzhirov/moneyrace/server/internal/domain/portfolio"
)

const (
	// MinRevolvingPayment is the floor for a revolving minimum payment.
	MinRevolvingPayment int64 = 1000

	// RevolvingPaymentShare is the fraction of the balance a revolving
	// minimum payment is based on.
	RevolvingPaymentShare = 0.05
)

// PaymentBreakdown is the result of one monthly payment on a liability.
// All amounts are rounded half-up to whole currency units.
type PaymentBreakdown struct {
	TotalPayment     int64 `json:"total_payment"`
	PrincipalPart    int64 `json:"principal_part"`
	InterestPart     int64 `json:"interest_part"`
	RemainingBalance int64 `json:"remaining_balance"`
}

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualPercent float64) float64 {
	return annualPercent / 100 / 12
}

// CalculatePayment computes the monthly payment breakdown for a liability,
// dispatching between the annuity formula (fixed term) and the revolving
// minimum-payment rule (no term).
func CalculatePayment(l *portfolio.Liability) PaymentBreakdown {
	if l.IsRevolving() {
		return RevolvingPayment(l.Balance, MonthlyRate(l.InterestRate))
	}
	return AnnuityPayment(l.Balance, MonthlyRate(l.InterestRate), l.RemainingMonths)
}

// AnnuityPayment computes a fixed-term loan payment via the standard annuity
// formula. Calling it with a term below one month is a contract violation in
// the caller: the engine must only dispatch fixed-term liabilities here.
func AnnuityPayment(balance int64, monthlyRate float64, termMonths int) PaymentBreakdown {
	if termMonths < 1 {
		panic(fmt.Sprintf("rules: annuity payment requires a term of at least 1 month, got %d", termMonths))
	}

	b := float64(balance)

	if monthlyRate == 0 {
		payment := b / float64(termMonths)
		return PaymentBreakdown{
			TotalPayment:     roundHalfUp(payment),
			PrincipalPart:    roundHalfUp(payment),
			InterestPart:     0,
			RemainingBalance: roundHalfUp(math.Max(0, b-payment)),
		}
	}

	growth := math.Pow(1+monthlyRate, float64(termMonths))
	payment := b * (monthlyRate * growth) / (growth - 1)
	interest := b * monthlyRate
	principal := payment - interest

	return PaymentBreakdown{
		TotalPayment:     roundHalfUp(payment),
		PrincipalPart:    roundHalfUp(principal),
		InterestPart:     roundHalfUp(interest),
		RemainingBalance: roundHalfUp(math.Max(0, b-principal)),
	}
}

// RevolvingPayment computes the minimum payment for revolving debt:
// a share of the balance with a fixed floor, allocated interest-first,
// with the principal capped so the payment never overshoots the balance.
func RevolvingPayment(balance int64, monthlyRate float64) PaymentBreakdown {
	b := float64(balance)

	payment := math.Max(b*RevolvingPaymentShare, float64(MinRevolvingPayment))
	interest := math.Min(b*monthlyRate, payment)
	principal := math.Min(payment-interest, b)

	return PaymentBreakdown{
		TotalPayment:     roundHalfUp(interest + principal),
		PrincipalPart:    roundHalfUp(principal),
		InterestPart:     roundHalfUp(interest),
		RemainingBalance: roundHalfUp(math.Max(0, b-principal)),
	}
}

// RevolvingAccrual computes the interest-only minimum charge on a revolving
// balance: ceil(balance * rate / 100 / 12). Used when a shortfall grows the
// revolving liability; this path never runs through the annuity formula.
func RevolvingAccrual(balance int64, annualPercent float64) int64 {
	return int64(math.Ceil(float64(balance) * MonthlyRate(annualPercent)))
}

// DeriveMonthlyExpense returns the liability's monthly expense without
// mutating it: the cached value when present, otherwise the computed
// payment. Caching the derived value back is an explicit settlement step,
// never a side effect of a read.
func DeriveMonthlyExpense(l *portfolio.Liability) int64 {
	if l.HasExpense {
		return l.MonthlyExpense
	}
	return CalculatePayment(l).TotalPayment
}

// TotalMonthlyExpenses sums the monthly expense over all liabilities,
// deriving missing values on the fly without caching them.
func TotalMonthlyExpenses(liabilities []*portfolio.Liability) int64 {
	var sum int64
	for _, l := range liabilities {
		sum += DeriveMonthlyExpense(l)
	}
	return sum
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
