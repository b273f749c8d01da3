package mbs

import (
	"fmt"
	"math"
)

// LevelPayment returns the constant monthly payment that amortizes principal
// over n months at monthlyRate. A non-positive rate falls back to straight-line
// repayment.
func LevelPayment(principal, monthlyRate float64, n int) float64 {
	if monthlyRate <= 0 {
		return principal / float64(n)
	}
	factor := math.Pow(1+monthlyRate, float64(n))
	return principal * monthlyRate * factor / (factor - 1)
}

// BuildSchedule amortizes the loan month by month, applying scheduled
// principal plus PSA prepayment each period.
//
// Prepayment is taken on the opening balance of the month, before scheduled
// principal is subtracted. Combined principal is capped at the balance, and
// once the balance is retired every later period is zero.
func BuildSchedule(terms LoanTerms, prepay PrepaymentAssumption) (Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := prepay.Validate(); err != nil {
		return nil, err
	}

	monthlyRate := terms.MonthlyRate()
	payment := LevelPayment(terms.Principal, monthlyRate, terms.TermMonths)
	balance := terms.Principal

	schedule := make(Schedule, 0, terms.TermMonths)
	for month := 1; month <= terms.TermMonths; month++ {
		if balance <= 0 {
			schedule = append(schedule, Period{Month: month})
			continue
		}

		smm, err := prepay.MonthlyRate(month)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}

		interest := balance * monthlyRate
		scheduled := math.Min(payment-interest, balance)
		prepayment := balance * smm
		principal := math.Min(scheduled+prepayment, balance)

		p := Period{
			Month:              month,
			SMM:                smm,
			OpeningBalance:     balance,
			Interest:           interest,
			ScheduledPrincipal: scheduled,
			Prepayment:         prepayment,
			Principal:          principal,
			CashFlow:           interest + principal,
		}
		balance -= principal
		p.ClosingBalance = balance

		schedule = append(schedule, p)
	}

	return schedule, nil
}

// Generate returns the monthly cash-flow series of the loan; its length is
// always terms.TermMonths.
func Generate(terms LoanTerms, prepay PrepaymentAssumption) (CashFlowSeries, error) {
	schedule, err := BuildSchedule(terms, prepay)
	if err != nil {
		return nil, err
	}
	return schedule.CashFlows(), nil
}
