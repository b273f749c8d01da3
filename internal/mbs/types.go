// Package mbs implements the mortgage-backed security engine: the PSA
// prepayment model, the monthly amortization/cash-flow generator and the
// Weighted Average Life and present-value calculators.
//
// Every function is pure. Inputs are plain values, results are freshly
// allocated, and no state is kept between calls.
//
// Terminology:
//   - CPR: conditional (annualized) prepayment rate.
//   - SMM: single monthly mortality, the monthly equivalent of CPR.
//   - WAL: cash-flow weighted average life, in months.
package mbs

import "math"

// LoanTerms describes a fixed-rate level-payment loan (or pool).
type LoanTerms struct {
	Principal        float64 `json:"principal"`
	AnnualCouponRate float64 `json:"annual_coupon_rate"` // decimal, 0.05 = 5%
	TermMonths       int     `json:"term_months"`
}

// Validate checks that the terms can be amortized.
func (t LoanTerms) Validate() error {
	if !finite(t.Principal) || t.Principal <= 0 {
		return invalid("principal", "must be > 0", t.Principal)
	}
	if !finite(t.AnnualCouponRate) || t.AnnualCouponRate < 0 {
		return invalid("annual_coupon_rate", "must be >= 0", t.AnnualCouponRate)
	}
	if t.TermMonths < 1 {
		return invalid("term_months", "must be >= 1", float64(t.TermMonths))
	}
	return nil
}

// MonthlyRate is the coupon rate applied per period.
func (t LoanTerms) MonthlyRate() float64 {
	return t.AnnualCouponRate / 12
}

// PrepaymentAssumption is a PSA speed; 100 means 100% PSA.
type PrepaymentAssumption struct {
	PSAFactor float64 `json:"psa_factor"`
}

// Validate checks the PSA factor.
func (p PrepaymentAssumption) Validate() error {
	if !finite(p.PSAFactor) || p.PSAFactor < 0 {
		return invalid("psa_factor", "must be >= 0", p.PSAFactor)
	}
	return nil
}

// DiscountAssumption is the annual rate used to discount cash flows.
type DiscountAssumption struct {
	AnnualDiscountRate float64 `json:"annual_discount_rate"` // decimal
}

// Validate checks the discount rate.
func (d DiscountAssumption) Validate() error {
	if !finite(d.AnnualDiscountRate) || d.AnnualDiscountRate < 0 {
		return invalid("annual_discount_rate", "must be >= 0", d.AnnualDiscountRate)
	}
	return nil
}

// CashFlowSeries holds one total cash flow per month; index i is month i+1.
type CashFlowSeries []float64

// Len returns the number of months in the series.
func (s CashFlowSeries) Len() int {
	return len(s)
}

// Month returns the cash flow of a 1-based month, or 0 outside the series.
func (s CashFlowSeries) Month(month int) float64 {
	if month < 1 || month > len(s) {
		return 0
	}
	return s[month-1]
}

// Sum returns the undiscounted total of the series.
func (s CashFlowSeries) Sum() float64 {
	var total float64
	for _, cf := range s {
		total += cf
	}
	return total
}

// Period is one month of the amortization schedule.
type Period struct {
	Month              int     `json:"month"`
	SMM                float64 `json:"smm"`
	OpeningBalance     float64 `json:"opening_balance"`
	Interest           float64 `json:"interest"`
	ScheduledPrincipal float64 `json:"scheduled_principal"`
	Prepayment         float64 `json:"prepayment"`
	Principal          float64 `json:"principal"` // scheduled + prepayment, capped at balance
	CashFlow           float64 `json:"cash_flow"`
	ClosingBalance     float64 `json:"closing_balance"`
}

// Schedule is the month-by-month amortization of a loan.
type Schedule []Period

// CashFlows extracts the total cash flow of every period.
func (s Schedule) CashFlows() CashFlowSeries {
	out := make(CashFlowSeries, len(s))
	for i, p := range s {
		out[i] = p.CashFlow
	}
	return out
}

// TotalPrincipal sums principal returned over the schedule.
func (s Schedule) TotalPrincipal() float64 {
	var total float64
	for _, p := range s {
		total += p.Principal
	}
	return total
}

// TotalInterest sums interest paid over the schedule.
func (s Schedule) TotalInterest() float64 {
	var total float64
	for _, p := range s {
		total += p.Interest
	}
	return total
}

// payoffTolerance absorbs the floating-point residue left by the final level
// payment.
const payoffTolerance = 1e-6

// PayoffMonth returns the first month whose closing balance is retired, or 0
// if the balance is still outstanding at the end of the schedule.
func (s Schedule) PayoffMonth() int {
	for _, p := range s {
		if p.ClosingBalance <= payoffTolerance && p.CashFlow > 0 {
			return p.Month
		}
	}
	return 0
}

// Metrics are the valuation outputs of a cash-flow series.
type Metrics struct {
	WAL   float64 `json:"wal"`   // months
	Price float64 `json:"price"` // currency units
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
