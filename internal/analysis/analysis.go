// Package analysis adapts raw form inputs (percentages and years, as a user
// types them) into engine inputs, runs the MBS engine once, and packages the
// outcome as an immutable Result for rendering.
//
// The adapter owns no state. Each Run takes a value snapshot of the form and
// returns a fresh Result; on failure nothing is returned, so a caller keeps
// whatever it displayed before.
package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/mbsanalysis/internal/logger"
	"github.com/rewired-gh/mbsanalysis/internal/mbs"
)

// Input holds the five form fields in user units.
type Input struct {
	Principal       float64 `json:"principal"`         // currency
	CouponRatePct   float64 `json:"coupon_rate_pct"`   // 5.0 = 5%
	TermYears       float64 `json:"term_years"`        // truncated to whole months
	PSAPct          float64 `json:"psa_pct"`           // 100 = 100% PSA
	DiscountRatePct float64 `json:"discount_rate_pct"` // 4.0 = 4%
}

// Validate rejects inputs the engine cannot price. Errors are *mbs.Error of
// kind InvalidInput naming the form field.
func (in Input) Validate() error {
	if bad(in.Principal) || in.Principal <= 0 {
		return mbs.Invalid("principal", "must be > 0", in.Principal)
	}
	if bad(in.CouponRatePct) || in.CouponRatePct < 0 {
		return mbs.Invalid("coupon_rate_pct", "must be >= 0", in.CouponRatePct)
	}
	if bad(in.TermYears) || in.TermYears <= 0 {
		return mbs.Invalid("term_years", "must be > 0", in.TermYears)
	}
	if in.TermMonths() < 1 {
		return mbs.Invalid("term_years", "must cover at least one month", in.TermYears)
	}
	if bad(in.PSAPct) || in.PSAPct < 0 {
		return mbs.Invalid("psa_pct", "must be >= 0", in.PSAPct)
	}
	if bad(in.DiscountRatePct) || in.DiscountRatePct < 0 {
		return mbs.Invalid("discount_rate_pct", "must be >= 0", in.DiscountRatePct)
	}
	return nil
}

// TermMonths converts the term to whole months, truncating partial months.
func (in Input) TermMonths() int {
	return int(in.TermYears * 12)
}

// Terms converts the form into engine loan terms.
func (in Input) Terms() mbs.LoanTerms {
	return mbs.LoanTerms{
		Principal:        in.Principal,
		AnnualCouponRate: in.CouponRatePct / 100,
		TermMonths:       in.TermMonths(),
	}
}

// Prepayment converts the form into an engine PSA assumption.
func (in Input) Prepayment() mbs.PrepaymentAssumption {
	return mbs.PrepaymentAssumption{PSAFactor: in.PSAPct}
}

// Discount converts the form into an engine discount assumption.
func (in Input) Discount() mbs.DiscountAssumption {
	return mbs.DiscountAssumption{AnnualDiscountRate: in.DiscountRatePct / 100}
}

// Result is one completed valuation.
type Result struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Input     Input              `json:"input"`
	Terms     mbs.LoanTerms      `json:"terms"`
	Schedule  mbs.Schedule       `json:"schedule"`
	CashFlows mbs.CashFlowSeries `json:"cash_flows"`
	Metrics   mbs.Metrics        `json:"metrics"`
}

// WALLabel formats the WAL the way the results panel shows it.
func (r *Result) WALLabel() string {
	return fmt.Sprintf("%.2f months", r.Metrics.WAL)
}

// PriceLabel formats the price as a currency amount.
func (r *Result) PriceLabel() string {
	return fmt.Sprintf("$%.2f", r.Metrics.Price)
}

// WALYears expresses the WAL in years.
func (r *Result) WALYears() float64 {
	return r.Metrics.WAL / 12
}

// Run validates the form and evaluates it.
func Run(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	terms := in.Terms()
	logger.Debug("Evaluating principal=%.2f coupon=%.4f term_months=%d psa=%.2f discount=%.4f",
		terms.Principal, terms.AnnualCouponRate, terms.TermMonths, in.PSAPct, in.Discount().AnnualDiscountRate)

	schedule, metrics, err := mbs.EvaluateSchedule(terms, in.Prepayment(), in.Discount())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", err)
	}

	result := &Result{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Input:     in,
		Terms:     terms,
		Schedule:  schedule,
		CashFlows: schedule.CashFlows(),
		Metrics:   metrics,
	}
	logger.Debug("Valuation %s: wal=%.4f price=%.4f payoff_month=%d", result.ID, metrics.WAL, metrics.Price, schedule.PayoffMonth())

	return result, nil
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
