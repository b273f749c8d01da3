package mbs

import "math"

// WeightedAverageLife returns Σ(cf_i × i) / Σ cf_i for months i = 1..N, in
// months. A series with no positive cash flow is a DegenerateSeries error.
func WeightedAverageLife(series CashFlowSeries) (float64, error) {
	if err := validateSeries(series); err != nil {
		return 0, err
	}

	var weighted, total float64
	for i, cf := range series {
		weighted += cf * float64(i+1)
		total += cf
	}
	if total <= 0 {
		return 0, &Error{
			Kind:       DegenerateSeries,
			Constraint: "weighted average life is undefined: all cash flows are zero",
		}
	}
	return weighted / total, nil
}

// Price discounts the series monthly at annualDiscountRate/12:
// Σ cf_i × (1 + r/12)^(−i). A zero rate returns the plain sum and an empty
// series prices at 0.
func Price(series CashFlowSeries, annualDiscountRate float64) (float64, error) {
	if err := (DiscountAssumption{AnnualDiscountRate: annualDiscountRate}).Validate(); err != nil {
		return 0, err
	}
	if err := validateSeries(series); err != nil {
		return 0, err
	}

	growth := 1 + annualDiscountRate/12
	var pv float64
	for i, cf := range series {
		pv += cf * math.Pow(growth, -float64(i+1))
	}
	return pv, nil
}

// Evaluate runs the full engine for one request: cash flows, then WAL and
// price. Nothing is returned on error.
func Evaluate(terms LoanTerms, prepay PrepaymentAssumption, discount DiscountAssumption) (CashFlowSeries, Metrics, error) {
	schedule, metrics, err := EvaluateSchedule(terms, prepay, discount)
	if err != nil {
		return nil, Metrics{}, err
	}
	return schedule.CashFlows(), metrics, nil
}

// EvaluateSchedule is Evaluate keeping the per-month breakdown.
func EvaluateSchedule(terms LoanTerms, prepay PrepaymentAssumption, discount DiscountAssumption) (Schedule, Metrics, error) {
	if err := discount.Validate(); err != nil {
		return nil, Metrics{}, err
	}

	schedule, err := BuildSchedule(terms, prepay)
	if err != nil {
		return nil, Metrics{}, err
	}
	series := schedule.CashFlows()

	wal, err := WeightedAverageLife(series)
	if err != nil {
		return nil, Metrics{}, err
	}
	price, err := Price(series, discount.AnnualDiscountRate)
	if err != nil {
		return nil, Metrics{}, err
	}

	return schedule, Metrics{WAL: wal, Price: price}, nil
}

// validateSeries rejects negative or non-finite cash flows.
func validateSeries(series CashFlowSeries) error {
	for _, cf := range series {
		if !finite(cf) || cf < 0 {
			return invalid("cash_flow", "must be a finite non-negative amount", cf)
		}
	}
	return nil
}
