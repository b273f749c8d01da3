package mbs

import "math"

const (
	// PSARampMonths is the loan age at which the PSA ramp reaches its plateau.
	PSARampMonths = 30
	// PSARampCPR scales the ramp: at 100% PSA the CPR grows linearly from
	// 0 to this value over the first PSARampMonths months.
	PSARampCPR = 0.002
	// PSABaseCPR is the annual prepayment rate of 100% PSA on the plateau.
	PSABaseCPR = 0.06
)

// ConditionalPrepaymentRate returns the annualized CPR for a loan age under a
// PSA speed, clamped to [0, 1].
//
//	month <= 30: CPR = 0.002 × (month / 30) × psa/100
//	month  > 30: CPR = 0.06 × psa/100
//
// The ramp and the plateau use different coefficients, so at 100% PSA the
// CPR steps from 0.002 in month 30 to 0.06 in month 31.
func ConditionalPrepaymentRate(month int, psaFactor float64) (float64, error) {
	if month < 1 {
		return 0, invalid("month", "must be >= 1", float64(month))
	}
	if !finite(psaFactor) || psaFactor < 0 {
		return 0, invalid("psa_factor", "must be >= 0", psaFactor)
	}

	multiplier := psaFactor / 100
	var cpr float64
	if month <= PSARampMonths {
		cpr = PSARampCPR * (float64(month) / PSARampMonths) * multiplier
	} else {
		cpr = PSABaseCPR * multiplier
	}
	return clamp(cpr, 0, 1), nil
}

// SMMFromCPR converts an annual CPR into the equivalent single monthly rate.
func SMMFromCPR(cpr float64) float64 {
	cpr = clamp(cpr, 0, 1)
	return 1 - math.Pow(1-cpr, 1.0/12)
}

// MonthlyPrepaymentRate returns the SMM for a loan age under a PSA speed.
// The result is in [0, 1]; it reaches 1 only when the CPR saturates.
func MonthlyPrepaymentRate(month int, psaFactor float64) (float64, error) {
	cpr, err := ConditionalPrepaymentRate(month, psaFactor)
	if err != nil {
		return 0, err
	}
	return SMMFromCPR(cpr), nil
}

// MonthlyRate returns the SMM of this assumption for a loan age.
func (p PrepaymentAssumption) MonthlyRate(month int) (float64, error) {
	return MonthlyPrepaymentRate(month, p.PSAFactor)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
