package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/mbsanalysis/internal/mbs"
)

func defaultInput() Input {
	return Input{
		Principal:       1_000_000,
		CouponRatePct:   5.0,
		TermYears:       30,
		PSAPct:          100,
		DiscountRatePct: 4.0,
	}
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		field   string
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Input) {}},
		{name: "zero coupon and discount", mutate: func(in *Input) { in.CouponRatePct = 0; in.DiscountRatePct = 0 }},
		{name: "zero psa", mutate: func(in *Input) { in.PSAPct = 0 }},
		{name: "zero principal", mutate: func(in *Input) { in.Principal = 0 }, field: "principal", wantErr: true},
		{name: "negative coupon", mutate: func(in *Input) { in.CouponRatePct = -1 }, field: "coupon_rate_pct", wantErr: true},
		{name: "zero term", mutate: func(in *Input) { in.TermYears = 0 }, field: "term_years", wantErr: true},
		{name: "term under a month", mutate: func(in *Input) { in.TermYears = 0.05 }, field: "term_years", wantErr: true},
		{name: "negative psa", mutate: func(in *Input) { in.PSAPct = -10 }, field: "psa_pct", wantErr: true},
		{name: "negative discount", mutate: func(in *Input) { in.DiscountRatePct = -0.5 }, field: "discount_rate_pct", wantErr: true},
		{name: "NaN principal", mutate: func(in *Input) { in.Principal = math.NaN() }, field: "principal", wantErr: true},
		{name: "infinite discount", mutate: func(in *Input) { in.DiscountRatePct = math.Inf(1) }, field: "discount_rate_pct", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := defaultInput()
			tt.mutate(&in)

			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Input.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var mbsErr *mbs.Error
			require.True(t, errors.As(err, &mbsErr))
			assert.Equal(t, mbs.InvalidInput, mbsErr.Kind)
			assert.Equal(t, tt.field, mbsErr.Field)
		})
	}
}

func TestInputConversions(t *testing.T) {
	in := Input{Principal: 250000, CouponRatePct: 6.5, TermYears: 15.5, PSAPct: 150, DiscountRatePct: 3.25}

	terms := in.Terms()
	assert.Equal(t, 250000.0, terms.Principal)
	assert.InDelta(t, 0.065, terms.AnnualCouponRate, 1e-15)
	assert.Equal(t, 186, terms.TermMonths)

	assert.Equal(t, 150.0, in.Prepayment().PSAFactor)
	assert.InDelta(t, 0.0325, in.Discount().AnnualDiscountRate, 1e-15)

	// Partial months are truncated.
	assert.Equal(t, 12, Input{TermYears: 1.07}.TermMonths())
}

func TestRun(t *testing.T) {
	result, err := Run(defaultInput())
	require.NoError(t, err)

	_, err = uuid.Parse(result.ID)
	assert.NoError(t, err)
	assert.False(t, result.CreatedAt.IsZero())

	assert.Len(t, result.CashFlows, 360)
	assert.Len(t, result.Schedule, 360)
	assert.Equal(t, result.Schedule.CashFlows(), result.CashFlows)

	assert.InDelta(t, 94.083473, result.Metrics.WAL, 1e-5)
	assert.InDelta(t, 1072282.678870, result.Metrics.Price, 1e-4)
	assert.Equal(t, "94.08 months", result.WALLabel())
	assert.Equal(t, "$1072282.68", result.PriceLabel())
	assert.InDelta(t, 94.083473/12, result.WALYears(), 1e-6)
}

func TestRun_MatchesEngine(t *testing.T) {
	in := Input{Principal: 300000, CouponRatePct: 6.25, TermYears: 20, PSAPct: 175, DiscountRatePct: 5.5}

	result, err := Run(in)
	require.NoError(t, err)

	series, metrics, err := mbs.Evaluate(in.Terms(), in.Prepayment(), in.Discount())
	require.NoError(t, err)
	assert.Equal(t, series, result.CashFlows)
	assert.Equal(t, metrics, result.Metrics)
}

func TestRun_InvalidInputProducesNoResult(t *testing.T) {
	in := defaultInput()
	in.Principal = -100

	result, err := Run(in)
	assert.Nil(t, result)
	require.ErrorIs(t, err, mbs.ErrInvalidInput)
}

func TestRun_DistinctIDs(t *testing.T) {
	a, err := Run(defaultInput())
	require.NoError(t, err)
	b, err := Run(defaultInput())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Metrics, b.Metrics)
}
