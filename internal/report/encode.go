package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/mbsanalysis/internal/analysis"
)

// Document is the JSON form of a valuation. Amounts are rounded to cents.
type Document struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Input         analysis.Input  `json:"input"`
	TermMonths    int             `json:"term_months"`
	WALMonths     decimal.Decimal `json:"wal_months"`
	WALYears      decimal.Decimal `json:"wal_years"`
	Price         decimal.Decimal `json:"price"`
	TotalCashFlow decimal.Decimal `json:"total_cash_flow"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	PayoffMonth   int             `json:"payoff_month,omitempty"`
	Periods       []PeriodRow     `json:"periods"`
}

// PeriodRow is one month of the schedule in a Document.
type PeriodRow struct {
	Month              int             `json:"month"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	Interest           decimal.Decimal `json:"interest"`
	ScheduledPrincipal decimal.Decimal `json:"scheduled_principal"`
	Prepayment         decimal.Decimal `json:"prepayment"`
	CashFlow           decimal.Decimal `json:"cash_flow"`
	ClosingBalance     decimal.Decimal `json:"closing_balance"`
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// NewDocument builds the JSON document for a result.
func NewDocument(r *analysis.Result) Document {
	doc := Document{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Input:         r.Input,
		TermMonths:    r.Terms.TermMonths,
		WALMonths:     cents(r.Metrics.WAL),
		WALYears:      cents(r.WALYears()),
		Price:         cents(r.Metrics.Price),
		TotalCashFlow: cents(r.CashFlows.Sum()),
		TotalInterest: cents(r.Schedule.TotalInterest()),
		PayoffMonth:   r.Schedule.PayoffMonth(),
		Periods:       make([]PeriodRow, 0, len(r.Schedule)),
	}
	for _, p := range r.Schedule {
		doc.Periods = append(doc.Periods, PeriodRow{
			Month:              p.Month,
			OpeningBalance:     cents(p.OpeningBalance),
			Interest:           cents(p.Interest),
			ScheduledPrincipal: cents(p.ScheduledPrincipal),
			Prepayment:         cents(p.Prepayment),
			CashFlow:           cents(p.CashFlow),
			ClosingBalance:     cents(p.ClosingBalance),
		})
	}
	return doc
}

func renderJSON(w io.Writer, r *analysis.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"month",
	"opening_balance",
	"interest",
	"scheduled_principal",
	"prepayment",
	"cash_flow",
	"closing_balance",
}

func renderCSV(w io.Writer, r *analysis.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range r.Schedule {
		row := []string{
			strconv.Itoa(p.Month),
			cents(p.OpeningBalance).StringFixed(2),
			cents(p.Interest).StringFixed(2),
			cents(p.ScheduledPrincipal).StringFixed(2),
			cents(p.Prepayment).StringFixed(2),
			cents(p.CashFlow).StringFixed(2),
			cents(p.ClosingBalance).StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write month %d: %w", p.Month, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
