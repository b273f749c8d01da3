// Package report renders a completed valuation for people and for other
// programs: a text summary with a terminal cash-flow chart, a JSON document,
// or a per-month CSV schedule.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/mbsanalysis/internal/analysis"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a config value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or csv)", s)
	}
}

// Options controls rendering.
type Options struct {
	Format      Format
	ChartWidth  int
	ChartHeight int
}

// DefaultOptions renders a text report with a 72x14 chart.
var DefaultOptions = Options{
	Format:      FormatText,
	ChartWidth:  72,
	ChartHeight: 14,
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r *analysis.Result, opts Options) error {
	if r == nil {
		return fmt.Errorf("no result to render")
	}

	switch opts.Format {
	case FormatText, "":
		return renderText(w, r, opts)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatCSV:
		return renderCSV(w, r)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

// Currency formats an amount with thousands separators and cents.
func Currency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func renderText(w io.Writer, r *analysis.Result, opts Options) error {
	var b strings.Builder

	title := "MBS Prepayment Model"
	fmt.Fprintf(&b, "%s\n%s\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Run:             %s\n", r.ID)
	fmt.Fprintf(&b, "Principal:       %s\n", Currency(r.Input.Principal))
	fmt.Fprintf(&b, "Coupon rate:     %.2f%%\n", r.Input.CouponRatePct)
	fmt.Fprintf(&b, "Term:            %g years (%d months)\n", r.Input.TermYears, r.Terms.TermMonths)
	fmt.Fprintf(&b, "PSA speed:       %g%%\n", r.Input.PSAPct)
	fmt.Fprintf(&b, "Discount rate:   %.2f%%\n\n", r.Input.DiscountRatePct)

	fmt.Fprintf(&b, "WAL:             %s (%.2f years)\n", r.WALLabel(), r.WALYears())
	fmt.Fprintf(&b, "MBS Price:       %s\n", Currency(r.Metrics.Price))
	fmt.Fprintf(&b, "Total cash flow: %s\n", Currency(r.CashFlows.Sum()))
	fmt.Fprintf(&b, "Total interest:  %s\n", Currency(r.Schedule.TotalInterest()))
	if payoff := r.Schedule.PayoffMonth(); payoff > 0 {
		fmt.Fprintf(&b, "Retired:         month %d\n", payoff)
	} else {
		fmt.Fprintf(&b, "Retired:         not within term\n")
	}

	width, height := opts.ChartWidth, opts.ChartHeight
	if width <= 0 {
		width = DefaultOptions.ChartWidth
	}
	if height <= 0 {
		height = DefaultOptions.ChartHeight
	}

	fmt.Fprintf(&b, "\nMBS Cash Flows (PSA %.0f%%)\n", r.Input.PSAPct)
	for _, line := range Chart(r.CashFlows, r.Metrics.WAL, width, height) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile renders r into path atomically: the report is written to a
// temporary sibling first and renamed into place.
func WriteFile(path string, r *analysis.Result, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, r, opts); err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
