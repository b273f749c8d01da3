package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/mbsanalysis/internal/mbs"
)

const (
	barGlyph    = '#'
	markerGlyph = ':'
)

// Chart draws cash flow against month as a bar chart of at most width
// columns and height rows, with a vertical marker at the WAL month. Each
// column shows the largest cash flow of the months it covers.
func Chart(series mbs.CashFlowSeries, wal float64, width, height int) []string {
	n := series.Len()
	if n == 0 || width <= 0 || height <= 0 {
		return nil
	}
	if width > n {
		width = n
	}

	columns := make([]float64, width)
	var peak float64
	for month := 1; month <= n; month++ {
		cf := series.Month(month)
		c := (month - 1) * width / n
		if cf > columns[c] {
			columns[c] = cf
		}
		if cf > peak {
			peak = cf
		}
	}
	if peak <= 0 {
		return []string{"(no cash flows)"}
	}

	levels := make([]int, width)
	for c, v := range columns {
		levels[c] = int(math.Round(v / peak * float64(height)))
	}

	walCol := -1
	if wal >= 1 {
		walCol = (int(math.Round(wal)) - 1) * width / n
		if walCol >= width {
			walCol = width - 1
		}
	}

	top := humanize.FormatFloat("#,###.", peak)
	labelWidth := len(top)

	lines := make([]string, 0, height+3)
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = top
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%*s |", labelWidth, label)
		for c := 0; c < width; c++ {
			switch {
			case levels[c] >= row:
				b.WriteRune(barGlyph)
			case c == walCol:
				b.WriteRune(markerGlyph)
			default:
				b.WriteByte(' ')
			}
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	lines = append(lines, fmt.Sprintf("%*s +%s", labelWidth, "0", strings.Repeat("-", width)))

	last := fmt.Sprintf("%d", n)
	axis := fmt.Sprintf("%*s  1%*s", labelWidth, "", width-1, last)
	lines = append(lines, axis)

	if walCol >= 0 {
		lines = append(lines, fmt.Sprintf("%*s  %s^ WAL %.2f months", labelWidth, "", strings.Repeat(" ", walCol), wal))
	}

	return lines
}
