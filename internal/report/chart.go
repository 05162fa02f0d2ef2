package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/raketracker/internal/fileutil"
	"github.com/shopspring/decimal"
)

// Block elements for sub-character vertical resolution (1/8 to 8/8).
var blockChars = [9]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Chart plots a cumulative profit series, one column per bucket of hands,
// with the dollar range on the left axis. Columns above zero are drawn in
// the positive colour, below zero in the negative one.
func (r *Renderer) Chart(cumulative []decimal.Decimal) string {
	if len(cumulative) == 0 {
		return r.styles.Subtle.Render("No hands to chart.") + "\n"
	}

	data := make([]float64, len(cumulative))
	for i, v := range cumulative {
		data[i] = v.InexactFloat64()
	}

	top := FormatMoney(decimal.NewFromFloat(maxOf(data)))
	bottom := FormatMoney(decimal.NewFromFloat(minOf(data)))
	axisWidth := max(lipgloss.Width(top), lipgloss.Width(bottom))

	plot := r.area(downsample(data, r.width-axisWidth-1), r.height)

	axis := make([]string, r.height)
	axis[0] = top
	axis[r.height-1] = bottom
	axisCol := r.styles.Subtle.Width(axisWidth).Align(lipgloss.Right).Render(strings.Join(axis, "\n"))

	var b strings.Builder
	b.WriteString(r.styles.Header.Render("Profit"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, axisCol, r.styles.Border.Render("│"), plot))
	b.WriteString("\n")
	b.WriteString(r.styles.Subtle.Render(fmt.Sprintf("%s%d hands", strings.Repeat(" ", axisWidth+1), len(data))))
	b.WriteString("\n")
	return b.String()
}

// area renders cols as a filled area chart exactly height rows tall.
func (r *Renderer) area(cols []float64, height int) string {
	lo, hi := minOf(cols), maxOf(cols)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	levels := height * 8
	scaled := make([]int, len(cols))
	for i, v := range cols {
		s := int((v-lo)/span*float64(levels-1)) + 1
		scaled[i] = min(s, levels)
	}

	rows := make([]string, height)
	for row := range height {
		floor := (height - 1 - row) * 8
		var sb strings.Builder
		for col, level := range scaled {
			fill := level - floor
			if fill <= 0 {
				sb.WriteRune(' ')
				continue
			}
			style := r.styles.Positive
			if cols[col] < 0 {
				style = r.styles.Negative
			}
			sb.WriteString(style.Render(string(blockChars[min(fill, 8)])))
		}
		rows[row] = sb.String()
	}
	return strings.Join(rows, "\n")
}

// downsample reduces data to at most n points by averaging buckets.
func downsample(data []float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if len(data) <= n {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	out := make([]float64, n)
	size := float64(len(data)) / float64(n)
	for i := range n {
		start := int(float64(i) * size)
		end := min(int(float64(i+1)*size), len(data))
		sum := 0.0
		for _, v := range data[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func minOf(data []float64) float64 {
	m := data[0]
	for _, v := range data[1:] {
		m = min(m, v)
	}
	return m
}

func maxOf(data []float64) float64 {
	m := data[0]
	for _, v := range data[1:] {
		m = max(m, v)
	}
	return m
}

// ChartFileName names a saved chart after the first and last hand dates.
func ChartFileName(from, to time.Time) string {
	return fmt.Sprintf("chart_%s_to_%s.txt", from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
}

// SaveChart writes an uncoloured chart to dir and returns its path.
func SaveChart(dir string, from, to time.Time, cumulative []decimal.Decimal, width, height int) (string, error) {
	plain := NewRenderer(io.Discard, Options{NoColor: true, ChartWidth: width, ChartHeight: height})
	path := filepath.Join(dir, ChartFileName(from, to))
	if err := fileutil.WriteAtomic(path, []byte(plain.Chart(cumulative)), 0o644); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}
