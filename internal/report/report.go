// Package report renders results, import summaries and profit charts for
// the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/raketracker/internal/statistics"
	"github.com/lox/raketracker/internal/storage"
	"github.com/lox/raketracker/internal/tracker"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// Options control rendering.
type Options struct {
	NoColor     bool
	ChartWidth  int
	ChartHeight int
}

// Renderer formats reports for one output.
type Renderer struct {
	lg     *lipgloss.Renderer
	styles styles
	width  int
	height int
}

// NewRenderer detects the colour support of w unless NoColor is set.
func NewRenderer(w io.Writer, opts Options) *Renderer {
	lg := lipgloss.NewRenderer(w)
	if opts.NoColor {
		lg.SetColorProfile(termenv.Ascii)
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = 72
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = 16
	}
	return &Renderer{lg: lg, styles: newStyles(lg), width: opts.ChartWidth, height: opts.ChartHeight}
}

// FormatMoney renders an amount in cents as dollars, e.g. -$12.50.
func FormatMoney(cents decimal.Decimal) string {
	sign := ""
	if cents.IsNegative() {
		sign = "-"
	}
	return sign + "$" + cents.Abs().Shift(-2).StringFixed(2)
}

func (r *Renderer) money(cents decimal.Decimal) string {
	s := FormatMoney(cents)
	switch {
	case cents.IsPositive():
		return r.styles.Positive.Render(s)
	case cents.IsNegative():
		return r.styles.Negative.Render(s)
	default:
		return s
	}
}

func (r *Renderer) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.styles.Border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return r.styles.Cell
		})
}

// Results renders the totals, spread and monthly and weekly breakdowns of
// a player's results.
func (r *Renderer) Results(res tracker.Results) string {
	var b strings.Builder

	title := fmt.Sprintf("%s · %s", res.Player, res.Period)
	b.WriteString(r.styles.Title.Render(title))
	if !res.Window.Unbounded() {
		b.WriteString(" " + r.styles.Subtle.Render(res.Window.String()))
	}
	b.WriteString("\n")

	if res.Profit.Hands == 0 {
		b.WriteString(r.styles.Warning.Render("No hands found for this period."))
		b.WriteString("\n")
		return b.String()
	}

	p := res.Profit
	summary := r.table("Hands", "Profit", "Rake paid", "Per hand", "Std dev", "Best", "Worst").
		Row(
			strconv.Itoa(p.Hands),
			r.money(p.Total),
			FormatMoney(res.Rake.Total),
			FormatMoney(decimal.NewFromFloat(p.Spread.Mean)),
			FormatMoney(decimal.NewFromFloat(p.Spread.StdDev)),
			r.money(p.Spread.Best),
			r.money(p.Spread.Worst),
		)
	b.WriteString(summary.String())
	b.WriteString("\n")

	b.WriteString(r.breakdown("Month", p.Monthly, res.Rake.Monthly))
	b.WriteString("\n")
	b.WriteString(r.breakdown("Week", p.Weekly, res.Rake.Weekly))
	b.WriteString("\n")
	return b.String()
}

// breakdown joins profit and rake buckets on their period key.
func (r *Renderer) breakdown(label string, profit, rake []statistics.Bucket) string {
	t := r.table(label, "Hands", "Profit", "Rake paid")
	for _, bucket := range profit {
		t.Row(
			bucket.Key,
			strconv.Itoa(bucket.Hands),
			r.money(bucket.Amount),
			FormatMoney(statistics.Lookup(rake, bucket.Key)),
		)
	}
	return t.String()
}

// ImportSummary renders the outcome of one import.
func (r *Renderer) ImportSummary(res tracker.ImportResult) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Import " + res.Dir))
	b.WriteString("\n")

	t := r.table("Files", "Imported", "Rejected", "Skipped", "Duplicates", "Tournaments", "Took").
		Row(
			strconv.Itoa(res.Files),
			strconv.Itoa(res.Imported),
			strconv.Itoa(res.Rejected),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.Duplicates),
			strconv.Itoa(res.Tournaments),
			res.Duration().Round(time.Millisecond).String(),
		)
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, rej := range res.Rejects {
		b.WriteString(r.styles.Warning.Render("rejected"))
		b.WriteString(" " + rej.Error() + "\n")
	}
	return b.String()
}

// Imports renders the import history.
func (r *Renderer) Imports(runs []storage.ImportRun) string {
	if len(runs) == 0 {
		return r.styles.Subtle.Render("No imports recorded yet.") + "\n"
	}
	t := r.table("Run", "Started", "Directory", "Files", "Imported", "Rejected", "Skipped")
	for _, run := range runs {
		t.Row(
			run.ID.String()[:8],
			run.StartedAt.UTC().Format("2006-01-02 15:04"),
			run.Dir,
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Imported),
			strconv.Itoa(run.Rejected),
			strconv.Itoa(run.Skipped),
		)
	}
	return t.String() + "\n"
}
