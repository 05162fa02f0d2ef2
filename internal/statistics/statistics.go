// Package statistics aggregates per-hand amounts (profit or rake share) into
// totals and ISO-week / calendar-month buckets. Amounts stay in decimal
// cents; float64 only appears in the descriptive spread used for display.
package statistics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Entry is one hand's amount for a player, stamped with when it was played.
type Entry struct {
	Time   time.Time
	Amount decimal.Decimal
}

// Bucket is the sum of all entries sharing a period key.
type Bucket struct {
	Key    string // "2023-46" for weeks, "2023-11" for months
	Amount decimal.Decimal
	Hands  int
}

// Summary holds the grand total and both breakdowns for a set of entries.
type Summary struct {
	Hands   int
	Total   decimal.Decimal
	Weekly  []Bucket
	Monthly []Bucket
}

// Summarize computes the total, weekly and monthly breakdowns. An empty
// input yields a zero Summary with empty (non-nil) breakdowns.
func Summarize(entries []Entry) Summary {
	return Summary{
		Hands:   len(entries),
		Total:   Total(entries),
		Weekly:  SumByWeek(entries),
		Monthly: SumByMonth(entries),
	}
}

// Total sums every entry.
func Total(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// SumByWeek buckets entries by ISO-8601 year and week in UTC, keys ascending.
func SumByWeek(entries []Entry) []Bucket {
	return bucketize(entries, func(t time.Time) string {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-%02d", year, week)
	})
}

// SumByMonth buckets entries by calendar year and month in UTC, keys ascending.
func SumByMonth(entries []Entry) []Bucket {
	return bucketize(entries, func(t time.Time) string {
		return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
	})
}

func bucketize(entries []Entry, keyFn func(time.Time) string) []Bucket {
	index := make(map[string]int)
	buckets := []Bucket{}
	for _, e := range entries {
		key := keyFn(e.Time.UTC())
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Amount: decimal.Zero})
		}
		buckets[i].Amount = buckets[i].Amount.Add(e.Amount)
		buckets[i].Hands++
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// Cumulative returns the running sum of values, same length as the input.
func Cumulative(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	sum := decimal.Zero
	for i, v := range values {
		sum = sum.Add(v)
		out[i] = sum
	}
	return out
}

// Amounts extracts the amounts of entries in order.
func Amounts(entries []Entry) []decimal.Decimal {
	out := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		out[i] = e.Amount
	}
	return out
}

// Lookup returns the amount for key, or zero when the bucket is absent.
func Lookup(buckets []Bucket, key string) decimal.Decimal {
	for _, b := range buckets {
		if b.Key == key {
			return b.Amount
		}
	}
	return decimal.Zero
}

// IsLedgerBalanced checks that both breakdowns add up to the total.
func (s Summary) IsLedgerBalanced() bool {
	return sumBuckets(s.Weekly).Equal(s.Total) && sumBuckets(s.Monthly).Equal(s.Total)
}

// Validate performs consistency checks on the summary.
func (s Summary) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: total=%s weekly=%s monthly=%s",
			s.Total, sumBuckets(s.Weekly), sumBuckets(s.Monthly))
	}

	weeklyHands, monthlyHands := 0, 0
	for _, b := range s.Weekly {
		weeklyHands += b.Hands
	}
	for _, b := range s.Monthly {
		monthlyHands += b.Hands
	}
	if weeklyHands != s.Hands || monthlyHands != s.Hands {
		return fmt.Errorf("bucket hands (weekly=%d monthly=%d) do not match total hands (%d)",
			weeklyHands, monthlyHands, s.Hands)
	}
	return nil
}

func sumBuckets(buckets []Bucket) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range buckets {
		sum = sum.Add(b.Amount)
	}
	return sum
}

// Descriptive is the per-hand spread of a set of entries, in cents.
type Descriptive struct {
	Hands  int
	Mean   float64
	StdDev float64
	Median float64
	Best   decimal.Decimal
	Worst  decimal.Decimal
}

// Describe computes the per-hand mean, sample standard deviation, median and
// extremes. Fewer than two entries give a zero StdDev.
func Describe(entries []Entry) Descriptive {
	d := Descriptive{Hands: len(entries)}
	if len(entries) == 0 {
		return d
	}

	values := make([]float64, len(entries))
	d.Best, d.Worst = entries[0].Amount, entries[0].Amount
	for i, e := range entries {
		values[i] = e.Amount.InexactFloat64()
		if e.Amount.GreaterThan(d.Best) {
			d.Best = e.Amount
		}
		if e.Amount.LessThan(d.Worst) {
			d.Worst = e.Amount
		}
	}

	if len(values) > 1 {
		d.Mean, d.StdDev = stat.MeanStdDev(values, nil)
	} else {
		d.Mean = values[0]
	}
	sort.Float64s(values)
	d.Median = median(values)
	return d
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
