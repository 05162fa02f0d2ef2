package period

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func resolverAt(t *testing.T, now time.Time) *Resolver {
	t.Helper()
	mClock := quartz.NewMock(t)
	mClock.Set(now)
	return NewResolver(mClock)
}

func TestResolve(t *testing.T) {
	// Wednesday afternoon
	r := resolverAt(t, time.Date(2023, time.November, 15, 16, 30, 0, 0, time.UTC))

	tests := []struct {
		token Token
		want  Window
	}{
		{CurrentWeek, Window{Start: day(2023, time.November, 13)}},
		{PreviousWeek, Window{Start: day(2023, time.November, 6), End: day(2023, time.November, 13)}},
		{CurrentMonth, Window{Start: day(2023, time.November, 1)}},
		{PreviousMonth, Window{Start: day(2023, time.October, 1), End: day(2023, time.November, 1)}},
		{AllTime, Window{}},
		{Token("yesterday"), Window{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			got := r.Resolve(tt.token)
			assert.True(t, tt.want.Start.Equal(got.Start), "start: want %v got %v", tt.want.Start, got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end: want %v got %v", tt.want.End, got.End)
		})
	}
}

func TestResolveWeekEdges(t *testing.T) {
	monday := resolverAt(t, time.Date(2023, time.November, 13, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, day(2023, time.November, 13), monday.Resolve(CurrentWeek).Start)

	sunday := resolverAt(t, time.Date(2023, time.November, 19, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, day(2023, time.November, 13), sunday.Resolve(CurrentWeek).Start)
	prev := sunday.Resolve(PreviousWeek)
	assert.Equal(t, day(2023, time.November, 6), prev.Start)
	assert.Equal(t, day(2023, time.November, 13), prev.End)
}

func TestResolvePreviousMonthAcrossYear(t *testing.T) {
	r := resolverAt(t, time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC))

	w := r.Resolve(PreviousMonth)
	assert.Equal(t, day(2023, time.December, 1), w.Start)
	assert.Equal(t, day(2024, time.January, 1), w.End)
}

func TestResolveUsesUTCMidnight(t *testing.T) {
	// 01:00 on Monday in Tbilisi is still Sunday in UTC
	tbilisi := time.FixedZone("+04", 4*60*60)
	r := resolverAt(t, time.Date(2023, time.November, 20, 1, 0, 0, 0, tbilisi))

	assert.Equal(t, day(2023, time.November, 13), r.Resolve(CurrentWeek).Start)
}

func TestParse(t *testing.T) {
	r := resolverAt(t, time.Date(2023, time.November, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		expr string
		want Window
	}{
		{"", Window{}},
		{"all", Window{}},
		{"pm", Window{Start: day(2023, time.October, 1), End: day(2023, time.November, 1)}},
		{"since=01/11/2023", Window{Start: day(2023, time.November, 1)}},
		{"before=01/11/2023", Window{End: day(2023, time.November, 1)}},
		{"between=01/10/2023-20/10/2023", Window{Start: day(2023, time.October, 1), End: day(2023, time.October, 20)}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := r.Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	r := NewResolver(quartz.NewMock(t))

	for _, expr := range []string{
		"lastweek",
		"since=2023-11-01",
		"between=01/10/2023",
		"between=20/10/2023-01/10/2023",
		"after=01/10/2023",
	} {
		_, err := r.Parse(expr)
		assert.Error(t, err, expr)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: day(2023, time.November, 6), End: day(2023, time.November, 13)}

	assert.True(t, w.Contains(day(2023, time.November, 6)))
	assert.True(t, w.Contains(day(2023, time.November, 12).Add(23*time.Hour)))
	assert.False(t, w.Contains(day(2023, time.November, 13)))
	assert.False(t, w.Contains(day(2023, time.November, 5)))
	assert.True(t, Window{}.Contains(day(1999, time.January, 1)))
	assert.True(t, Window{}.Unbounded())
	assert.Equal(t, "[2023-11-06, 2023-11-13)", w.String())
}
