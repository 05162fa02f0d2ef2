// Package period turns symbolic report periods and date-range expressions
// into concrete half-open time windows.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
)

// Token names a predefined reporting period.
type Token string

const (
	CurrentWeek   Token = "cw"
	PreviousWeek  Token = "pw"
	CurrentMonth  Token = "cm"
	PreviousMonth Token = "pm"
	AllTime       Token = "all"
)

// Names maps tokens to human readable labels.
var Names = map[Token]string{
	CurrentWeek:   "Current Week",
	PreviousWeek:  "Previous Week",
	CurrentMonth:  "Current Month",
	PreviousMonth: "Previous Month",
	AllTime:       "All Time",
}

const dateLayout = "02/01/2006"

// Window is a half-open [Start, End) range. A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Unbounded reports whether neither side of the window is set.
func (w Window) Unbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

func (w Window) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "..."
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("[%s, %s)", format(w.Start), format(w.End))
}

// Resolver computes windows relative to the clock's current time.
type Resolver struct {
	clock quartz.Clock
}

// NewResolver returns a resolver. A nil clock uses the wall clock.
func NewResolver(clock quartz.Clock) *Resolver {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Resolver{clock: clock}
}

// Resolve maps a token to its window. The reference point is today at
// midnight UTC; weeks start on Monday. Unknown tokens are unbounded.
func (r *Resolver) Resolve(tok Token) Window {
	now := r.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sinceMonday := (int(today.Weekday()) + 6) % 7

	switch tok {
	case CurrentWeek:
		return Window{Start: today.AddDate(0, 0, -sinceMonday)}
	case PreviousWeek:
		start := today.AddDate(0, 0, -sinceMonday-7)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}
	case CurrentMonth:
		return Window{Start: firstOfMonth(today)}
	case PreviousMonth:
		end := firstOfMonth(today)
		return Window{Start: end.AddDate(0, -1, 0), End: end}
	default:
		return Window{}
	}
}

// Parse accepts a token or one of since=DD/MM/YYYY, before=DD/MM/YYYY,
// between=DD/MM/YYYY-DD/MM/YYYY. Dates are midnight UTC. An empty expression
// means all time.
func (r *Resolver) Parse(expr string) (Window, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || Token(expr) == AllTime {
		return Window{}, nil
	}
	if _, ok := Names[Token(expr)]; ok {
		return r.Resolve(Token(expr)), nil
	}

	kind, value, ok := strings.Cut(expr, "=")
	if !ok {
		return Window{}, fmt.Errorf("unknown period %q: expected one of cw, pw, cm, pm, all or since=/before=/between=", expr)
	}

	switch kind {
	case "since":
		start, err := parseDate(value)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: start}, nil
	case "before":
		end, err := parseDate(value)
		if err != nil {
			return Window{}, err
		}
		return Window{End: end}, nil
	case "between":
		from, to, ok := strings.Cut(value, "-")
		if !ok {
			return Window{}, fmt.Errorf("between expects DD/MM/YYYY-DD/MM/YYYY, got %q", value)
		}
		start, err := parseDate(from)
		if err != nil {
			return Window{}, err
		}
		end, err := parseDate(to)
		if err != nil {
			return Window{}, err
		}
		if !start.Before(end) {
			return Window{}, fmt.Errorf("between: start %s is not before end %s", from, to)
		}
		return Window{Start: start, End: end}, nil
	default:
		return Window{}, fmt.Errorf("unknown period filter %q", kind)
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected DD/MM/YYYY", s)
	}
	return t, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
