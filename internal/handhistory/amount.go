package handhistory

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	decimalAmountRe = regexp.MustCompile(`\d[\d,]*\.\d+`)
	integerAmountRe = regexp.MustCompile(`\d[\d,]*`)
	hundred         = decimal.NewFromInt(100)
)

// ParseAmount extracts the monetary figure from a text fragment such as
// "[$1.25]" and returns it in cents. When several numbers are present the
// last one wins. A fragment without digits yields ErrUnparsableAmount.
func ParseAmount(fragment string) (int64, error) {
	match := lastMatch(decimalAmountRe, fragment)
	if match == "" {
		match = lastMatch(integerAmountRe, fragment)
	}
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableAmount, fragment)
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrUnparsableAmount, fragment, err)
	}
	return value.Mul(hundred).Round(0).IntPart(), nil
}

// FormatCents renders a cent amount as dollars, e.g. 1234 -> "12.34".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func lastMatch(re *regexp.Regexp, s string) string {
	matches := re.FindAllString(s, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}
