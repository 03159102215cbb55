// Package format renders prices for display. Every value is rounded on the
// decimal first, so the same input always produces the same bytes.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	PercentPlaces  = 2
	CurrencyPlaces = 2
	Hidden         = "••••••"
)

var locale = language.AmericanEnglish

var groupSep, decimalSep = separators(locale)

// separators reads the locale's marks off a rendered 1,000.5.
func separators(tag language.Tag) (group, point string) {
	r := []rune(message.NewPrinter(tag).Sprintf("%.1f", 1000.5))
	return string(r[1]), string(r[len(r)-2])
}

// number groups the exact decimal digits, values never pass through float64.
func number(v decimal.Decimal, places int32) string {
	digits := v.Abs().StringFixed(places)
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(decimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

func negative(v decimal.Decimal, places int32) bool {
	return v.Round(places).IsNegative()
}

// Price formats with grouping and fixed places: 118,337.31.
func Price(v decimal.Decimal, places int32) string {
	if negative(v, places) {
		return "-" + number(v, places)
	}
	return number(v, places)
}

// Currency formats a USD amount: $12,450.89, -$78.45.
func Currency(v decimal.Decimal, places int32) string {
	if negative(v, places) {
		return "-$" + number(v, places)
	}
	return "$" + number(v, places)
}

// Signed prefixes non-negative values with "+": +21.12, -0.00117.
func Signed(v decimal.Decimal, places int32) string {
	if negative(v, places) {
		return "-" + number(v, places)
	}
	return "+" + number(v, places)
}

func SignedCurrency(v decimal.Decimal, places int32) string {
	if negative(v, places) {
		return "-$" + number(v, places)
	}
	return "+$" + number(v, places)
}

// Percent formats a percent value: +0.33%, -4.12%.
func Percent(v decimal.Decimal) string {
	return Signed(v, PercentPlaces) + "%"
}

var compactUnits = []struct {
	suffix string
	size   decimal.Decimal
}{
	{"T", decimal.New(1, 12)},
	{"B", decimal.New(1, 9)},
	{"M", decimal.New(1, 6)},
	{"K", decimal.New(1, 3)},
}

// Compact abbreviates large quantities: 45.2M, $2.3T with Currency applied by the caller.
func Compact(v decimal.Decimal) string {
	abs := v.Abs()
	for _, unit := range compactUnits {
		if abs.GreaterThanOrEqual(unit.size) {
			return Price(v.Div(unit.size), 1) + unit.suffix
		}
	}
	return Price(v, 0)
}

// Mask hides a rendered value, keeping a rough length hint.
func Mask(rendered string, show bool) string {
	if show {
		return rendered
	}
	if n := len([]rune(rendered)); n < len([]rune(Hidden)) {
		return strings.Repeat("•", n)
	}
	return Hidden
}
