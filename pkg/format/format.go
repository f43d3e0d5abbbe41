// Package format renders numeric results for people. It never changes the
// values it is given.
package format

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"mercator-hq/routecost/pkg/sustain"
)

// Currency formats v with two decimals, e.g. "$1,234.50".
func Currency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// MicroCurrency formats v with precision that grows as the value shrinks so
// sub-cent costs stay readable.
func MicroCurrency(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs == 0:
		return "$0.00"
	case abs < 0.01:
		return fmt.Sprintf("$%.6f", v)
	case abs < 1:
		return fmt.Sprintf("$%.4f", v)
	default:
		return Currency(v)
	}
}

// Percent formats a fraction as a percentage with one decimal, e.g. 0.125 -> "12.5%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Tokens formats a token count with thousands separators.
func Tokens(n float64) string {
	return humanize.Commaf(math.Round(n))
}

// Energy formats watt-hours in the largest fitting unit with two decimals.
func Energy(wh float64) string {
	d := sustain.DisplayUnit(wh, "Wh")
	return fmt.Sprintf("%.2f %s", d.Value, d.Unit)
}

// CO2e formats kilograms of CO2-equivalent, switching to grams below 1 kg.
func CO2e(kg float64) string {
	if math.Abs(kg) < 1 {
		return fmt.Sprintf("%.2f gCO2e", kg*1000)
	}
	return fmt.Sprintf("%.2f kgCO2e", kg)
}
