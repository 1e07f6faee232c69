package calc

import (
	"math/big"
	"strings"
)

// DefaultPlaces is the default number of decimal places used to display
// results that are not integers.
const DefaultPlaces = 10

// Format formats a result for display. Integers are written without a decimal
// point. Other values are rounded to the given number of decimal places with
// trailing zeros removed.
func Format(r *big.Rat, places int) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if places < 0 {
		places = 0
	}
	s := r.FloatString(places)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
