package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupees formats d as Indian rupees with lakh/crore digit grouping,
// e.g. 1234567.5 -> "₹12,34,567.50". Whole amounts have no paise.
func FormatRupees(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	var s string
	if d.Equal(d.Truncate(0)) {
		s = d.StringFixed(0)
	} else {
		s = d.StringFixed(2)
	}

	whole, frac, _ := strings.Cut(s, ".")
	out := groupIndian(whole)
	if frac != "" {
		out += "." + frac
	}
	return sign + "₹" + out
}

// groupIndian inserts commas after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
