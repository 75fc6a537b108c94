package services

import (
	"fmt"
	"strings"
)

// FormatAmount formats an amount with its currency code, thousands grouping
// and exactly 2 decimal places (e.g., SAR 1,234,567.89).
func FormatAmount(amount float64, currency string) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	formatted := applyThousandsGrouping(parts[0]) + "." + parts[1]

	if currency != "" {
		formatted = currency + " " + formatted
	}
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

// applyThousandsGrouping inserts a comma every 3 digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
