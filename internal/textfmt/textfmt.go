// Package textfmt formats market numbers for display regions.
package textfmt

import (
	"fmt"
	"math"
	"strconv"
)

// Compact renders n with a magnitude suffix: below 1000 as an integer,
// then one decimal with K, M or B.
func Compact(n float64) string {
	switch {
	case n >= 1e9:
		return oneDecimal(n/1e9) + "B"
	case n >= 1e6:
		return oneDecimal(n/1e6) + "M"
	case n >= 1e3:
		return oneDecimal(n/1e3) + "K"
	}
	return strconv.FormatFloat(math.Round(n), 'f', 0, 64)
}

// oneDecimal rounds ties away from zero (strconv rounds exact ties to even).
func oneDecimal(n float64) string {
	return strconv.FormatFloat(math.Round(n*10)/10, 'f', 1, 64)
}

// Price renders a USD price with eight decimals.
func Price(usd float64) string {
	return fmt.Sprintf("$%.8f", usd)
}

// Change renders a signed percentage with two decimals.
func Change(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Fixed renders n with the given number of decimals.
func Fixed(n float64, decimals int) string {
	return strconv.FormatFloat(n, 'f', decimals, 64)
}

// Address shortens a wallet address to 0x1234...abcd form.
func Address(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
