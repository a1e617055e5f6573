// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// The reports write amounts many ways: "4,880,829,952", "Kshs. 4.88
// billion", "(200,000)" for negatives, "-" for none. Absent figures
// must come back invalid, never zero.
var (
	currencyRe = regexp.MustCompile(`(?i)\b(?:kshs?|kes)\b\.?`)
	amountRe   = regexp.MustCompile(`^(-?[\d,]+(?:\.\d+)?)\s*(?i:(billion|bn|million|mn|[bm]))?\.?$`)
	percentRe  = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:%|per\s*cent)?`)
)

// ParseAmount converts a printed figure to shillings. Empty strings,
// dashes and placeholders parse as not-found.
func ParseAmount(s string) types.Amount {
	return ParseAmountUnit(s, 1)
}

// ParseAmountUnit parses a figure printed in the given unit, e.g. 1e6
// for values under a "Kshs. Million" column header. A figure carrying
// its own suffix ("4.88 billion") ignores the column unit.
func ParseAmountUnit(s string, unit int64) types.Amount {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "–", "n/a", "na", "nil", "none":
		return types.Amount{}
	}

	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.TrimSpace(currencyRe.ReplaceAllString(s, ""))

	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return types.Amount{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return types.Amount{}
	}
	switch strings.ToLower(m[2]) {
	case "billion", "bn", "b":
		v *= 1e9
	case "million", "mn", "m":
		v *= 1e6
	default:
		if unit > 1 {
			v *= float64(unit)
		}
	}
	if neg {
		v = -v
	}
	return types.Ksh(int64(math.Round(v)))
}

// ParsePercent converts "70", "70%" or "70 per cent" to a Percent.
// Values outside a plausible 0-1000 window parse as not-found; they are
// column bleed from a neighboring amount, not a rate.
func ParsePercent(s string) types.Percent {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return types.Percent{}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 1000 {
		return types.Percent{}
	}
	return types.Pct(v)
}
