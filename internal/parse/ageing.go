// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// The ageing analysis breaks pending bills into four fixed buckets.
// Reports label them inconsistently: "Under 1 year", "< 1 yr", "1-2
// years", "Over three years" and so on.
var (
	ageRangeRe = regexp.MustCompile(`(?i)(?:under|below|over|above|less\s+than|more\s+than|[<>])?\s*(?:\d+|one|two|three|four|five)\s*(?:(?:[-–]|to)\s*(?:\d+|one|two|three|four|five))?\s*(?:years?|yrs?)\b`)

	ageUnderRe = regexp.MustCompile(`(?i)(?:(?:under|below|less\s+than|<)\s*(?:1|one)|0\s*(?:[-–]|to)\s*1)\s*(?:years?|yrs?)`)
	age1to2Re  = regexp.MustCompile(`(?i)(?:1|one)\s*(?:[-–]|to)\s*(?:2|two)\s*(?:years?|yrs?)`)
	age2to3Re  = regexp.MustCompile(`(?i)(?:2|two)\s*(?:[-–]|to)\s*(?:3|three)\s*(?:years?|yrs?)`)
	ageOver3Re = regexp.MustCompile(`(?i)(?:over|above|more\s+than|>)\s*(?:3|three)\s*(?:years?|yrs?)`)
)

// ParseAgeing extracts the pending-bills age breakdown. Labels that
// look like age ranges but match no bucket are reported as warnings and
// their values dropped, never redistributed.
func ParseAgeing(markdown string) (types.AgeingBuckets, []string) {
	var b types.AgeingBuckets
	var warnings []string

	// Unit annotations usually sit on the table heading ("Ageing
	// analysis (Kshs. Million)") and apply to the rows below.
	unit := int64(1)
	for _, line := range strings.Split(markdown, "\n") {
		label, amt := ageRow(line, unit)
		if !amt.Valid {
			if u := labelUnit(line); u > 1 {
				unit = u
			}
			continue
		}
		if !ageRangeRe.MatchString(label) {
			continue
		}
		switch {
		case ageUnderRe.MatchString(label):
			keepFirst(&b.UnderOneYear, amt)
		case age1to2Re.MatchString(label):
			keepFirst(&b.OneToTwoYears, amt)
		case age2to3Re.MatchString(label):
			keepFirst(&b.TwoToThreeYears, amt)
		case ageOver3Re.MatchString(label):
			keepFirst(&b.OverThreeYears, amt)
		default:
			warnings = append(warnings, fmt.Sprintf("unmatched age bucket label %q dropped", strings.TrimSpace(label)))
		}
	}
	return b, warnings
}

// ageRow splits a line into its label part and the first value after
// it. Works for both table rows and "Under 1 year: Kshs 120.5 million"
// prose lines. unit applies to bare figures without their own suffix.
func ageRow(line string, unit int64) (string, types.Amount) {
	if strings.Contains(line, "|") {
		cells := splitRow(line)
		for i, cell := range cells {
			if a := ParseAmountUnit(cell, rowUnit(cells[:i], unit)); a.Valid {
				return strings.Join(cells[:i], " "), a
			}
		}
		return strings.Join(cells, " "), types.Amount{}
	}

	if i := strings.IndexAny(line, "0123456789"); i > 0 {
		if a := ParseAmountUnit(line[i:], unit); a.Valid {
			return line[:i], a
		}
	}
	// The label itself may hold digits ("1-2 years"); retry after the
	// age phrase.
	if loc := ageRangeRe.FindStringIndex(line); loc != nil {
		rest := strings.TrimLeft(line[loc[1]:], " :\t")
		if a := ParseAmountUnit(rest, unit); a.Valid {
			return line[:loc[1]], a
		}
		// Some prose puts the value first with the age range trailing
		// in parentheses: "Kshs 5,000,000 (1-2 years)".
		before := strings.TrimRight(line[:loc[0]], " \t(")
		if a := ParseAmountUnit(before, unit); a.Valid {
			return line[loc[0]:], a
		}
	}
	return line, types.Amount{}
}

// rowUnit prefers a unit named in the row's own label cells over the
// table-level default.
func rowUnit(labelCells []string, def int64) int64 {
	for _, c := range labelCells {
		if u := labelUnit(c); u > 1 {
			return u
		}
	}
	return def
}

func keepFirst(dst *types.Amount, a types.Amount) {
	if !dst.Valid {
		*dst = a
	}
}
