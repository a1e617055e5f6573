// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// DefaultFiscalYear is assumed when the text never names one.
const DefaultFiscalYear = "2024/25"

var (
	fiscalYearRe = regexp.MustCompile(`(?i)(?:FY|financial year)\s*(\d{4}/\d{2,4})`)
	separatorRe  = regexp.MustCompile(`^[\s|:\-]+$`)
)

// freeform value patterns, one per synonym, compiled once. Table cells
// are matched structurally instead; these cover prose like "recurrent
// expenditure of Kshs. 3.2 billion".
var (
	amountSynRe  = map[field][]*regexp.Regexp{}
	percentSynRe = map[field][]*regexp.Regexp{}
)

func init() {
	const amountTail = `[^|\n\d%]{0,60}?((?:kshs?|kes)?\.?\s*\(?[\d][\d,]*(?:\.\d+)?\)?\s*(?:billion|million|bn|mn|[bm])?)\b`
	const percentTail = `[^|\n\d%]{0,60}?(\d+(?:\.\d+)?)\s*(?:%|per\s*cent)`
	for f, syns := range labelSynonyms {
		for _, syn := range syns {
			pat := `(?i)` + strings.ReplaceAll(regexp.QuoteMeta(syn), ` `, `\s+`)
			if percentFields[f] {
				percentSynRe[f] = append(percentSynRe[f], regexp.MustCompile(pat+percentTail))
			} else {
				amountSynRe[f] = append(amountSynRe[f], regexp.MustCompile(pat+amountTail))
			}
		}
	}
}

// ParseRules extracts a record from markdown using label matching
// alone. It needs no model and never fails, returning an all-absent
// record in the worst case. Three passes: label-and-value table rows,
// column-mapped summary tables where the county is a data row, then
// freeform prose.
func ParseRules(markdown, county string) types.FinancialRecord {
	rec := types.FinancialRecord{County: county, FiscalYear: detectFiscalYear(markdown)}

	parseLabelRows(markdown, &rec)
	parseColumnTables(markdown, county, &rec)
	parseProse(markdown, &rec)

	return rec
}

// parseLabelRows handles county-section tables of the form
// "| OSR Target (Kshs. Million) | 6,930.66 |".
func parseLabelRows(markdown string, rec *types.FinancialRecord) {
	for _, line := range strings.Split(markdown, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitRow(line)
		for i, cell := range cells {
			f, ok := matchField(cell)
			if !ok {
				continue
			}
			unit := labelUnit(cell)
			for _, next := range cells[i+1:] {
				if percentFields[f] {
					if p := ParsePercent(next); p.Valid {
						setField(rec, f, types.Amount{}, p)
						break
					}
				} else if a := ParseAmountUnit(next, unit); a.Valid {
					setField(rec, f, a, types.Percent{})
					break
				}
			}
		}
	}
}

// parseColumnTables handles summary tables where the header row names
// the fields and the county appears as one data row.
func parseColumnTables(markdown, county string, rec *types.FinancialRecord) {
	var cols []field
	var units []int64
	countyLower := strings.ToLower(strings.TrimSpace(county))

	for _, line := range strings.Split(markdown, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		if separatorRe.MatchString(line) {
			continue
		}
		row := splitRow(line)

		if fields, us, matched := headerFields(row); matched >= 2 {
			cols, units = fields, us
			continue
		}
		if cols == nil || !strings.Contains(strings.ToLower(line), countyLower) {
			continue
		}
		for i, f := range cols {
			if f == fieldNone || i >= len(row) {
				continue
			}
			if percentFields[f] {
				setField(rec, f, types.Amount{}, ParsePercent(row[i]))
			} else {
				setField(rec, f, ParseAmountUnit(row[i], units[i]), types.Percent{})
			}
		}
	}
}

// parseProse handles figures quoted in running text.
func parseProse(markdown string, rec *types.FinancialRecord) {
	for f, res := range amountSynRe {
		for _, re := range res {
			if m := re.FindStringSubmatch(markdown); m != nil {
				setField(rec, f, ParseAmount(m[1]), types.Percent{})
				break
			}
		}
	}
	for f, res := range percentSynRe {
		for _, re := range res {
			if m := re.FindStringSubmatch(markdown); m != nil {
				setField(rec, f, types.Amount{}, ParsePercent(m[1]))
				break
			}
		}
	}
}

// headerFields maps a candidate header row to record fields per column.
// A row counts as a header only when no cell holds a bare figure.
func headerFields(row []string) ([]field, []int64, int) {
	fields := make([]field, len(row))
	units := make([]int64, len(row))
	matched := 0
	for i, cell := range row {
		units[i] = labelUnit(cell)
		if ParseAmount(cell).Valid {
			return nil, nil, 0
		}
		if f, ok := matchField(cell); ok {
			fields[i] = f
			matched++
		}
	}
	return fields, units, matched
}

func detectFiscalYear(markdown string) string {
	if m := fiscalYearRe.FindStringSubmatch(markdown); m != nil {
		return m[1]
	}
	return DefaultFiscalYear
}

// splitRow splits a markdown table row into trimmed cells, keeping
// interior empties so column positions survive.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// labelUnit reads a unit annotation out of a header or label cell, e.g.
// "OSR Target (Kshs. Million)".
func labelUnit(cell string) int64 {
	lower := strings.ToLower(cell)
	switch {
	case strings.Contains(lower, "billion"):
		return 1e9
	case strings.Contains(lower, "million"):
		return 1e6
	}
	return 1
}
