// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import "strings"

// NormalizeCounty folds a county name for comparison: lower case,
// collapsed whitespace, with "county" and "government of" qualifiers
// stripped. "Mombasa County" and "County Government of Mombasa" both
// normalize to "mombasa".
func NormalizeCounty(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "government of", " ")
	s = strings.ReplaceAll(s, "county", " ")
	return strings.Join(strings.Fields(s), " ")
}

// MatchesCountyHeader reports whether a page's text carries the section
// header for the given county. The check tolerates OCR noise around the
// header: it accepts "County Government of <Name>" in any casing as well
// as the upper-cased county name the report uses in running heads.
func MatchesCountyHeader(text, county string) bool {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(county) == "" {
		return false
	}
	folded := strings.ToLower(strings.Join(strings.Fields(text), " "))
	name := NormalizeCounty(county)
	if name == "" {
		return false
	}
	if strings.Contains(folded, "county government of "+name) {
		return true
	}
	// Running heads print the bare county name in capitals.
	return strings.Contains(strings.Join(strings.Fields(text), " "), strings.ToUpper(name))
}

// MentionsOtherCounty reports whether text contains a county-section
// header that is not the given county's. Used to stop a page walk at the
// next county's section.
func MentionsOtherCounty(text, county string) bool {
	folded := strings.ToLower(strings.Join(strings.Fields(text), " "))
	idx := strings.Index(folded, "county government of ")
	if idx < 0 {
		return false
	}
	rest := folded[idx+len("county government of "):]
	return !strings.HasPrefix(strings.TrimSpace(rest), NormalizeCounty(county))
}
