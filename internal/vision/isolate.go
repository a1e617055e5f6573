// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"regexp"
	"strings"
)

// countyHeaderRe matches a county section header in extracted markdown,
// with or without the heading hashes and section number the model may
// or may not preserve.
var countyHeaderRe = regexp.MustCompile(`(?i)#{0,3}\s*\d*\.?\d*\.?\s*County Government of\s+`)

// IsolateCounty trims concatenated page markdown down to the target
// county's section: from its header up to the next county header.
// When no header for the county exists the full markdown is returned
// unchanged, because summary tables carry the county as a table row
// rather than a heading.
func IsolateCounty(markdown, county string) string {
	startRe := regexp.MustCompile(countyHeaderRe.String() + regexp.QuoteMeta(strings.TrimSpace(county)))
	loc := startRe.FindStringIndex(markdown)
	if loc == nil {
		return markdown
	}

	rest := markdown[loc[0]:]
	for _, m := range countyHeaderRe.FindAllStringIndex(rest, -1) {
		if m[0] > 0 {
			return rest[:m[0]]
		}
	}
	return rest
}
