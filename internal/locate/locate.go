// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate turns a county name into the small set of report pages
// worth rendering. It never scans the whole document: every strategy is
// bounded, and the returned ranges are capped at the section length
// plus one except for the bounded brute-force window.
package locate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/internal/layout"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// NotLocatedError is fatal: no viable page range exists for the county
// even after every fallback, typically because the default range falls
// outside the document.
type NotLocatedError struct {
	County string
	Reason string
}

func (e *NotLocatedError) Error() string {
	return fmt.Sprintf("county %q could not be located: %s", e.County, e.Reason)
}

// Location is a located county section plus how it was found. Methods
// other than the formula lower the run's confidence downstream.
type Location struct {
	Pages  types.PageRange
	Method types.LocationMethod

	// Validated is false when no candidate page ever matched the
	// county's section header.
	Validated bool
}

// County resolves the page range for one county, in strict priority
// order: TOC formula, header-validated expansion, static table,
// bounded brute force, default range. Every returned range fits the
// document and respects the section-length cap.
func County(doc document.Document, idx *layout.Index, county string, cfg types.LocatorConfig) (Location, error) {
	k := cfg.SectionLength

	// Step 1: formula lookup from the TOC index.
	if entry, ok := idx.Lookup(county); ok {
		length := k + 1
		if next := idx.NextStart(entry); next > entry.StartPage && next-entry.StartPage < length {
			length = next - entry.StartPage
		}
		if loc, ok := validateAround(doc, county, entry.StartPage, length, cfg); ok {
			return loc, nil
		}
		// TOC start never validated; fall through to the static table.
	}

	// Step 3: static approximate-location table.
	if start := layout.StaticStartPage(county); start > 0 {
		if loc, ok := validateAround(doc, county, start, k+1, cfg); ok {
			loc.Method = types.LocateStatic
			return loc, nil
		}
	}

	// Step 4: brute-force scan of the county-chapter window.
	if loc, ok := scanWindow(doc, county, cfg); ok {
		return loc, nil
	}

	// Step 5: default range, flagged low-confidence.
	pages := clampToDocument(types.Span(cfg.DefaultStartPage, k), doc.PageCount())
	if len(pages) == 0 {
		return Location{}, &NotLocatedError{County: county, Reason: "default page range outside document"}
	}
	return Location{Pages: pages, Method: types.LocateDefault, Validated: false}, nil
}

// validateAround checks the section header at start, then widens the
// search symmetrically by cfg.ExpandStep pages per round up to
// cfg.ExpandLimit. On a hit it returns the section range anchored at
// the validated start page.
func validateAround(doc document.Document, county string, start, length int, cfg types.LocatorConfig) (Location, bool) {
	if pageHasHeader(doc, start, county) {
		pages := sectionPages(doc, county, start, length)
		return Location{Pages: pages, Method: types.LocateFormula, Validated: true}, len(pages) > 0
	}

	step := cfg.ExpandStep
	if step < 1 {
		step = 1
	}
	for offset := step; offset <= cfg.ExpandLimit; offset += step {
		for _, candidate := range []int{start - offset, start + offset} {
			if candidate < 1 {
				continue
			}
			if pageHasHeader(doc, candidate, county) {
				pages := sectionPages(doc, county, candidate, length)
				return Location{Pages: pages, Method: types.LocateExpanded, Validated: true}, len(pages) > 0
			}
		}
	}
	return Location{}, false
}

// sectionPages builds the section range from a validated start page and
// cuts it where the next county's section begins. The page carrying the
// neighbour's header is kept: sections can share their boundary page.
func sectionPages(doc document.Document, county string, start, length int) types.PageRange {
	pages := clampToDocument(types.Span(start, length), doc.PageCount())
	for i, p := range pages {
		if i == 0 {
			continue
		}
		text, err := doc.PageText(p)
		if err != nil {
			continue
		}
		if document.MentionsOtherCounty(text, county) {
			return types.NewPageRange(pages[:i+1]...)
		}
	}
	return pages
}

// scanWindow walks the configured county-chapter window looking for the
// section header directly. The window bound is the only thing keeping
// this cheap; it must never cover the whole document.
func scanWindow(doc document.Document, county string, cfg types.LocatorConfig) (Location, bool) {
	first, last := cfg.ScanFirstPage, cfg.ScanLastPage
	if last > doc.PageCount() {
		last = doc.PageCount()
	}
	for p := first; p <= last; p++ {
		if pageHasHeader(doc, p, county) {
			pages := sectionPages(doc, county, p, cfg.SectionLength+1)
			if len(pages) == 0 {
				return Location{}, false
			}
			return Location{Pages: pages, Method: types.LocateBruteForce, Validated: true}, true
		}
	}
	return Location{}, false
}

func pageHasHeader(doc document.Document, page int, county string) bool {
	if page < 1 || page > doc.PageCount() {
		return false
	}
	text, err := doc.PageText(page)
	if err != nil {
		return false
	}
	return document.MatchesCountyHeader(text, county) &&
		!strings.Contains(strings.ToLower(text), "table of contents")
}

func clampToDocument(pages types.PageRange, pageCount int) types.PageRange {
	var out []int
	for _, p := range pages {
		if p >= 1 && p <= pageCount {
			out = append(out, p)
		}
	}
	return types.NewPageRange(out...)
}
