// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout builds the county index from a report's table of
// contents. The index maps normalized county names to their section
// start pages; everything downstream that needs to find a county starts
// here.
package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// Entry is one table-of-contents line: a county and its section start page.
type Entry struct {
	County    string `json:"county" yaml:"county"`
	Section   string `json:"section" yaml:"section"`
	StartPage int    `json:"start_page" yaml:"start_page"`
}

// Index is the parsed table of contents. Entries preserve document
// order so a county's section end can be inferred from the next entry.
// An Index is immutable once built and safe for concurrent readers.
type Index struct {
	Entries     []Entry `json:"entries" yaml:"entries"`
	SourcePages []int   `json:"source_pages" yaml:"source_pages"`

	byName map[string]int // normalized county -> position in Entries
}

// IndexError reports an unusable table of contents: the TOC window was
// unreadable or recovered fewer counties than the configured minimum.
// Callers recover via the static start-page table.
type IndexError struct {
	Found int
	Want  int
	Cause error
}

func (e *IndexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("table of contents unreadable: %v", e.Cause)
	}
	return fmt.Sprintf("table of contents recovered %d counties, want at least %d", e.Found, e.Want)
}

func (e *IndexError) Unwrap() error { return e.Cause }

// TOC lines look like
//
//	3.11. County Government of Isiolo ................................ 107
//
// The strict pattern requires the dotted leader; the relaxed one only
// needs a trailing page number, tolerating OCR-mangled leaders.
var (
	tocStrictRe  = regexp.MustCompile(`(\d+\.\d+)\.\s+County Government of\s+([A-Za-z][A-Za-z\s'\-]*?)\s+\.{2,}\s*(\d{2,})`)
	tocRelaxedRe = regexp.MustCompile(`(\d+\.\d+)\.\s+County Government of\s+([A-Za-z][A-Za-z\s'\-]*?)\s+\D*?(\d{2,})\s*$`)
)

// minStartPage filters TOC noise: county sections never start in the
// report's front matter.
const minStartPage = 40

// Build scans the TOC window of the document and returns the county
// index. It fails with *IndexError when fewer than cfg.MinCounties
// entries are recovered.
func Build(doc document.Document, cfg types.LocatorConfig) (*Index, error) {
	first, last := cfg.TOCFirstPage, cfg.TOCLastPage
	if last > doc.PageCount() {
		last = doc.PageCount()
	}

	var text strings.Builder
	var sourcePages []int
	for p := first; p <= last; p++ {
		t, err := doc.PageText(p)
		if err != nil {
			return nil, &IndexError{Cause: fmt.Errorf("page %d: %w", p, err)}
		}
		if strings.TrimSpace(t) == "" {
			continue
		}
		text.WriteString(t)
		text.WriteString("\n")
		sourcePages = append(sourcePages, p)
	}

	idx := parseTOC(text.String())
	idx.SourcePages = sourcePages

	if len(idx.Entries) < cfg.MinCounties {
		return nil, &IndexError{Found: len(idx.Entries), Want: cfg.MinCounties}
	}
	return idx, nil
}

// parseTOC extracts county entries from concatenated TOC text, trying
// the strict dotted-leader pattern first.
func parseTOC(text string) *Index {
	matches := tocStrictRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		for _, line := range strings.Split(text, "\n") {
			if m := tocRelaxedRe.FindStringSubmatch(line); m != nil {
				matches = append(matches, m)
			}
		}
	}

	idx := &Index{byName: make(map[string]int)}
	for _, m := range matches {
		page, err := strconv.Atoi(m[3])
		if err != nil || page < minStartPage {
			continue
		}
		name := strings.TrimSpace(m[2])
		key := document.NormalizeCounty(name)
		if _, dup := idx.byName[key]; dup {
			continue
		}
		idx.byName[key] = len(idx.Entries)
		idx.Entries = append(idx.Entries, Entry{County: name, Section: m[1], StartPage: page})
	}
	return idx
}

// Restore rebuilds the internal lookup table of an Index deserialized
// from a cache payload.
func (x *Index) Restore() {
	x.byName = make(map[string]int, len(x.Entries))
	for i, e := range x.Entries {
		x.byName[document.NormalizeCounty(e.County)] = i
	}
}

// Lookup resolves a county name, tolerating "X County" and partial
// spellings the way callers type them. The second value is false when
// the county is not in the index.
func (x *Index) Lookup(county string) (Entry, bool) {
	if x == nil {
		return Entry{}, false
	}
	key := document.NormalizeCounty(county)
	if key == "" {
		return Entry{}, false
	}
	if i, ok := x.byName[key]; ok {
		return x.Entries[i], true
	}
	// Partial match, e.g. "Taita" for "Taita Taveta".
	for name, i := range x.byName {
		if strings.Contains(name, key) {
			return x.Entries[i], true
		}
	}
	return Entry{}, false
}

// NextStart returns the start page of the county section after the
// given entry, or 0 for the last county.
func (x *Index) NextStart(e Entry) int {
	if x == nil {
		return 0
	}
	i, ok := x.byName[document.NormalizeCounty(e.County)]
	if !ok || i+1 >= len(x.Entries) {
		return 0
	}
	return x.Entries[i+1].StartPage
}

// Len returns the number of counties recovered.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.Entries)
}
