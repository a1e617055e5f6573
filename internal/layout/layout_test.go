// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// fakeDoc serves pages from a map; missing pages are empty, not errors.
type fakeDoc struct {
	pages map[int]string
	count int
}

func (d *fakeDoc) PageCount() int { return d.count }
func (d *fakeDoc) Path() string   { return "" }
func (d *fakeDoc) PageText(p int) (string, error) {
	if p < 1 || p > d.count {
		return "", fmt.Errorf("page %d out of range", p)
	}
	return d.pages[p], nil
}

// tocPage builds one synthetic TOC page with n entries starting at
// section 3.<from>.
func tocPage(from, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf("3.%d. County Government of County%d ............ %d\n",
			from+i, from+i, 100+4*(from+i)))
	}
	return b.String()
}

func testCfg() types.LocatorConfig {
	cfg := types.DefaultConfig().Locator
	cfg.MinCounties = 3
	return cfg
}

func TestBuildParsesDottedLeaders(t *testing.T) {
	doc := &fakeDoc{count: 600, pages: map[int]string{
		2: "TABLE OF CONTENTS\n" +
			"3.1. County Government of Mombasa ................................ 324\n" +
			"3.2. County Government of Kwale .................................. 328\n" +
			"3.3. County Government of Tana River ............................. 336\n",
	}}

	idx, err := Build(doc, testCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("got %d entries, want 3", idx.Len())
	}

	e, ok := idx.Lookup("Mombasa")
	if !ok || e.StartPage != 324 {
		t.Errorf("Lookup(Mombasa) = %+v, %v; want start 324", e, ok)
	}
	if e.Section != "3.1" {
		t.Errorf("Section = %q, want 3.1", e.Section)
	}

	// Multi-word names and the "County" suffix resolve too.
	if e, ok := idx.Lookup("Tana River County"); !ok || e.StartPage != 336 {
		t.Errorf("Lookup(Tana River County) = %+v, %v", e, ok)
	}
}

func TestBuildRelaxedPattern(t *testing.T) {
	// OCR mangled the dotted leaders into stray glyphs.
	doc := &fakeDoc{count: 600, pages: map[int]string{
		2: "3.1. County Government of Mombasa  _ _ _  324\n" +
			"3.2. County Government of Kwale  _ _ _  328\n" +
			"3.3. County Government of Kilifi  _ _ _  332\n",
	}}

	idx, err := Build(doc, testCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("got %d entries, want 3", idx.Len())
	}
}

func TestBuildRejectsFrontMatterPages(t *testing.T) {
	// Entries pointing into the front matter are TOC noise and must be
	// skipped, here leaving too few counties.
	doc := &fakeDoc{count: 600, pages: map[int]string{
		2: "3.1. County Government of Mombasa ........ 12\n" +
			"3.2. County Government of Kwale .......... 15\n" +
			"3.3. County Government of Kilifi ......... 332\n",
	}}

	_, err := Build(doc, testCfg())
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *IndexError", err)
	}
	if ie.Found != 1 {
		t.Errorf("Found = %d, want 1", ie.Found)
	}
}

func TestBuildTooFewCounties(t *testing.T) {
	cfg := testCfg()
	cfg.MinCounties = 40

	doc := &fakeDoc{count: 600, pages: map[int]string{2: tocPage(1, 10)}}
	_, err := Build(doc, cfg)

	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *IndexError", err)
	}
	if ie.Found != 10 || ie.Want != 40 {
		t.Errorf("IndexError = %+v, want Found=10 Want=40", ie)
	}
}

func TestBuildSpansMultipleTOCPages(t *testing.T) {
	cfg := testCfg()
	cfg.MinCounties = 40

	doc := &fakeDoc{count: 600, pages: map[int]string{
		2: tocPage(1, 20),
		3: tocPage(21, 20),
		4: tocPage(41, 7),
	}}

	idx, err := Build(doc, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 47 {
		t.Errorf("got %d entries, want 47", idx.Len())
	}
	if len(idx.SourcePages) != 3 {
		t.Errorf("SourcePages = %v, want 3 pages", idx.SourcePages)
	}
}

func TestNextStart(t *testing.T) {
	doc := &fakeDoc{count: 600, pages: map[int]string{
		2: "3.1. County Government of Mombasa ........ 324\n" +
			"3.2. County Government of Kwale .......... 328\n" +
			"3.3. County Government of Kilifi ......... 332\n",
	}}
	idx, err := Build(doc, testCfg())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	mombasa, _ := idx.Lookup("Mombasa")
	if got := idx.NextStart(mombasa); got != 328 {
		t.Errorf("NextStart(Mombasa) = %d, want 328", got)
	}

	kilifi, _ := idx.Lookup("Kilifi")
	if got := idx.NextStart(kilifi); got != 0 {
		t.Errorf("NextStart(last county) = %d, want 0", got)
	}
}

func TestRestoreRebuildsLookup(t *testing.T) {
	idx := &Index{Entries: []Entry{
		{County: "Mombasa", Section: "3.1", StartPage: 324},
		{County: "Kwale", Section: "3.2", StartPage: 328},
	}}
	idx.Restore()

	if e, ok := idx.Lookup("kwale"); !ok || e.StartPage != 328 {
		t.Errorf("Lookup after Restore = %+v, %v", e, ok)
	}
}

func TestStaticStartPage(t *testing.T) {
	if got := StaticStartPage("Mombasa County"); got != 324 {
		t.Errorf("StaticStartPage(Mombasa County) = %d, want 324", got)
	}
	if got := StaticStartPage("Atlantis"); got != 0 {
		t.Errorf("StaticStartPage(Atlantis) = %d, want 0", got)
	}
}
