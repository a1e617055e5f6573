// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// PageRange is an ordered set of distinct 1-indexed page numbers.
type PageRange []int

// NewPageRange sorts pages ascending and drops duplicates and
// non-positive entries.
func NewPageRange(pages ...int) PageRange {
	seen := make(map[int]bool, len(pages))
	var out PageRange
	for _, p := range pages {
		if p < 1 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Span returns a contiguous range [start, start+length-1].
func Span(start, length int) PageRange {
	pages := make([]int, 0, length)
	for i := 0; i < length; i++ {
		pages = append(pages, start+i)
	}
	return NewPageRange(pages...)
}

// Union merges two ranges, deduplicated and ascending.
func (r PageRange) Union(other PageRange) PageRange {
	return NewPageRange(append(append([]int{}, r...), other...)...)
}

// Within reports whether every page fits a document of pageCount pages.
func (r PageRange) Within(pageCount int) bool {
	for _, p := range r {
		if p < 1 || p > pageCount {
			return false
		}
	}
	return len(r) > 0
}

// PageImage is one rendered page, held only between rendering and
// extraction.
type PageImage struct {
	Page int
	PNG  []byte
}

// ExtractionResult is the vision service's output for one page.
type ExtractionResult struct {
	Page       int     `json:"page" yaml:"page"`
	Markdown   string  `json:"markdown" yaml:"markdown"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ParserPath records which parser produced the final record.
type ParserPath string

const (
	ParserModel ParserPath = "model"
	ParserRules ParserPath = "rules"
	ParserNone  ParserPath = "none"
)

// LocationMethod records which locator step produced the page range.
type LocationMethod string

const (
	LocateFormula    LocationMethod = "formula"
	LocateExpanded   LocationMethod = "expanded"
	LocateStatic     LocationMethod = "static"
	LocateBruteForce LocationMethod = "brute-force"
	LocateDefault    LocationMethod = "default"
)

// Quality is the run-level confidence indicator combining location
// certainty, extraction completeness, and the parser path used.
type Quality struct {
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	LocationMethod LocationMethod `json:"location_method" yaml:"location_method"`
	PagesRequested int            `json:"pages_requested" yaml:"pages_requested"`
	PagesExtracted int            `json:"pages_extracted" yaml:"pages_extracted"`
	ParserPath     ParserPath     `json:"parser_path" yaml:"parser_path"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// RunResult is the pipeline's response object: everything a caller needs
// to display or persist one county analysis.
type RunResult struct {
	County       string             `json:"county" yaml:"county"`
	CountyPages  PageRange          `json:"county_pages" yaml:"county_pages"`
	SummaryPages PageRange          `json:"summary_pages" yaml:"summary_pages"`
	Extractions  []ExtractionResult `json:"-" yaml:"-"`
	Record       FinancialRecord    `json:"record" yaml:"record"`
	Metrics      DerivedMetrics     `json:"metrics" yaml:"metrics"`
	Analysis     AnalysisResult     `json:"analysis" yaml:"analysis"`
	Quality      Quality            `json:"quality" yaml:"quality"`
}
