// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"strings"

	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/pkg/types"
)

// SummaryTables holds the pages carrying the national summary tables
// used to cross-check a county's figures. Missing tables reduce
// cross-check coverage; they are never an error.
type SummaryTables struct {
	Pages   types.PageRange
	Missing []string
}

// Summary scans the configured mid-document window for the requested
// table headings ("Table 2.1" etc) and returns the union of matched
// pages, capped at cfg.MaxPages.
func Summary(doc document.Document, cfg types.SummaryConfig) SummaryTables {
	first, last := cfg.WindowFirstPage, cfg.WindowLastPage
	if last > doc.PageCount() {
		last = doc.PageCount()
	}

	found := make(map[string]bool, len(cfg.TableIDs))
	var pages []int
	for p := first; p <= last; p++ {
		text, err := doc.PageText(p)
		if err != nil {
			continue
		}
		folded := strings.ToLower(strings.Join(strings.Fields(text), " "))
		for _, id := range cfg.TableIDs {
			if strings.Contains(folded, strings.ToLower(id)) {
				found[id] = true
				pages = append(pages, p)
			}
		}
	}

	result := SummaryTables{Pages: types.NewPageRange(pages...)}
	if cfg.MaxPages > 0 && len(result.Pages) > cfg.MaxPages {
		result.Pages = result.Pages[:cfg.MaxPages]
	}
	for _, id := range cfg.TableIDs {
		if !found[id] {
			result.Missing = append(result.Missing, id)
		}
	}
	return result
}
