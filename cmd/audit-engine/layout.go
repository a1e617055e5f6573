// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/audit-engine/internal/document"
	"github.com/pdiddy/audit-engine/internal/layout"
	"github.com/pdiddy/audit-engine/internal/layoutcache"
	"github.com/pdiddy/audit-engine/pkg/types"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Build and print a report's table-of-contents index",
	Long: `Layout parses the report's table of contents into the county index the
locator uses, caching it keyed by the document's content. Use --refresh
to rebuild and overwrite the cached index.`,
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().String("pdf", "", "path to the budget report PDF (required)")
	layoutCmd.Flags().Bool("refresh", false, "rebuild the index even when cached")
	_ = layoutCmd.MarkFlagRequired("pdf")

	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	pdfPath, _ := cmd.Flags().GetString("pdf")
	refresh, _ := cmd.Flags().GetBool("refresh")

	cfg := pipelineConfig()

	doc, err := document.Open(pdfPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	idx, err := loadIndex(doc, cfg, true, refresh)
	if err != nil {
		return err
	}

	if idx.Len() == 0 {
		fmt.Println("No table-of-contents entries recovered.")
		return nil
	}
	fmt.Printf("%d counties, TOC on pages %v\n", idx.Len(), idx.SourcePages)
	for _, e := range idx.Entries {
		fmt.Printf("%-6s %-20s page %d\n", e.Section, e.County, e.StartPage)
	}
	return nil
}

// loadIndex returns the document's county index, from the cache when
// allowed and present. An unusable table of contents is reported on
// stderr and yields an empty index; the locator's fallback ladder takes
// over from there.
func loadIndex(doc *document.File, cfg types.PipelineConfig, useCache, refresh bool) (*layout.Index, error) {
	var store *layoutcache.Store
	if useCache {
		s, err := layoutcache.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: layout cache unavailable: %v\n", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	if store != nil && !refresh {
		if idx, ok, err := store.Load(doc.Path()); err == nil && ok {
			fmt.Fprintln(os.Stderr, "Using cached layout index")
			return idx, nil
		}
	}

	idx, err := layout.Build(doc, cfg.Locator)
	if err != nil {
		var ie *layout.IndexError
		if !errors.As(err, &ie) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		idx = &layout.Index{}
		idx.Restore()
		return idx, nil
	}

	if store != nil {
		if err := store.Save(doc.Path(), idx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not cache layout index: %v\n", err)
		}
	}
	return idx, nil
}
