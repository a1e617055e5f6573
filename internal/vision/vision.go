// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision converts rendered report pages into markdown through a
// vision model served over an OpenAI-compatible API.
package vision

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Backend abstracts the vision model so tests can supply a mock. Each
// call handles a single page image and returns its markdown rendition.
type Backend interface {
	ExtractPage(ctx context.Context, img types.PageImage) (types.ExtractionResult, error)
}

// minPageText rejects near-empty model output. A real report page
// always transcribes to far more than this.
const minPageText = 50

// ExtractAll fans the page images out to the backend with bounded
// concurrency and returns one extraction per page, in input order.
// Pages that fail individually are noted on progress and recorded with
// empty markdown and confidence 0; the returned error is non-nil only
// when the context is cancelled or every page failed.
func ExtractAll(ctx context.Context, backend Backend, images []types.PageImage, concurrency int, progress io.Writer) ([]types.ExtractionResult, error) {
	if progress == nil {
		progress = io.Discard
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]types.ExtractionResult, len(images))
	var mu sync.Mutex // guards progress

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, img := range images {
		results[i] = types.ExtractionResult{Page: img.Page}
		g.Go(func() error {
			res, err := backend.ExtractPage(ctx, img)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				mu.Lock()
				fmt.Fprintf(progress, "vision: page %d failed: %v\n", img.Page, err)
				mu.Unlock()
				return nil
			}
			if len(strings.TrimSpace(res.Markdown)) < minPageText {
				mu.Lock()
				fmt.Fprintf(progress, "vision: page %d produced no usable text\n", img.Page)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if Extracted(results) == 0 && len(images) > 0 {
		return nil, fmt.Errorf("vision: all %d pages failed", len(images))
	}
	return results, nil
}

// Extracted counts the results that carry usable page text.
func Extracted(results []types.ExtractionResult) int {
	n := 0
	for _, r := range results {
		if strings.TrimSpace(r.Markdown) != "" {
			n++
		}
	}
	return n
}

// Combine joins per-page markdown with page markers, in input order.
// Results holding no text contribute nothing.
func Combine(results []types.ExtractionResult) string {
	var b strings.Builder
	for _, r := range results {
		if strings.TrimSpace(r.Markdown) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n", r.Page)
		b.WriteString(r.Markdown)
	}
	return b.String()
}
