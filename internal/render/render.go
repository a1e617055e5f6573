// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns report pages into PNG images for the vision
// extractor. The budget review reports are scans, so each page carries
// one embedded full-page image that pdfcpu can pull out directly.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/pdiddy/audit-engine/pkg/types"
)

// Renderer produces page images for a document. Implementations skip
// pages that fail individually and only error when nothing at all could
// be rendered.
type Renderer interface {
	Render(ctx context.Context, path string, pages types.PageRange) ([]types.PageImage, error)
}

// RenderingError is fatal: none of the requested pages produced an
// image, so there is nothing for the extractor to work with.
type RenderingError struct {
	Path  string
	Pages types.PageRange
	Cause error
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("rendering %s pages %v produced no images: %v", e.Path, e.Pages, e.Cause)
}

func (e *RenderingError) Unwrap() error { return e.Cause }

// PDFRenderer extracts the scanned page images embedded in a report
// PDF. Extraction runs one page at a time into a temp directory so a
// corrupt page only costs that page.
type PDFRenderer struct {
	cfg      types.RenderConfig
	progress io.Writer
}

// NewPDFRenderer returns a renderer writing skip notices to progress.
func NewPDFRenderer(cfg types.RenderConfig, progress io.Writer) *PDFRenderer {
	if progress == nil {
		progress = io.Discard
	}
	return &PDFRenderer{cfg: cfg, progress: progress}
}

// Render extracts the given pages in ascending order. Pages that fail
// are skipped with a notice; the result keeps page-number order.
func (r *PDFRenderer) Render(ctx context.Context, path string, pages types.PageRange) ([]types.PageImage, error) {
	conf := model.NewDefaultConfiguration()
	out := make([]types.PageImage, 0, len(pages))
	var lastErr error
	for _, p := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		img, err := r.renderPage(path, p, conf)
		if err != nil {
			lastErr = err
			fmt.Fprintf(r.progress, "render: skipping page %d: %v\n", p, err)
			continue
		}
		out = append(out, types.PageImage{Page: p, PNG: img})
	}
	if len(out) == 0 {
		return nil, &RenderingError{Path: path, Pages: pages, Cause: lastErr}
	}
	return out, nil
}

func (r *PDFRenderer) renderPage(path string, page int, conf *model.Configuration) ([]byte, error) {
	dir, err := os.MkdirTemp("", "audit-render-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractImagesFile(path, dir, []string{strconv.Itoa(page)}, conf); err != nil {
		return nil, fmt.Errorf("extracting page %d: %w", page, err)
	}

	// A scanned page should yield exactly one image; if decorations
	// were extracted too, the full-page scan is the largest file.
	best, err := largestFile(dir)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return readAsPNG(best, r.cfg.DPI)
}

// largestFile returns the path of the biggest regular file in dir.
func largestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var best string
	var bestSize int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.Size() > bestSize {
			best = filepath.Join(dir, e.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no image extracted")
	}
	return best, nil
}

// readAsPNG loads an extracted image, sizes it to the target
// resolution, and re-encodes so the vision backend only ever sees
// image/png payloads.
func readAsPNG(path string, dpi int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaleToDPI(img, dpi)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pageHeightInches is the long side of the report's A4 portrait pages.
const pageHeightInches = 11.69

// scaleToDPI downscales img so its long side matches the configured
// resolution on an A4 page. Scans embedded above the target lose
// nothing the extractor needs; pages at or below it pass unchanged.
func scaleToDPI(img image.Image, dpi int) image.Image {
	if dpi <= 0 {
		return img
	}
	target := int(float64(dpi) * pageHeightInches)
	b := img.Bounds()
	long := b.Dx()
	if b.Dy() > long {
		long = b.Dy()
	}
	if long <= target {
		return img
	}
	scale := float64(target) / float64(long)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(b.Dx())*scale+0.5), int(float64(b.Dy())*scale+0.5)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
