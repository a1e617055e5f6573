// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/audit-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func encodeTestImage(t *testing.T, enc func(*bytes.Buffer, image.Image) error, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLargestFilePicksFullPageScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page_324_Im1.png", bytes.Repeat([]byte{0}, 100))
	want := writeFile(t, dir, "page_324_Im0.png", bytes.Repeat([]byte{0}, 5000))

	got, err := largestFile(dir)
	if err != nil {
		t.Fatalf("largestFile: %v", err)
	}
	if got != want {
		t.Errorf("largestFile = %s, want %s", got, want)
	}
}

func TestLargestFileEmptyDir(t *testing.T) {
	if _, err := largestFile(t.TempDir()); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestReadAsPNGKeepsSmallPages(t *testing.T) {
	data := encodeTestImage(t, func(b *bytes.Buffer, img image.Image) error {
		return png.Encode(b, img)
	}, 8, 8)
	path := writeFile(t, t.TempDir(), "page.png", data)

	got, err := readAsPNG(path, 200)
	if err != nil {
		t.Fatalf("readAsPNG: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("size = %dx%d, want 8x8", cfg.Width, cfg.Height)
	}
}

func TestReadAsPNGReencodesJPEG(t *testing.T) {
	data := encodeTestImage(t, func(b *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(b, img, nil)
	}, 8, 8)
	path := writeFile(t, t.TempDir(), "page.jpg", data)

	got, err := readAsPNG(path, 200)
	if err != nil {
		t.Fatalf("readAsPNG: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %s, want png", format)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("size = %dx%d, want 8x8", cfg.Width, cfg.Height)
	}
}

func TestReadAsPNGRejectsGarbage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.jpg", []byte("not an image"))
	if _, err := readAsPNG(path, 200); err == nil {
		t.Error("expected decode error")
	}
}

func TestScaleToDPIDownscalesHighResScans(t *testing.T) {
	// A 300-DPI A4 scan against a 200-DPI target.
	img := scaleToDPI(image.NewRGBA(image.Rect(0, 0, 2481, 3507)), 200)
	b := img.Bounds()
	wantH := int(200 * pageHeightInches)
	if b.Dy() != wantH {
		t.Errorf("height = %d, want %d", b.Dy(), wantH)
	}
	// Aspect ratio survives within a pixel of rounding.
	wantW := int(float64(2481)*float64(wantH)/3507 + 0.5)
	if diff := b.Dx() - wantW; diff < -1 || diff > 1 {
		t.Errorf("width = %d, want about %d", b.Dx(), wantW)
	}
}

func TestScaleToDPIKeepsImagesAtOrBelowTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 1400))
	if got := scaleToDPI(src, 200); got != image.Image(src) {
		t.Error("image below target resolution should pass through")
	}
	if got := scaleToDPI(src, 0); got != image.Image(src) {
		t.Error("zero DPI should disable scaling")
	}
}

func TestRenderingErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &RenderingError{Path: "report.pdf", Pages: types.PageRange{324}, Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}
