// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads budget report PDFs into a local reports
// directory. Reports are published once and never change, so an
// existing file is always trusted and the download skipped.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/audit-engine/internal/httputil"
)

// pdfMagic opens every PDF file. A response without it is an HTML error
// page or a redirect interstitial, not a report.
var pdfMagic = []byte("%PDF-")

// Report downloads the PDF at rawURL into destDir and returns its local
// path. Existing files are kept; skipped reports that. The download
// lands in a temp file first so a partial transfer never poses as a
// report.
func Report(ctx context.Context, client *http.Client, rawURL, destDir string, w io.Writer) (destPath string, skipped bool, err error) {
	if w == nil {
		w = io.Discard
	}

	name, err := fileName(rawURL)
	if err != nil {
		return "", false, err
	}
	destPath = filepath.Join(destDir, name)

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return destPath, true, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", rawURL)
	if err := downloadFile(ctx, client, rawURL, destPath); err != nil {
		return "", false, fmt.Errorf("downloading %s: %w", name, err)
	}
	return destPath, false, nil
}

// fileName derives the local file name from the URL path, forcing a
// .pdf extension.
func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("URL %q has no file name", rawURL)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}

func downloadFile(ctx context.Context, client *http.Client, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 3)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("%s did not return a PDF", url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(head), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
