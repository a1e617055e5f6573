// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document reads pages of a budget implementation review report.
// The report is treated as an opaque paginated artifact: the rest of the
// pipeline only ever asks for a page count and individual page text, so
// tests can substitute an in-memory document.
package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is a paginated, read-only artifact. Pages are 1-indexed.
type Document interface {
	// PageCount returns the total number of pages.
	PageCount() int

	// PageText returns the plain text of one page. An out-of-range page
	// is an error; a page with no extractable text returns "".
	PageText(page int) (string, error)

	// Path returns the filesystem location of the source file, or ""
	// for in-memory documents.
	Path() string
}

// File is a PDF-backed Document.
type File struct {
	path   string
	file   *os.File
	reader *pdf.Reader
}

// Open opens a PDF report. The caller owns the document and must Close it.
func Open(path string) (*File, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &File{path: path, file: f, reader: r}, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	return f.file.Close()
}

// PageCount returns the document's total page count.
func (f *File) PageCount() int {
	return f.reader.NumPage()
}

// Path returns the source file path.
func (f *File) Path() string {
	return f.path
}

// PageText extracts one page's text row by row. Scanned pages with no
// text layer yield "".
func (f *File) PageText(page int) (string, error) {
	if page < 1 || page > f.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range 1-%d", page, f.reader.NumPage())
	}

	p := f.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("reading page %d: %w", page, err)
	}

	var b strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			b.WriteString(word.S)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
