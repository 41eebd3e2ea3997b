// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert downloads documents and turns them into plain text so
// their titles can be read.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/novucs/papertool/internal/httputil"
)

// ErrNoText is returned when a document holds no extractable text.
var ErrNoText = errors.New("document has no extractable text")

// documentExtensions are the URL suffixes treated as documents rather than
// titles.
var documentExtensions = []string{".pdf"}

// IsDocumentURL reports whether query names a document to read a title
// from rather than a title: it contains a '/' and ends in a document
// extension, compared case-insensitively.
func IsDocumentURL(query string) bool {
	if !strings.Contains(query, "/") {
		return false
	}
	path := strings.ToLower(strings.TrimSpace(query))
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}
	for _, ext := range documentExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Converter transforms a document's bytes into plain text. PDF is the
// only backend; the interface lets tests inject canned text.
type Converter interface {
	Convert(data []byte) (string, error)
}

// PDFConverter reads text from PDFs with github.com/ledongthuc/pdf.
type PDFConverter struct {
	// MaxPages bounds how many leading pages are read (0 reads all).
	MaxPages int
}

// Convert returns the plain text of the leading pages. Pages that fail to
// decode are skipped; a malformed file is an error.
func (c PDFConverter) Convert(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	n := r.NumPage()
	if c.MaxPages > 0 && c.MaxPages < n {
		n = c.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoText
	}
	return b.String(), nil
}

// PDFText returns the text of the first pages of a PDF, enough to find
// its title.
func PDFText(data []byte) (string, error) {
	return PDFConverter{MaxPages: 2}.Convert(data)
}

// Fetcher downloads documents.
type Fetcher struct {
	Client *httputil.Client
}

// Fetch returns the body of url. Non-200 answers are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.Client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("fetching %s: empty body", url)
	}
	return resp.Body, nil
}
