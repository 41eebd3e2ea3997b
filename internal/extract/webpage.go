// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"

	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/internal/normalize"
)

// WebPages fetches search result pages and extracts them.
type WebPages struct {
	Client     *httputil.Client
	Normalizer normalize.Normalizer
}

// Fetch downloads url and extracts its bibtex entries and DOIs. A non-2xx
// answer is an error; the harvest skips that page.
func (w *WebPages) Fetch(ctx context.Context, url string) (Extraction, error) {
	resp, err := w.Client.Get(ctx, url, nil)
	if err != nil {
		return Extraction{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Extraction{}, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	return PageWith(w.Normalizer, string(resp.Body)), nil
}
