// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/novucs/papertool/internal/httputil"
)

// duckduckgoBase is the JavaScript-free DuckDuckGo results page. Declared
// as a var so tests can substitute an httptest server.
var duckduckgoBase = "https://html.duckduckgo.com/html/"

// DefaultSearchLimit caps the number of result URLs returned.
const DefaultSearchLimit = 10

// DuckDuckGo lists web pages likely to carry a bibtex entry for a title.
type DuckDuckGo struct {
	Client *httputil.Client
}

// Search returns up to limit result URLs for `"bibtex" <query>`, in page
// order with duplicates dropped.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	u := duckduckgoBase + "?q=" + url.QueryEscape(`"bibtex" `+query)
	resp, err := d.Client.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("DuckDuckGo returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing DuckDuckGo results: %w", err)
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		target := resultTarget(href)
		if target == "" || seen[target] {
			return true
		}
		seen[target] = true
		urls = append(urls, target)
		return len(urls) < limit
	})
	return urls, nil
}

// resultTarget unwraps DuckDuckGo's redirect links
// ("//duckduckgo.com/l/?uddg=<escaped url>") and drops anything that is
// not an outbound http(s) URL.
func resultTarget(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") {
		inner := u.Query().Get("uddg")
		if inner == "" {
			return ""
		}
		if u, err = url.Parse(inner); err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") {
		return ""
	}
	return u.String()
}
