// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/pkg/types"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>arXiv Query</title>
  <id>http://arxiv.org/api/query</id>
  <updated>2023-01-17T00:00:00-05:00</updated>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <updated>2017-12-06T03:30:32Z</updated>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>The dominant sequence transduction models...</summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <author><name>Niki Parmar</name></author>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v5" rel="related" type="application/pdf"/>
  </entry>
</feed>`

const emptyFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>arXiv Query</title>
  <id>http://arxiv.org/api/query</id>
  <updated>2023-01-17T00:00:00-05:00</updated>
</feed>`

func withArxivServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() { arxivAPIBase = old })
}

func testIndex() *ArxivIndex {
	return &ArxivIndex{
		Client: httputil.NewClient(types.HTTPConfig{Timeout: 5 * time.Second}),
		Now:    func() time.Time { return time.Date(2023, time.January, 17, 0, 0, 0, 0, time.UTC) },
	}
}

func TestArxivLookup(t *testing.T) {
	var gotQuery string
	withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		if r.URL.Query().Get("max_results") != "1" {
			t.Errorf("max_results = %q, want 1", r.URL.Query().Get("max_results"))
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFeedXML))
	})

	hit, err := testIndex().Lookup(context.Background(), "Attention: is all you NEED!")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotQuery != `ti:"attention is all you need"` {
		t.Errorf("search_query = %q", gotQuery)
	}
	if hit == nil {
		t.Fatal("expected a hit")
	}

	f := hit.Citation.Fields()
	want := types.CitationFields{
		Authors:  "Vaswani, A., Shazeer, N. and Parmar, N.",
		Year:     "2017",
		Title:    "Attention Is All You Need",
		Venue:    "arXiv Preprint",
		Volume:   "1706.03762",
		Issue:    "5",
		Accessed: "[Accessed 17 January 23]",
		Kind:     types.KindElectronic,
	}
	f.URL = ""
	if f != want {
		t.Errorf("citation fields = %+v, want %+v", f, want)
	}
	if hit.Citation.URL() == "" {
		t.Error("expected a pdf url")
	}
	if hit.DOI != "10.48550/arXiv.1706.03762" {
		t.Errorf("DOI = %q", hit.DOI)
	}
	if hit.ArxivID != "1706.03762" {
		t.Errorf("ArxivID = %q", hit.ArxivID)
	}
}

func TestArxivLookupNoHit(t *testing.T) {
	withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(emptyFeedXML))
	})

	hit, err := testIndex().Lookup(context.Background(), "no such paper")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if hit != nil {
		t.Errorf("expected nil hit, got %+v", hit)
	}
}

func TestArxivLookupHTTPError(t *testing.T) {
	withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := testIndex().Lookup(context.Background(), "anything"); err == nil {
		t.Error("expected error on HTTP 503")
	}
}

func TestArxivLookupEmptyTitle(t *testing.T) {
	hit, err := testIndex().Lookup(context.Background(), "?!")
	if err != nil || hit != nil {
		t.Errorf("Lookup(?!) = %v, %v; want nil, nil", hit, err)
	}
}

func TestSplitVersion(t *testing.T) {
	tests := []struct {
		id, volume, issue string
	}{
		{"1706.03762v5", "1706.03762", "5"},
		{"1706.03762", "1706.03762", "1"},
		{"hep-th/9901001v2", "hep-th/9901001", "2"},
		{"hep-th/9901001", "hep-th/9901001", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			v, i := splitVersion(tt.id)
			if v != tt.volume || i != tt.issue {
				t.Errorf("splitVersion(%q) = %q, %q; want %q, %q", tt.id, v, i, tt.volume, tt.issue)
			}
		})
	}
}

func TestArxivVolume(t *testing.T) {
	for id, want := range map[string]string{
		"1706.03762":      "1706.03762",
		"hep-th/9901001":  "9901001",
		"math.GT/0309136": "0309136",
	} {
		if got := arxivVolume(id); got != want {
			t.Errorf("arxivVolume(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestSearchString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"  ADAM: A METHOD -- FOR STOCHASTIC   OPTIMIZATION ", "adam a method for stochastic optimization"},
		{"Q-learning", "q learning"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := searchString(tt.in); got != tt.want {
			t.Errorf("searchString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
