// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/internal/normalize"
	"github.com/novucs/papertool/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// PreprintHit is the best arXiv match for a title.
type PreprintHit struct {
	Citation types.Citation
	ArxivID  string
	// DOI is the journal DOI arXiv records for the paper, if any.
	DOI string
}

// ArxivIndex looks titles up in the arXiv API.
type ArxivIndex struct {
	Client *httputil.Client
	Now    func() time.Time
}

// Lookup returns the top arXiv result for title, or nil when arXiv has no
// match.
func (a *ArxivIndex) Lookup(ctx context.Context, title string) (*PreprintHit, error) {
	q := searchString(title)
	if q == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s?search_query=%s&start=0&max_results=1",
		arxivAPIBase, url.QueryEscape(`ti:"`+q+`"`))
	resp, err := a.Client.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, nil
	}
	return a.hit(feed.Items[0])
}

func (a *ArxivIndex) hit(item *gofeed.Item) (*PreprintHit, error) {
	versioned := versionedID(item.GUID)
	if versioned == "" {
		versioned = versionedID(item.Link)
	}
	if versioned == "" {
		return nil, fmt.Errorf("arXiv entry without id")
	}
	id, issue := splitVersion(versioned)

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil {
		return nil, fmt.Errorf("arXiv entry %s without published date", versioned)
	}

	names := make([]string, 0, len(item.Authors))
	for _, p := range item.Authors {
		if p != nil {
			names = append(names, p.Name)
		}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	c, err := types.NewCitation(types.CitationFields{
		Authors:  normalize.FormatAuthorList(names),
		Year:     fmt.Sprintf("%d", published.Year()),
		Title:    collapseSpace(item.Title),
		Venue:    types.PreprintVenue,
		Volume:   arxivVolume(id),
		Issue:    issue,
		Accessed: types.AccessedStamp(now()),
		URL:      pdfLink(item, versioned),
		Kind:     types.KindElectronic,
	})
	if err != nil {
		return nil, err
	}
	return &PreprintHit{Citation: c, ArxivID: id, DOI: arxivDOI(item)}, nil
}

// versionedID pulls the arXiv id with its version from the entry's <id>
// URL (e.g. "http://arxiv.org/abs/1706.03762v5" → "1706.03762v5").
func versionedID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(idURL[idx+len(prefix):])
}

// splitVersion splits "1706.03762v5" into ("1706.03762", "5"). Without a
// version suffix the issue is "1".
func splitVersion(id string) (string, string) {
	base := id
	if slash := strings.LastIndex(base, "/"); slash >= 0 {
		base = base[slash+1:]
	}
	vIdx := strings.LastIndex(base, "v")
	if vIdx <= 0 || vIdx == len(base)-1 || strings.Trim(base[vIdx+1:], "0123456789") != "" {
		return id, "1"
	}
	return id[:len(id)-len(base)+vIdx], base[vIdx+1:]
}

// arxivVolume drops the archive prefix of an old-style id
// ("hep-th/9901001" → "9901001").
func arxivVolume(id string) string {
	return id[strings.LastIndex(id, "/")+1:]
}

// pdfLink returns the entry's PDF link, building one from the id when the
// feed omits it.
func pdfLink(item *gofeed.Item, id string) string {
	for _, l := range item.Links {
		if strings.Contains(l, "/pdf/") {
			return l
		}
	}
	return "https://arxiv.org/pdf/" + id
}

func arxivDOI(item *gofeed.Item) string {
	ns, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	for _, e := range ns["doi"] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}
