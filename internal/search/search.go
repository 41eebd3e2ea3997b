// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search holds the listing adapters of a harvest: the arXiv title
// lookup that yields a preprint citation, and the web search that yields
// candidate pages to scrape for bibtex.
package search

import (
	"regexp"
	"strings"
)

// nonAlnum matches runs of characters the arXiv title query cannot carry.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// searchString reduces a title to lower-case alphanumeric words separated
// by single spaces ("Attention Is All You Need!" → "attention is all you need").
func searchString(title string) string {
	return strings.TrimSpace(strings.ToLower(nonAlnum.ReplaceAllString(title, " ")))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
