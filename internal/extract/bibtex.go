// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls citation evidence out of fetched documents: bibtex
// entries and DOIs embedded in web pages, and a best guess at a PDF's
// title.
package extract

import (
	"regexp"
	"strings"

	"github.com/novucs/papertool/internal/normalize"
	"github.com/novucs/papertool/pkg/types"
)

// doiRe matches DOIs in free text, stopping at whitespace, quotes, '&' and
// angle brackets so DOIs inside HTML attributes come out clean.
var doiRe = regexp.MustCompile(`\b(10\.[0-9]{4,}(?:\.[0-9]+)*/[^\s"&'<>]+)\b`)

// Extraction is everything one page contributed to a harvest.
type Extraction struct {
	Citations []types.Citation
	DOIs      []string
	// Skipped counts bibtex blocks that did not parse or normalize.
	Skipped int
}

// BibtexBlocks returns every balanced "@type{...}" block in text whose
// body mentions both a title and an author. An '@' inside an open block is
// part of that block; an unbalanced trailing block is dropped.
func BibtexBlocks(text string) []string {
	var blocks []string
	start, depth := -1, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '@':
			if depth == 0 {
				start = i
			}
		case '{':
			if start >= 0 {
				depth++
			}
		case '}':
			if start < 0 || depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			block := text[start : i+1]
			check := strings.ToLower(block)
			if strings.Contains(check, "title") && strings.Contains(check, "author") {
				blocks = append(blocks, block)
			}
			start = -1
		}
	}
	return blocks
}

// DOIs returns every DOI-looking string in text, in order, duplicates
// included.
func DOIs(text string) []string {
	return doiRe.FindAllString(text, -1)
}

// Page extracts citations and DOIs from a page's text, stamping access
// dates with the current time.
func Page(text string) Extraction {
	return PageWith(normalize.Normalizer{}, text)
}

// PageWith is Page with an explicit normalizer.
func PageWith(n normalize.Normalizer, text string) Extraction {
	var ex Extraction
	if text == "" {
		return ex
	}
	for _, block := range BibtexBlocks(text) {
		records, err := normalize.Parse(block)
		if err != nil {
			ex.Skipped++
			continue
		}
		for _, r := range records {
			c, err := n.Normalize(r)
			if err != nil {
				ex.Skipped++
				continue
			}
			ex.Citations = append(ex.Citations, c)
		}
	}
	ex.DOIs = DOIs(text)
	return ex
}
