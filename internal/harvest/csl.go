// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/novucs/papertool/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	Accessed       *CSLDate  `yaml:"accessed,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the ranked citations as a CSL-YAML list.
func FormatCSL(res Result, w io.Writer) error {
	items := make([]CSLItem, len(res.Citations))
	for i, s := range res.Citations {
		items[i] = toCSLItem(s.Citation, i+1)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(c types.Citation, n int) CSLItem {
	f := c.Fields()
	item := CSLItem{
		ID:             cslID(f, n),
		Type:           "article-journal",
		Title:          f.Title,
		Author:         parseAuthors(f.Authors),
		ContainerTitle: f.Venue,
		Volume:         f.Volume,
		Issue:          f.Issue,
		Page:           f.Pages,
		URL:            f.URL,
	}
	if f.Kind == types.KindElectronic {
		item.Type = "webpage"
	}
	if year, err := strconv.Atoi(f.Year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}
	if t, ok := types.ParseAccessed(f.Accessed); ok {
		item.Accessed = &CSLDate{DateParts: [][]int{{t.Year(), int(t.Month()), t.Day()}}}
	}
	return item
}

// cslID builds a citation key such as "smith2020-3".
func cslID(f types.CitationFields, n int) string {
	family := "ref"
	if names := parseAuthors(f.Authors); len(names) > 0 {
		if names[0].Family != "" {
			family = names[0].Family
		} else if names[0].Literal != "" {
			family = names[0].Literal
		}
	}
	family = strings.ToLower(strings.Join(strings.Fields(family), ""))
	return fmt.Sprintf("%s%s-%d", family, f.Year, n)
}

// parseAuthors splits a formatted author list ("Smith, J., Doe, A. and
// OpenAI") back into names. An initial following a surname is its given
// name; anything else stands alone as a literal.
func parseAuthors(authors string) []CSLName {
	if strings.TrimSpace(authors) == "" {
		return nil
	}
	parts := strings.Split(strings.ReplaceAll(authors, " and ", ", "), ", ")

	var names []CSLName
	for i := 0; i < len(parts); i++ {
		part := strings.TrimSpace(parts[i])
		if part == "" {
			continue
		}
		if i+1 < len(parts) && isInitial(strings.TrimSpace(parts[i+1])) {
			names = append(names, CSLName{Family: part, Given: strings.TrimSpace(parts[i+1])})
			i++
			continue
		}
		names = append(names, CSLName{Literal: part})
	}
	return names
}

// isInitial matches "J." style abbreviated forenames.
func isInitial(s string) bool {
	return strings.HasSuffix(s, ".") && utf8.RuneCountInString(s) <= 3
}
