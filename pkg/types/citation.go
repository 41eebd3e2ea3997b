// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind classifies how a citation is rendered.
type Kind int

const (
	// KindPaper is a printed reference with no retrievable URL.
	KindPaper Kind = iota
	// KindElectronic is a reference with a URL and an access date.
	KindElectronic
	// KindPreprint is reserved. No rendering is defined, so NewCitation
	// rejects it.
	KindPreprint
)

func (k Kind) String() string {
	switch k {
	case KindPaper:
		return "paper"
	case KindElectronic:
		return "electronic"
	case KindPreprint:
		return "preprint"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "paper":
		*k = KindPaper
	case "electronic":
		*k = KindElectronic
	case "preprint":
		*k = KindPreprint
	default:
		return fmt.Errorf("unknown citation kind %q", string(text))
	}
	return nil
}

// PreprintVenue is the venue recorded for citations found in the preprint index.
const PreprintVenue = "arXiv Preprint"

// accessedLayout renders as "[Accessed 17 January 23]".
const accessedLayout = "[Accessed 02 January 06]"

// AccessedStamp formats t as an access date for electronic references.
func AccessedStamp(t time.Time) string {
	return t.Format(accessedLayout)
}

// ParseAccessed reads a stamp produced by AccessedStamp.
func ParseAccessed(s string) (time.Time, bool) {
	t, err := time.Parse(accessedLayout, s)
	return t, err == nil
}

// CitationFields are the raw inputs to NewCitation. Optional values
// (Pages, Accessed, URL) are absent when empty.
type CitationFields struct {
	// Authors is pre-formatted, e.g. "Smith, J. and Doe, A.".
	Authors  string
	Year     string
	Title    string
	Venue    string
	Volume   string
	Issue    string
	Pages    string
	Accessed string
	URL      string
	Kind     Kind
}

// ValidationError reports a CitationFields value that violates the rules
// for its kind.
type ValidationError struct {
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s citation: %s", e.Kind, e.Reason)
}

// Citation is one validated bibliographic entry. It is a comparable value:
// two citations are equal iff every field is equal, so it can be used
// directly as a map key for de-duplication.
type Citation struct {
	f CitationFields
}

// NewCitation validates f and returns the citation it describes.
func NewCitation(f CitationFields) (Citation, error) {
	switch f.Kind {
	case KindPaper:
		if f.Pages == "" {
			return Citation{}, &ValidationError{Kind: f.Kind, Reason: "paper references require page numbers"}
		}
	case KindElectronic:
		if f.Accessed == "" {
			return Citation{}, &ValidationError{Kind: f.Kind, Reason: "electronic references require an access date"}
		}
	case KindPreprint:
		return Citation{}, &ValidationError{Kind: f.Kind, Reason: "preprint references have no rendering"}
	default:
		return Citation{}, &ValidationError{Kind: f.Kind, Reason: "unknown kind"}
	}
	return Citation{f: f}, nil
}

// Fields returns a copy of the citation's fields.
func (c Citation) Fields() CitationFields { return c.f }

// Authors returns the formatted author list.
func (c Citation) Authors() string { return c.f.Authors }

// Year returns the publication year.
func (c Citation) Year() string { return c.f.Year }

// Title returns the title.
func (c Citation) Title() string { return c.f.Title }

// Venue returns the journal or series name.
func (c Citation) Venue() string { return c.f.Venue }

// URL returns the link, empty for papers.
func (c Citation) URL() string { return c.f.URL }

// Kind returns the reference kind.
func (c Citation) Kind() Kind { return c.f.Kind }

// Equal reports whether c and other carry identical fields.
func (c Citation) Equal(other Citation) bool { return c == other }

// String renders the citation as a Harvard-style reference.
func (c Citation) String() string {
	f := c.f
	switch f.Kind {
	case KindPaper:
		return fmt.Sprintf("%s (%s) %s. %s. %s (%s), pp. %s",
			f.Authors, f.Year, f.Title, f.Venue, f.Volume, f.Issue, f.Pages)
	case KindElectronic:
		pages := ""
		if f.Pages != "" {
			pages = ", pp. " + f.Pages
		}
		return fmt.Sprintf("%s (%s) %s. %s [online]. %s (%s)%s. %s",
			f.Authors, f.Year, f.Title, f.Venue, f.Volume, f.Issue, pages, f.Accessed)
	default:
		return ""
	}
}

type citationJSON struct {
	Authors   string `json:"authors"`
	Year      string `json:"year"`
	Title     string `json:"title"`
	Venue     string `json:"venue"`
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	Pages     string `json:"pages,omitempty"`
	Accessed  string `json:"accessedDate,omitempty"`
	URL       string `json:"url,omitempty"`
	Kind      Kind   `json:"kind"`
	Formatted string `json:"formatted"`
}

// MarshalJSON encodes the fields plus the rendered reference.
func (c Citation) MarshalJSON() ([]byte, error) {
	f := c.f
	return json.Marshal(citationJSON{
		Authors:   f.Authors,
		Year:      f.Year,
		Title:     f.Title,
		Venue:     f.Venue,
		Volume:    f.Volume,
		Issue:     f.Issue,
		Pages:     f.Pages,
		Accessed:  f.Accessed,
		URL:       f.URL,
		Kind:      f.Kind,
		Formatted: c.String(),
	})
}

// JoinAuthors joins abbreviated author names: all but the last separated by
// ", ", then " and " before the last. A single name is returned unchanged.
func JoinAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	}
	last := len(authors) - 1
	return strings.Join(authors[:last], ", ") + " and " + authors[last]
}
