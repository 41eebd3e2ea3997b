// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw bibtex records into validated citations.
// It owns the field fallback rules (journal or series, issue or number,
// pdf or url) and the "Surname, F." author formatting.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/novucs/papertool/pkg/types"
)

// ErrIncompleteRecord matches every IncompleteRecordError via errors.Is.
var ErrIncompleteRecord = errors.New("incomplete bibtex record")

// IncompleteRecordError reports a bibtex record lacking a field required
// for a reference. Callers skip the record and continue.
type IncompleteRecordError struct {
	Field string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("bibtex record missing %s", e.Field)
}

// Is makes errors.Is(err, ErrIncompleteRecord) hold.
func (e *IncompleteRecordError) Is(target error) bool {
	return target == ErrIncompleteRecord
}

// Normalizer turns records into citations. Now stamps access dates and
// defaults to time.Now.
type Normalizer struct {
	Now func() time.Time
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// Normalize maps r onto a citation. Missing required fields return an
// IncompleteRecordError; a citation that fails validation returns the
// types.ValidationError.
func (n Normalizer) Normalize(r Record) (types.Citation, error) {
	if !r.Author.Present {
		return types.Citation{}, &IncompleteRecordError{Field: "author"}
	}
	authors, err := FormatAuthors(r.Author.Value)
	if err != nil {
		return types.Citation{}, err
	}
	if !r.Year.Present {
		return types.Citation{}, &IncompleteRecordError{Field: "year"}
	}
	if !r.Title.Present {
		return types.Citation{}, &IncompleteRecordError{Field: "title"}
	}
	venue, ok := r.Venue()
	if !ok {
		return types.Citation{}, &IncompleteRecordError{Field: "journal or series"}
	}
	if !r.Volume.Present {
		return types.Citation{}, &IncompleteRecordError{Field: "volume"}
	}

	pages, _ := r.PageRange()
	link, hasLink := r.Link()
	kind := types.KindPaper
	if hasLink {
		kind = types.KindElectronic
	}

	return types.NewCitation(types.CitationFields{
		Authors:  authors,
		Year:     r.Year.Value,
		Title:    r.Title.Value,
		Venue:    venue,
		Volume:   r.Volume.Value,
		Issue:    r.IssueNumber(),
		Pages:    pages,
		Accessed: types.AccessedStamp(n.now()),
		URL:      link,
		Kind:     kind,
	})
}

// NormalizeText parses a bibtex text and normalizes its first entry.
func (n Normalizer) NormalizeText(text string) (types.Citation, error) {
	records, err := Parse(text)
	if err != nil {
		return types.Citation{}, err
	}
	return n.Normalize(records[0])
}

// FormatAuthors reformats a bibtex author list ("John Smith and Doe, Jane")
// as "Smith, J. and Doe, J.".
func FormatAuthors(raw string) (string, error) {
	names := strings.Split(raw, " and ")
	formatted := FormatAuthorList(names)
	if formatted == "" {
		return "", &IncompleteRecordError{Field: "author"}
	}
	return formatted, nil
}

// FormatAuthorList abbreviates each full name and joins them. Blank names
// are dropped.
func FormatAuthorList(names []string) string {
	abbreviated := make([]string, 0, len(names))
	for _, name := range names {
		if a := abbreviate(name); a != "" {
			abbreviated = append(abbreviated, a)
		}
	}
	return types.JoinAuthors(abbreviated)
}

// abbreviate formats one name as "Surname, F.". The first token is the
// forename and the last the surname, unless the first token carries a
// comma ("Surname, Forename"). Single-token names are kept verbatim.
func abbreviate(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	forename, surname := parts[0], parts[len(parts)-1]
	if strings.Contains(forename, ",") {
		surname, forename = strings.TrimRight(forename, ","), surname
	}
	return surname + ", " + initial(forename) + "."
}

// initial returns the first letter of a name, skipping bibtex accent
// markup such as {\"O}.
func initial(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return string(r)
		}
	}
	for _, r := range name {
		return string(r)
	}
	return ""
}
