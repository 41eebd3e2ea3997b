// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nickng/bibtex"
)

// ErrNoEntries is returned by Parse when the text holds no bibtex entry.
var ErrNoEntries = errors.New("no bibtex entries found")

// Field is one optional bibtex value. Present is true when the key was
// in the source record, even if its value is empty.
type Field struct {
	Value   string
	Present bool
}

// Set returns a present field holding v.
func Set(v string) Field { return Field{Value: v, Present: true} }

// Filled reports whether the field is present with a non-empty value.
func (f Field) Filled() bool { return f.Present && f.Value != "" }

// Record is a raw bibtex entry with only the fields the normalizer reads.
type Record struct {
	Type    string
	Key     string
	Author  Field
	Year    Field
	Title   Field
	Journal Field
	Series  Field
	Volume  Field
	Issue   Field
	Number  Field
	Pages   Field
	PDF     Field
	URL     Field
	DOI     Field
}

// Venue returns the journal, falling back to the series.
func (r Record) Venue() (string, bool) {
	if r.Journal.Filled() {
		return r.Journal.Value, true
	}
	if r.Series.Present {
		return r.Series.Value, true
	}
	return "", false
}

// IssueNumber returns the issue, falling back to the number, then "1".
func (r Record) IssueNumber() string {
	if r.Issue.Filled() {
		return r.Issue.Value
	}
	if r.Number.Filled() {
		return r.Number.Value
	}
	return "1"
}

// Link returns the pdf link, falling back to the url.
func (r Record) Link() (string, bool) {
	if r.PDF.Filled() {
		return r.PDF.Value, true
	}
	if r.URL.Filled() {
		return r.URL.Value, true
	}
	return "", false
}

// PageRange returns the pages with "--" collapsed to "-". An empty value
// counts as absent.
func (r Record) PageRange() (string, bool) {
	if !r.Pages.Filled() {
		return "", false
	}
	return strings.ReplaceAll(r.Pages.Value, "--", "-"), true
}

// RecordFromMap builds a Record from field name to value. Keys are matched
// case-insensitively and values are whitespace-collapsed.
func RecordFromMap(fields map[string]string) Record {
	var r Record
	for k, v := range fields {
		f := Set(collapse(v))
		switch strings.ToLower(k) {
		case "author":
			r.Author = f
		case "year":
			r.Year = f
		case "title":
			r.Title = f
		case "journal":
			r.Journal = f
		case "series":
			r.Series = f
		case "volume":
			r.Volume = f
		case "issue":
			r.Issue = f
		case "number":
			r.Number = f
		case "pages":
			r.Pages = f
		case "pdf":
			r.PDF = f
		case "url":
			r.URL = f
		case "doi":
			r.DOI = f
		}
	}
	return r
}

// braceBareValues wraps every bare value token at entry level in braces,
// including both operands of a "#" concatenation. The parser resolves bare
// identifiers as @string macros and exits the process on unknown ones.
// Text inside braced or quoted values is left untouched. Entries may be
// delimited by braces or parentheses.
func braceBareValues(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)
	depth := 0
	inQuote, wantValue, inParens := false, false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if wantValue {
			if isBibSpace(c) {
				b.WriteByte(c)
				continue
			}
			wantValue = false
			if !isBareEnd(c) {
				j := i
				for j < len(text) && !isBareEnd(text[j]) {
					j++
				}
				b.WriteByte('{')
				b.WriteString(text[i:j])
				b.WriteByte('}')
				i = j - 1
				continue
			}
		}
		switch c {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				inQuote, inParens = false, false
			}
		case '(':
			if depth == 0 {
				depth, inParens = 1, true
			}
		case ')':
			if depth == 1 && inParens && !inQuote {
				depth, inParens = 0, false
			}
		case '"':
			if depth == 1 {
				inQuote = !inQuote
			}
		case '=', '#':
			wantValue = depth == 1 && !inQuote
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isBibSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isBareEnd reports whether c ends (or cannot start) a bare value token.
func isBareEnd(c byte) bool {
	switch c {
	case ',', '{', '}', '"', '#', '(', ')':
		return true
	}
	return isBibSpace(c)
}

// parseMu serializes bibtex.Parse, whose scanner and grammar keep state in
// package variables.
var parseMu sync.Mutex

// Parse reads every entry in a raw bibtex text.
func Parse(text string) ([]Record, error) {
	parseMu.Lock()
	bib, err := bibtex.Parse(strings.NewReader(braceBareValues(text)))
	parseMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parsing bibtex: %w", err)
	}
	if bib == nil || len(bib.Entries) == 0 {
		return nil, ErrNoEntries
	}

	records := make([]Record, 0, len(bib.Entries))
	for _, entry := range bib.Entries {
		fields := make(map[string]string, len(entry.Fields))
		for k, v := range entry.Fields {
			if v == nil {
				continue
			}
			fields[k] = v.String()
		}
		r := RecordFromMap(fields)
		r.Type = strings.ToLower(entry.Type)
		r.Key = entry.CiteName
		records = append(records, r)
	}
	return records, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
