// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/novucs/papertool/internal/rank"
	"github.com/novucs/papertool/pkg/types"
)

func sampleResult(t *testing.T) Result {
	t.Helper()
	paperCite, err := types.NewCitation(types.CitationFields{
		Authors: "LeCun, Y., Bengio, Y. and Hinton, G.", Year: "2015", Title: "Deep learning",
		Venue: "Nature", Volume: "521", Issue: "7553", Pages: "436-444", Kind: types.KindPaper,
	})
	if err != nil {
		t.Fatal(err)
	}
	web, err := types.NewCitation(types.CitationFields{
		Authors: "OpenAI", Year: "2023", Title: "GPT-4 Technical Report",
		Venue: types.PreprintVenue, Volume: "2303.08774", Issue: "6",
		Accessed: "[Accessed 17 January 23]", URL: "https://arxiv.org/pdf/2303.08774v6",
		Kind: types.KindElectronic,
	})
	if err != nil {
		t.Fatal(err)
	}
	return Result{
		Query: "deep learning",
		Title: "deep learning",
		Citations: []rank.Scored{
			{Citation: paperCite, Score: 1},
			{Citation: web, Score: 0.25},
		},
		DupsRemoved: 3,
		Failures:    []TaskOutcome{{Stage: StagePage, Target: "https://x.example", Err: errors.New("HTTP 500")}},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleResult(t), &buf)
	out := buf.String()

	for _, want := range []string{
		"Rank",
		"LeCun, Y., Bengio, Y. and Hinton, G. (2015) Deep learning. Nature. 521 (7553), pp. 436-444",
		"1.00",
		"0.25",
		"2 citations (3 duplicates removed), 1 sources failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Title:") {
		t.Error("title line should only appear when it differs from the query")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Result{Query: "https://x.org/a.pdf", Title: "INFERRED"}, &buf)
	out := buf.String()
	if !strings.Contains(out, "Title: INFERRED") {
		t.Errorf("missing inferred title:\n%s", out)
	}
	if !strings.Contains(out, "No citations found.") {
		t.Errorf("missing empty message:\n%s", out)
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(sampleResult(t), &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var decoded struct {
		Query     string `json:"query"`
		Citations []struct {
			Citation map[string]any `json:"citation"`
			Score    float64        `json:"score"`
		} `json:"citations"`
		DupsRemoved int                 `json:"duplicates_removed"`
		Failures    []map[string]string `json:"failures"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Citations) != 2 {
		t.Fatalf("len(citations) = %d, want 2", len(decoded.Citations))
	}
	if decoded.Citations[0].Citation["title"] != "Deep learning" {
		t.Errorf("citations[0].title = %v", decoded.Citations[0].Citation["title"])
	}
	if decoded.DupsRemoved != 3 {
		t.Errorf("duplicates_removed = %d", decoded.DupsRemoved)
	}
	if len(decoded.Failures) != 1 || decoded.Failures[0]["error"] != "HTTP 500" {
		t.Errorf("failures = %v", decoded.Failures)
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSL(sampleResult(t), &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	p := items[0]
	if p.ID != "lecun2015-1" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.Type != "article-journal" || p.ContainerTitle != "Nature" || p.Page != "436-444" {
		t.Errorf("paper item = %+v", p)
	}
	if len(p.Author) != 3 || p.Author[2].Family != "Hinton" || p.Author[2].Given != "G." {
		t.Errorf("authors = %+v", p.Author)
	}
	if p.Issued == nil || p.Issued.DateParts[0][0] != 2015 {
		t.Errorf("issued = %+v", p.Issued)
	}
	if p.Accessed != nil {
		t.Errorf("paper should have no accessed date, got %+v", p.Accessed)
	}

	w := items[1]
	if w.Type != "webpage" || w.URL != "https://arxiv.org/pdf/2303.08774v6" {
		t.Errorf("web item = %+v", w)
	}
	if len(w.Author) != 1 || w.Author[0].Literal != "OpenAI" {
		t.Errorf("authors = %+v", w.Author)
	}
	if w.Accessed == nil || w.Accessed.DateParts[0][0] != 2023 || w.Accessed.DateParts[0][2] != 17 {
		t.Errorf("accessed = %+v", w.Accessed)
	}
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []CSLName
	}{
		{"", nil},
		{"Smith, J.", []CSLName{{Family: "Smith", Given: "J."}}},
		{"Smith, J. and Doe, A.", []CSLName{{Family: "Smith", Given: "J."}, {Family: "Doe", Given: "A."}}},
		{"OpenAI and Smith, J.", []CSLName{{Literal: "OpenAI"}, {Family: "Smith", Given: "J."}}},
	}
	for _, tt := range tests {
		got := parseAuthors(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseAuthors(%q) = %+v, want %+v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseAuthors(%q)[%d] = %+v, want %+v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
