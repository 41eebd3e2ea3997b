// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paperFields() CitationFields {
	return CitationFields{
		Authors: "Smith, J. and Doe, J.",
		Year:    "2020",
		Title:   "X",
		Venue:   "Y",
		Volume:  "1",
		Issue:   "1",
		Pages:   "10-20",
		Kind:    KindPaper,
	}
}

func TestNewCitationPaperRequiresPages(t *testing.T) {
	f := paperFields()
	f.Pages = ""

	_, err := NewCitation(f)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	assert.Equal(t, KindPaper, verr.Kind)
}

func TestNewCitationElectronicRequiresAccessed(t *testing.T) {
	f := paperFields()
	f.Kind = KindElectronic
	f.URL = "https://example.org/x.pdf"

	_, err := NewCitation(f)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	assert.Equal(t, KindElectronic, verr.Kind)

	f.Accessed = "[Accessed 01 January 20]"
	_, err = NewCitation(f)
	assert.NoError(t, err)
}

func TestNewCitationElectronicWithoutPages(t *testing.T) {
	f := paperFields()
	f.Kind = KindElectronic
	f.Pages = ""
	f.Accessed = "[Accessed 01 January 20]"

	_, err := NewCitation(f)
	assert.NoError(t, err)
}

func TestNewCitationRejectsPreprint(t *testing.T) {
	f := paperFields()
	f.Kind = KindPreprint

	_, err := NewCitation(f)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCitationEquality(t *testing.T) {
	a, err := NewCitation(paperFields())
	require.NoError(t, err)
	b, err := NewCitation(paperFields())
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.True(t, a.Equal(b))

	set := map[Citation]struct{}{a: {}, b: {}}
	assert.Len(t, set, 1)

	f := paperFields()
	f.Issue = "2"
	c, err := NewCitation(f)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestCitationString(t *testing.T) {
	paper, err := NewCitation(paperFields())
	require.NoError(t, err)
	assert.Equal(t, "Smith, J. and Doe, J. (2020) X. Y. 1 (1), pp. 10-20", paper.String())

	f := paperFields()
	f.Kind = KindElectronic
	f.Accessed = "[Accessed 05 March 21]"
	f.URL = "https://example.org"
	electronic, err := NewCitation(f)
	require.NoError(t, err)
	assert.Equal(t, "Smith, J. and Doe, J. (2020) X. Y [online]. 1 (1), pp. 10-20. [Accessed 05 March 21]", electronic.String())

	f.Pages = ""
	noPages, err := NewCitation(f)
	require.NoError(t, err)
	assert.Equal(t, "Smith, J. and Doe, J. (2020) X. Y [online]. 1 (1). [Accessed 05 March 21]", noPages.String())
}

func TestJoinAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"empty", nil, ""},
		{"single", []string{"Smith, J."}, "Smith, J."},
		{"two", []string{"Smith, J.", "Doe, A."}, "Smith, J. and Doe, A."},
		{"three", []string{"A, B.", "C, D.", "E, F."}, "A, B., C, D. and E, F."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinAuthors(tt.authors); got != tt.want {
				t.Errorf("JoinAuthors(%q) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}

func TestAccessedStamp(t *testing.T) {
	ts := time.Date(2023, time.January, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "[Accessed 07 January 23]", AccessedStamp(ts))

	parsed, ok := ParseAccessed("[Accessed 07 January 23]")
	require.True(t, ok)
	assert.Equal(t, 2023, parsed.Year())
	assert.Equal(t, time.January, parsed.Month())
	assert.Equal(t, 7, parsed.Day())

	_, ok = ParseAccessed("yesterday")
	assert.False(t, ok)
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindPaper, KindElectronic, KindPreprint} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("poster")))
}

func TestCitationMarshalJSON(t *testing.T) {
	c, err := NewCitation(paperFields())
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "paper", decoded["kind"])
	assert.Equal(t, "10-20", decoded["pages"])
	assert.Equal(t, c.String(), decoded["formatted"])
	_, hasURL := decoded["url"]
	assert.False(t, hasURL)
}

func TestHarvestConfigWithDefaults(t *testing.T) {
	cfg := HarvestConfig{Workers: 3}.WithDefaults()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, DefaultTaskTimeout, cfg.TaskTimeout)
	assert.Equal(t, DefaultMaxPages, cfg.MaxPages)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestServeConfigWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultServeAddr, ServeConfig{}.WithDefaults().Addr)
	assert.Equal(t, ":9000", ServeConfig{Addr: ":9000"}.WithDefaults().Addr)
}
