// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders citations by how closely their titles match a query.
package rank

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/novucs/papertool/pkg/types"
)

// Scored pairs a citation with its title similarity to the query.
type Scored struct {
	Citation types.Citation `json:"citation"`
	Score    float64        `json:"score"`
}

// Similarity returns the Ratcliff/Obershelp ratio of a and b in [0, 1],
// compared case-insensitively rune by rune.
func Similarity(a, b string) float64 {
	ra := runes(strings.ToLower(a))
	rb := runes(strings.ToLower(b))
	if len(ra)+len(rb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ra, rb).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Score computes the similarity of every citation title to query and
// returns them sorted best first. Ties keep their input order.
func Score(cites []types.Citation, query string) []Scored {
	scored := make([]Scored, len(cites))
	for i, c := range cites {
		scored[i] = Scored{Citation: c, Score: Similarity(c.Title(), query)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ByTitle returns a new slice of cites sorted by descending title
// similarity to query.
func ByTitle(cites []types.Citation, query string) []types.Citation {
	scored := Score(cites, query)
	out := make([]types.Citation, len(scored))
	for i, s := range scored {
		out[i] = s.Citation
	}
	return out
}
