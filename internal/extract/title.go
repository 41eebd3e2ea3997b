// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"
)

// titleDepth is how many leading lines of a document GuessTitle considers.
const titleDepth = 5

// GuessTitle picks a likely title from the start of a document's text.
// Among the first lines, the earliest all-uppercase line wins; without one
// the earliest non-blank line is used. Returns "" for blank text.
func GuessTitle(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > titleDepth {
		lines = lines[:titleDepth]
	}

	guess := ""
	seenCaps := false
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isUpper(line) {
			seenCaps = true
			guess = line
		}
		if !seenCaps {
			guess = line
		}
	}
	return guess
}

// isUpper reports whether s has at least one letter and no lower-case
// letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
