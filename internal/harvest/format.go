// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes the ranked references as a human-readable table.
func FormatTable(res Result, w io.Writer) {
	if res.Title != res.Query {
		fmt.Fprintf(w, "Title: %s\n\n", res.Title)
	}
	if len(res.Citations) == 0 {
		fmt.Fprintln(w, "No citations found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-5s  %s\n", "Rank", "Score", "Reference")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, s := range res.Citations {
		fmt.Fprintf(w, "%-4d  %-5.2f  %s\n", i+1, s.Score, s.Citation)
	}

	fmt.Fprintf(w, "\n%d citations", len(res.Citations))
	if res.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", res.DupsRemoved)
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(w, ", %d sources failed", len(res.Failures))
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the result as indented JSON.
func FormatJSON(res Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
