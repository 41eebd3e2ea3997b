// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns DOIs into citations through doi.org content
// negotiation.
package resolve

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/internal/normalize"
	"github.com/novucs/papertool/pkg/types"
)

// doiBase is the DOI resolver. Declared as a var so tests can substitute
// an httptest server.
var doiBase = "https://doi.org/"

// bibtexAccept asks doi.org to answer with the registrant's bibtex record.
const bibtexAccept = "application/x-bibtex; charset=utf-8"

// doiPattern matches a bare DOI: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// Canonical strips resolver and "doi:" prefixes and reports whether what
// is left looks like a DOI. DOIs are case-insensitive, so callers compare
// strings.ToLower of the result.
func Canonical(doi string) (string, bool) {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			doi = strings.TrimSpace(doi[len(prefix):])
			break
		}
	}
	return doi, doiPattern.MatchString(doi)
}

// DOIResolver fetches bibtex for a DOI and normalizes it.
type DOIResolver struct {
	Client     *httputil.Client
	Normalizer normalize.Normalizer
}

// Resolve returns the citation registered for doi. Anything short of a
// usable record (a malformed DOI, a non-200 answer, bibtex that does not
// normalize) yields nil with no error. Network failures return a
// *httputil.TransportError.
func (r *DOIResolver) Resolve(ctx context.Context, doi string) (*types.Citation, error) {
	doi, ok := Canonical(doi)
	if !ok {
		return nil, nil
	}

	resp, err := r.Client.Get(ctx, doiBase+doi, http.Header{"Accept": {bibtexAccept}})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, nil
	}

	c, err := r.Normalizer.NormalizeText(string(resp.Body))
	if err != nil {
		return nil, nil
	}
	return &c, nil
}
