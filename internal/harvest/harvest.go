// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest gathers citations for one paper from every source,
// de-duplicates them and ranks them against the query.
//
// A harvest runs in stages on a shared executor: an optional PDF title
// lookup, then the arXiv lookup alongside the web search listing, then the
// web pages, then every DOI found along the way. A failing task only
// removes its own contribution; Harvest always returns a result.
package harvest

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/novucs/papertool/internal/convert"
	"github.com/novucs/papertool/internal/extract"
	"github.com/novucs/papertool/internal/httputil"
	"github.com/novucs/papertool/internal/normalize"
	"github.com/novucs/papertool/internal/rank"
	"github.com/novucs/papertool/internal/resolve"
	"github.com/novucs/papertool/internal/search"
	"github.com/novucs/papertool/internal/workpool"
	"github.com/novucs/papertool/pkg/types"
)

// PreprintIndex finds the preprint matching a title.
type PreprintIndex interface {
	Lookup(ctx context.Context, title string) (*search.PreprintHit, error)
}

// WebSearch lists pages likely to carry bibtex for a title.
type WebSearch interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// PageFetcher downloads and extracts one web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (extract.Extraction, error)
}

// DOIResolver turns a DOI into a citation. A nil citation with no error
// means the DOI resolved to nothing usable.
type DOIResolver interface {
	Resolve(ctx context.Context, doi string) (*types.Citation, error)
}

// DocumentFetcher downloads a document such as a PDF.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Deps are the sources a Harvester draws on. Nil sources are skipped.
// Executor is required and is shared with other harvests.
type Deps struct {
	Preprints PreprintIndex
	Search    WebSearch
	Pages     PageFetcher
	DOIs      DOIResolver
	Documents DocumentFetcher
	Converter convert.Converter
	Executor  *workpool.Executor
}

// DefaultDeps wires the production adapters onto one HTTP client.
func DefaultDeps(cfg types.HarvestConfig, ex *workpool.Executor) Deps {
	client := httputil.NewClient(cfg.HTTPConfig)
	n := normalize.Normalizer{}
	return Deps{
		Preprints: &search.ArxivIndex{Client: client},
		Search:    &search.DuckDuckGo{Client: client},
		Pages:     &extract.WebPages{Client: client, Normalizer: n},
		DOIs:      &resolve.DOIResolver{Client: client, Normalizer: n},
		Documents: &convert.Fetcher{Client: client},
		Converter: convert.PDFConverter{MaxPages: 2},
		Executor:  ex,
	}
}

// Stage names the step of a harvest a task belonged to.
type Stage string

const (
	StageDocument Stage = "document"
	StagePreprint Stage = "preprint"
	StageSearch   Stage = "search"
	StagePage     Stage = "page"
	StageDOI      Stage = "doi"
)

// TaskOutcome records one failed task.
type TaskOutcome struct {
	Stage  Stage
	Target string
	Err    error
}

// MarshalJSON renders Err as its message.
func (o TaskOutcome) MarshalJSON() ([]byte, error) {
	msg := ""
	if o.Err != nil {
		msg = o.Err.Error()
	}
	return json.Marshal(struct {
		Stage  Stage  `json:"stage"`
		Target string `json:"target"`
		Error  string `json:"error"`
	}{o.Stage, o.Target, msg})
}

// Result is the outcome of one harvest.
type Result struct {
	Query string `json:"query"`
	// Title is what the sources were asked about: the query, or the title
	// read from the document the query points at.
	Title       string        `json:"title"`
	Citations   []rank.Scored `json:"citations"`
	DupsRemoved int           `json:"duplicates_removed"`
	Failures    []TaskOutcome `json:"failures,omitempty"`
}

// Harvester runs harvests. It is safe for concurrent use.
type Harvester struct {
	deps Deps
	cfg  types.HarvestConfig
	log  *zap.Logger
}

// New returns a Harvester. A nil logger discards output; a nil executor
// gets a private one sized from cfg.
func New(deps Deps, cfg types.HarvestConfig, log *zap.Logger) *Harvester {
	cfg = cfg.WithDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Executor == nil {
		deps.Executor = workpool.NewExecutor(cfg.Workers, cfg.TaskTimeout)
	}
	if deps.Converter == nil {
		deps.Converter = convert.PDFConverter{MaxPages: 2}
	}
	return &Harvester{deps: deps, cfg: cfg, log: log}
}

// listing is what the concurrent first stage produces: the preprint hit
// or the search result URLs.
type listing struct {
	hit  *search.PreprintHit
	urls []string
}

// Harvest collects, de-duplicates and ranks citations for query, which is
// a paper title or the URL of a PDF.
func (h *Harvester) Harvest(ctx context.Context, query string) Result {
	res := Result{Query: query, Title: query}
	log := h.log.With(zap.String("query", query))

	if convert.IsDocumentURL(query) {
		res.Title = h.inferTitle(ctx, query, &res)
		log.Info("document title", zap.String("title", res.Title))
	}

	hit, urls := h.list(ctx, res.Title, &res)

	var candidates []types.Citation
	var dois []string
	if hit != nil {
		candidates = append(candidates, hit.Citation)
		if hit.DOI != "" {
			dois = append(dois, hit.DOI)
		}
	}

	pageCites, pageDOIs := h.scrape(ctx, urls, &res)
	candidates = append(candidates, pageCites...)
	dois = append(dois, pageDOIs...)

	candidates = append(candidates, h.resolve(ctx, dois, &res)...)

	unique := dedupe(candidates)
	res.DupsRemoved = len(candidates) - len(unique)
	res.Citations = rank.Score(unique, query)

	log.Info("harvest complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("citations", len(res.Citations)),
		zap.Int("duplicates_removed", res.DupsRemoved),
		zap.Int("failures", len(res.Failures)))
	return res
}

func (h *Harvester) fail(res *Result, stage Stage, target string, err error) {
	res.Failures = append(res.Failures, TaskOutcome{Stage: stage, Target: target, Err: err})
	h.log.Debug("task failed",
		zap.String("stage", string(stage)),
		zap.String("target", target),
		zap.Error(err))
}

// inferTitle reads the title from the PDF at url, falling back to url
// itself on any failure.
func (h *Harvester) inferTitle(ctx context.Context, url string, res *Result) string {
	if h.deps.Documents == nil {
		return url
	}
	out := workpool.Map(ctx, h.deps.Executor, []workpool.Task[string]{
		func(ctx context.Context) (string, error) {
			data, err := h.deps.Documents.Fetch(ctx, url)
			if err != nil {
				return "", err
			}
			text, err := h.deps.Converter.Convert(data)
			if err != nil {
				return "", err
			}
			return extract.GuessTitle(text), nil
		},
	})
	if out[0].Err != nil {
		h.fail(res, StageDocument, url, out[0].Err)
		return url
	}
	if out[0].Value == "" {
		return url
	}
	return out[0].Value
}

// list runs the preprint lookup and the web search listing side by side.
func (h *Harvester) list(ctx context.Context, title string, res *Result) (*search.PreprintHit, []string) {
	var tasks []workpool.Task[listing]
	var stages []Stage
	if h.deps.Preprints != nil {
		stages = append(stages, StagePreprint)
		tasks = append(tasks, func(ctx context.Context) (listing, error) {
			hit, err := h.deps.Preprints.Lookup(ctx, title)
			return listing{hit: hit}, err
		})
	}
	if h.deps.Search != nil {
		stages = append(stages, StageSearch)
		tasks = append(tasks, func(ctx context.Context) (listing, error) {
			urls, err := h.deps.Search.Search(ctx, title, h.cfg.MaxPages)
			return listing{urls: urls}, err
		})
	}

	var hit *search.PreprintHit
	var urls []string
	for i, o := range workpool.Map(ctx, h.deps.Executor, tasks) {
		if o.Err != nil {
			h.fail(res, stages[i], title, o.Err)
			continue
		}
		if o.Value.hit != nil {
			hit = o.Value.hit
		}
		urls = append(urls, o.Value.urls...)
	}
	if len(urls) > h.cfg.MaxPages {
		urls = urls[:h.cfg.MaxPages]
	}
	h.log.Info("listing",
		zap.Bool("preprint", hit != nil),
		zap.Int("pages", len(urls)))
	return hit, urls
}

// scrape fetches every page concurrently and merges their extractions in
// page order.
func (h *Harvester) scrape(ctx context.Context, urls []string, res *Result) ([]types.Citation, []string) {
	if h.deps.Pages == nil || len(urls) == 0 {
		return nil, nil
	}
	tasks := make([]workpool.Task[extract.Extraction], len(urls))
	for i, u := range urls {
		tasks[i] = func(ctx context.Context) (extract.Extraction, error) {
			return h.deps.Pages.Fetch(ctx, u)
		}
	}

	var cites []types.Citation
	var dois []string
	for i, o := range workpool.Map(ctx, h.deps.Executor, tasks) {
		if o.Err != nil {
			h.fail(res, StagePage, urls[i], o.Err)
			continue
		}
		cites = append(cites, o.Value.Citations...)
		dois = append(dois, o.Value.DOIs...)
	}
	h.log.Info("pages scraped",
		zap.Int("pages", len(urls)),
		zap.Int("citations", len(cites)),
		zap.Int("dois", len(dois)))
	return cites, dois
}

// resolve resolves every distinct DOI concurrently.
func (h *Harvester) resolve(ctx context.Context, dois []string, res *Result) []types.Citation {
	if h.deps.DOIs == nil {
		return nil
	}
	unique := uniqueDOIs(dois)
	if len(unique) == 0 {
		return nil
	}
	tasks := make([]workpool.Task[*types.Citation], len(unique))
	for i, doi := range unique {
		tasks[i] = func(ctx context.Context) (*types.Citation, error) {
			return h.deps.DOIs.Resolve(ctx, doi)
		}
	}

	var cites []types.Citation
	for i, o := range workpool.Map(ctx, h.deps.Executor, tasks) {
		if o.Err != nil {
			h.fail(res, StageDOI, unique[i], o.Err)
			continue
		}
		if o.Value != nil {
			cites = append(cites, *o.Value)
		}
	}
	h.log.Info("dois resolved",
		zap.Int("dois", len(unique)),
		zap.Int("citations", len(cites)))
	return cites
}

// uniqueDOIs canonicalizes dois and drops malformed ones and repeats,
// comparing case-insensitively. First spelling wins.
func uniqueDOIs(dois []string) []string {
	seen := make(map[string]bool, len(dois))
	var out []string
	for _, d := range dois {
		doi, ok := resolve.Canonical(d)
		if !ok {
			continue
		}
		key := strings.ToLower(doi)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, doi)
	}
	return out
}

// dedupe drops citations equal to an earlier one.
func dedupe(cites []types.Citation) []types.Citation {
	seen := make(map[types.Citation]bool, len(cites))
	out := make([]types.Citation, 0, len(cites))
	for _, c := range cites {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
