// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/novucs/papertool/pkg/types"
)

// DefaultMaxBody caps how much of a response body Get reads.
const DefaultMaxBody = 20 << 20

// Client wraps an http.Client with the User-Agent, retry budget and body
// limit every adapter applies.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
	MaxBody    int64
}

// NewClient builds a Client from cfg. Zero fields fall back to defaults.
func NewClient(cfg types.HTTPConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultHTTPTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		UserAgent:  ua,
		MaxRetries: cfg.MaxRetries,
		MaxBody:    DefaultMaxBody,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 200 response.
func (r *Response) OK() bool { return r.StatusCode == http.StatusOK }

// Get fetches url with the given extra headers and reads the body up to
// MaxBody bytes. A non-200 status is not an error; transport failures are
// *TransportError.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: strings.ToLower(resp.Header.Get("Content-Type")),
		Body:        body,
	}, nil
}

// UserAgent appends a mailto contact to base when email is set, the form
// arXiv and doi.org ask polite clients to use.
func UserAgent(base, email string) string {
	if base == "" {
		base = types.DefaultUserAgent
	}
	if email == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, email)
}
