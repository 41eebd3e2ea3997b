package types

import "time"

// HTTPConfig holds shared HTTP settings used by every adapter that makes
// network requests.
type HTTPConfig struct {
	// Timeout is the overall HTTP client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "papertool/0.1 (mailto:someone@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 responses (0 uses the default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// HarvestConfig holds settings for the harvest orchestrator.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Workers is the size of the shared executor (default 8).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// TaskTimeout bounds each fetch dispatched on the executor (default 20s).
	TaskTimeout time.Duration `json:"task_timeout" yaml:"task_timeout" mapstructure:"task_timeout"`

	// MaxPages caps the number of web search results fetched (default 10).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// Defaults used when a HarvestConfig field is left zero.
const (
	DefaultWorkers     = 8
	DefaultTaskTimeout = 20 * time.Second
	DefaultMaxPages    = 10
	DefaultHTTPTimeout = 30 * time.Second
	DefaultUserAgent   = "papertool/0.1"
	DefaultServeAddr   = ":8080"
)

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c HarvestConfig) WithDefaults() HarvestConfig {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultTaskTimeout
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultHTTPTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// ServeConfig holds settings for the HTTP front end.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// WithDefaults returns a copy of c with an empty address replaced.
func (c ServeConfig) WithDefaults() ServeConfig {
	if c.Addr == "" {
		c.Addr = DefaultServeAddr
	}
	return c
}
