package loader

import (
	"net/http"

	"github.com/erraggy/oaskit/internal/httputil"
	"github.com/erraggy/oaskit/oaserrors"
)

// DefaultMaxFileSize is the maximum document size (10 MiB) unless overridden.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Option is a function that configures a Loader.
type Option func(*config) error

type config struct {
	auth         []AuthOption
	httpClient   *http.Client
	userAgent    string
	codec        Codec
	logger       Logger
	metrics      *Metrics
	maxRedirects int
	maxFileSize  int64
}

// WithAuth adds a credential injected into every request whose URL it matches.
// May be given several times.
func WithAuth(opt AuthOption) Option {
	return func(c *config) error {
		if opt.Key == "" {
			return &oaserrors.ConfigError{Option: "WithAuth", Message: "auth key cannot be empty"}
		}
		c.auth = append(c.auth, opt)
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for http and https URLs.
// The client's redirect policy is ignored; redirects are followed by the Loader.
// If the client is nil, this option has no effect (default client is used).
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent string for HTTP requests.
// Default: "oaskit/vX.Y.Z"
func WithUserAgent(ua string) Option {
	return func(c *config) error {
		c.userAgent = ua
		return nil
	}
}

// WithCodec replaces the default JSON/YAML codec.
func WithCodec(codec Codec) Option {
	return func(c *config) error {
		if codec == nil {
			return &oaserrors.ConfigError{Option: "WithCodec", Message: "codec cannot be nil"}
		}
		c.codec = codec
		return nil
	}
}

// WithLogger sets the structured logger for debug output.
func WithLogger(l Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// WithMetrics records fetch counters and latencies into m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithMaxRedirects sets how many redirects are followed per fetch.
// Default: 5
func WithMaxRedirects(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxRedirects", Value: n, Message: "must not be negative"}
		}
		c.maxRedirects = n
		return nil
	}
}

// WithMaxFileSize sets the maximum size in bytes of a fetched document.
// Default: 10 MiB
func WithMaxFileSize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxFileSize", Value: n, Message: "must be positive"}
		}
		c.maxFileSize = n
		return nil
	}
}

func defaultConfig() *config {
	return &config{
		maxRedirects: httputil.MaxRedirects,
		maxFileSize:  DefaultMaxFileSize,
	}
}
