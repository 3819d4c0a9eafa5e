package loader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/erraggy/oaskit"
	"github.com/erraggy/oaskit/internal/httputil"
	"github.com/erraggy/oaskit/oaserrors"
	"golang.org/x/sync/singleflight"
)

// defaultTimeout applies to the HTTP client built when none is supplied.
const defaultTimeout = 30 * time.Second

// Loader fetches documents by URL and decodes them into tree values.
//
// A Loader is safe for concurrent use. Concurrent loads of the same URL share
// one fetch; each caller receives its own decoded tree.
type Loader struct {
	cfg    *config
	client *http.Client
	codec  Codec
	logger Logger
	group  singleflight.Group
}

// New creates a Loader configured by opts.
func New(opts ...Option) (*Loader, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	base := cfg.httpClient
	if base == nil {
		base = &http.Client{Timeout: defaultTimeout}
	}
	// Redirects are followed by hand so auth can be re-evaluated per hop.
	client := *base
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	l := &Loader{
		cfg:    cfg,
		client: &client,
		codec:  cfg.codec,
		logger: cfg.logger,
	}
	if l.codec == nil {
		l.codec = DefaultCodec{}
	}
	if l.logger == nil {
		l.logger = NopLogger{}
	}
	if l.cfg.userAgent == "" {
		l.cfg.userAgent = oaskit.UserAgent()
	}
	return l, nil
}

// MaxFileSize returns the configured document size limit in bytes.
func (l *Loader) MaxFileSize() int64 {
	return l.cfg.maxFileSize
}

// ToURL converts s into an absolute URL. Bare filesystem paths, relative or
// absolute, become file:// URLs.
func ToURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	// A one-letter scheme is a Windows drive letter, not a URL.
	if err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	abs, absErr := filepath.Abs(s)
	if absErr != nil {
		return nil, absErr
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// Load fetches the document at rawURL and decodes it.
//
// An empty document decodes to [Missing]. Failures to read or decode are
// reported as *oaserrors.DecodeError, exceeding the redirect limit as
// *oaserrors.ResolutionError and oversized documents as
// *oaserrors.ResourceLimitError.
func (l *Loader) Load(ctx context.Context, rawURL string) (any, error) {
	u, err := ToURL(rawURL)
	if err != nil {
		return nil, &oaserrors.DecodeError{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	key := u.String()

	res, err, shared := l.group.Do(key, func() (any, error) {
		return l.fetch(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("shared in-flight fetch", "url", u.Redacted())
	}
	data := res.([]byte)

	v, err := l.codec.Decode(data)
	if err != nil {
		return nil, &oaserrors.DecodeError{
			URL:    key,
			Format: string(DetectFormat(data)),
			Cause:  err,
		}
	}
	return v, nil
}

func (l *Loader) fetch(ctx context.Context, u *url.URL) (data []byte, err error) {
	start := time.Now()
	scheme := u.Scheme
	defer func() {
		l.cfg.metrics.observeFetch(scheme, start, len(data), err)
	}()

	switch scheme {
	case "file":
		data, err = l.readFile(u)
	case "http", "https":
		data, err = l.fetchHTTP(ctx, u)
	default:
		err = &oaserrors.DecodeError{URL: u.String(), Message: fmt.Sprintf("unsupported URL scheme %q", scheme)}
	}
	if err != nil {
		l.logger.Debug("fetch failed", "url", u.Redacted(), "error", err)
		return nil, err
	}
	l.logger.Debug("fetched document",
		"url", u.Redacted(),
		"size", FormatBytes(int64(len(data))),
		"elapsed", time.Since(start))
	return data, nil
}

func (l *Loader) readFile(u *url.URL) ([]byte, error) {
	path := filepath.FromSlash(u.Path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &oaserrors.DecodeError{URL: u.String(), Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	if info, statErr := f.Stat(); statErr == nil && info.Size() > l.cfg.maxFileSize {
		return nil, l.sizeError(u, info.Size())
	}
	return l.readLimited(u, f)
}

// readLimited reads at most maxFileSize bytes, failing when r holds more.
func (l *Loader) readLimited(u *url.URL, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.cfg.maxFileSize+1))
	if err != nil {
		return nil, &oaserrors.DecodeError{URL: u.String(), Message: "failed to read content", Cause: err}
	}
	if int64(len(data)) > l.cfg.maxFileSize {
		return nil, l.sizeError(u, 0)
	}
	return data, nil
}

func (l *Loader) sizeError(u *url.URL, actual int64) error {
	return &oaserrors.ResourceLimitError{
		ResourceType: "file_size",
		Limit:        l.cfg.maxFileSize,
		Actual:       actual,
		Message:      fmt.Sprintf("document %s exceeds %s", u.Redacted(), FormatBytes(l.cfg.maxFileSize)),
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	current := u
	for hop := 0; ; hop++ {
		resp, err := l.do(ctx, current)
		if err != nil {
			return nil, &oaserrors.DecodeError{URL: u.String(), Message: "request failed", Cause: err}
		}

		if httputil.IsRedirect(resp) {
			drain(resp)
			if hop >= l.cfg.maxRedirects {
				return nil, &oaserrors.ResolutionError{
					Document:       u.String(),
					IsRedirectLoop: true,
					Message:        fmt.Sprintf("stopped after %d redirects", l.cfg.maxRedirects),
				}
			}
			next, err := httputil.RedirectTarget(current, resp)
			if err != nil {
				return nil, &oaserrors.DecodeError{URL: u.String(), Message: "invalid redirect location", Cause: err}
			}
			l.cfg.metrics.observeRedirect()
			l.logger.Debug("following redirect",
				"from", current.Redacted(),
				"to", next.Redacted(),
				"status", resp.StatusCode)
			current = next
			continue
		}

		data, err := l.readResponse(u, resp)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

// do issues one GET for target with the credentials matching it.
func (l *Loader) do(ctx context.Context, target *url.URL) (*http.Response, error) {
	header := make(http.Header)
	reqURL := applyAuth(l.cfg.auth, target, header)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", httputil.AcceptHeader)
	req.Header.Set("User-Agent", l.cfg.userAgent)
	return l.client.Do(req)
}

func (l *Loader) readResponse(u *url.URL, resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, &oaserrors.DecodeError{
			URL:     u.String(),
			Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode),
		}
	}
	if resp.ContentLength > l.cfg.maxFileSize {
		return nil, l.sizeError(u, resp.ContentLength)
	}
	data, err := l.readLimited(u, resp.Body)
	if err != nil {
		return nil, err
	}

	if declaresJSON(resp.Header.Get("Content-Type")) && DetectFormat(data) == FormatYAML {
		return nil, &oaserrors.DecodeError{
			URL:     u.String(),
			Format:  string(FormatJSON),
			Message: "ambiguous content: declared as JSON but body is not a JSON object or array",
		}
	}
	return data, nil
}

// declaresJSON reports whether a Content-Type names a JSON media type,
// including structured suffixes like application/problem+json.
func declaresJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// FormatBytes formats a byte count into a human-readable string using binary units (KiB, MiB, etc.)
func FormatBytes(size int64) string {
	if size < 0 {
		return fmt.Sprintf("%d B", size)
	}

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

