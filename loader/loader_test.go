package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/erraggy/oaskit"
	"github.com/erraggy/oaskit/internal/httputil"
	"github.com/erraggy/oaskit/oaserrors"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	l, err := New(opts...)
	require.NoError(t, err)
	return l
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil codec", WithCodec(nil)},
		{"negative redirects", WithMaxRedirects(-1)},
		{"zero file size", WithMaxFileSize(0)},
		{"empty auth key", WithAuth(HeaderAuth("", "v", nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig))
		})
	}
}

func TestToURL(t *testing.T) {
	u, err := ToURL("https://example.com/api.yaml")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api.yaml", u.String())

	u, err = ToURL("testdata/api.yaml")
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(u.Path)))
	assert.True(t, strings.HasSuffix(u.Path, "/testdata/api.yaml"))
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")
	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"openapi":"3.0.3"}`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("openapi: 3.1.0\n"), 0o600))
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o600))

	l := newLoader(t)
	ctx := context.Background()

	v, err := l.Load(ctx, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"openapi": "3.0.3"}, v)

	u, err := ToURL(yamlPath)
	require.NoError(t, err)
	v, err = l.Load(ctx, u.String())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"openapi": "3.1.0"}, v)

	v, err = l.Load(ctx, emptyPath)
	require.NoError(t, err)
	assert.True(t, IsMissing(v))
}

func TestLoad_FileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":`), 0o600))
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("a", 64)), 0o600))

	l := newLoader(t, WithMaxFileSize(32))
	ctx := context.Background()

	_, err := l.Load(ctx, filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrDecode))

	_, err = l.Load(ctx, bad)
	var decErr *oaserrors.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "json", decErr.Format)

	_, err = l.Load(ctx, big)
	var limErr *oaserrors.ResourceLimitError
	require.ErrorAs(t, err, &limErr)
	assert.Equal(t, "file_size", limErr.ResourceType)
	assert.Equal(t, int64(32), limErr.Limit)
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	_, err := newLoader(t).Load(context.Background(), "ftp://example.com/a.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported URL scheme")
}

func TestLoad_HTTPHeaders(t *testing.T) {
	var gotAccept, gotUA, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("openapi: 3.0.3\n"))
	}))
	defer srv.Close()

	v, err := newLoader(t).Load(context.Background(), srv.URL+"/api.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"openapi": "3.0.3"}, v)
	assert.Equal(t, httputil.AcceptHeader, gotAccept)
	assert.Equal(t, oaskit.UserAgent(), gotUA)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestLoad_HTTPCustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newLoader(t, WithUserAgent("custom/1.0")).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "custom/1.0", gotUA)
}

func TestLoad_HTTPEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v, err := newLoader(t).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, IsMissing(v))
}

func TestLoad_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newLoader(t).Load(context.Background(), srv.URL+"/missing.yaml")
	var decErr *oaserrors.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Message, "404")
}

func TestLoad_HTTPAmbiguousContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte("openapi: 3.0.3\n"))
	}))
	defer srv.Close()

	_, err := newLoader(t).Load(context.Background(), srv.URL)
	var decErr *oaserrors.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, decErr.Message, "ambiguous")
}

func TestLoad_HTTPSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	_, err := newLoader(t, WithMaxFileSize(10)).Load(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrResourceLimit))
}

func TestLoad_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final.json", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	v, err := newLoader(t, WithMetrics(m)).Load(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, v)
	assert.Equal(t, float64(2), promtest.ToFloat64(m.redirects))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.fetches.WithLabelValues("http", "success")))
}

func TestLoad_TooManyRedirects(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		http.Redirect(w, r, fmt.Sprintf("/hop%d", n), http.StatusFound)
	}))
	defer srv.Close()

	_, err := newLoader(t).Load(context.Background(), srv.URL+"/loop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrTooManyRedirects))
	assert.True(t, errors.Is(err, oaserrors.ErrResolution))
	// The initial request plus five followed redirects.
	assert.Equal(t, int32(httputil.MaxRedirects+1), hits.Load())
}

func TestLoad_LocationHeaderIsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/created", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/real.yaml")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/real.yaml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("a: 1\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v, err := newLoader(t).Load(context.Background(), srv.URL+"/created")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, v)
}

func TestLoad_AuthReevaluatedPerRedirect(t *testing.T) {
	var publicAuth, privateAuth, privateKey string
	private := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		privateAuth = r.Header.Get("Authorization")
		privateKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"private":true}`))
	}))
	defer private.Close()

	public := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		publicAuth = r.Header.Get("Authorization")
		http.Redirect(w, r, private.URL+"/spec.json?v=1", http.StatusFound)
	}))
	defer public.Close()

	l := newLoader(t,
		WithAuth(HeaderAuth("Authorization", "Bearer public", MatchPrefix(public.URL+"/"))),
		WithAuth(QueryAuth("key", "s3cret", MatchPrefix(private.URL+"/"))),
	)
	v, err := l.Load(context.Background(), public.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"private": true}, v)

	assert.Equal(t, "Bearer public", publicAuth)
	assert.Empty(t, privateAuth, "header credential must not leak to another origin")
	assert.Equal(t, "s3cret", privateKey)
}

func TestLoad_ConcurrentCallersGetOwnTrees(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	l := newLoader(t)
	const callers = 4
	results := make([]any, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Load(context.Background(), srv.URL)
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, map[string]any{"n": json.Number("1")}, r)
	}
	// Mutating one tree must not affect another.
	results[0].(map[string]any)["n"] = "changed"
	assert.NotEqual(t, "changed", results[1].(map[string]any)["n"])
	assert.GreaterOrEqual(t, hits.Load(), int32(1))
}

func TestLoad_CustomCodec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	l := newLoader(t, WithCodec(upperCodec{}))
	v, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", v)
}

func TestLoad_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newLoader(t).Load(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "10.0 MiB", FormatBytes(DefaultMaxFileSize))
}

type upperCodec struct{}

func (upperCodec) Decode(data []byte) (any, error) {
	return strings.ToUpper(string(data)), nil
}
