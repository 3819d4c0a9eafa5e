package loader

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestApplyAuth(t *testing.T) {
	opts := []AuthOption{
		HeaderAuth("Authorization", "Bearer secret", MatchHost("api.example.com")),
		QueryAuth("api_key", "k1", MatchPrefix("https://api.example.com/private/")),
		HeaderAuth("X-Other", "other", MatchHost("other.example.com")),
	}

	t.Run("matching header and query", func(t *testing.T) {
		u := mustParse(t, "https://API.example.com/private/spec.yaml?v=2")
		h := make(http.Header)
		got := applyAuth(opts, u, h)

		assert.Equal(t, "Bearer secret", h.Get("Authorization"))
		assert.Empty(t, h.Get("X-Other"))
		assert.Equal(t, url.Values{"v": {"2"}}, u.Query(), "input URL must not change")
		assert.Equal(t, "k1", got.Query().Get("api_key"))
		assert.Equal(t, "2", got.Query().Get("v"))
	})

	t.Run("prefix mismatch", func(t *testing.T) {
		u := mustParse(t, "https://api.example.com/public/spec.yaml")
		h := make(http.Header)
		got := applyAuth(opts, u, h)

		assert.Equal(t, "Bearer secret", h.Get("Authorization"))
		assert.Empty(t, got.RawQuery)
	})

	t.Run("no match", func(t *testing.T) {
		u := mustParse(t, "https://elsewhere.test/spec.yaml")
		h := make(http.Header)
		got := applyAuth(opts, u, h)

		assert.Empty(t, h)
		assert.Equal(t, u.String(), got.String())
	})
}

func TestAuthOption_NilMatchMatchesAll(t *testing.T) {
	opt := HeaderAuth("X-Key", "v", nil)
	assert.True(t, opt.matches(mustParse(t, "http://a.test/")))
	assert.True(t, MatchAll()(mustParse(t, "file:///tmp/x.yaml")))
}

func TestMatchHost_IgnoresPort(t *testing.T) {
	m := MatchHost("localhost")
	assert.True(t, m(mustParse(t, "http://localhost:8080/a")))
	assert.False(t, m(mustParse(t, "http://localhost.evil.test/a")))
}
