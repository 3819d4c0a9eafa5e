package loader

import (
	"net/http"
	"net/url"
	"strings"
)

// AuthLocation says where an AuthOption injects its credential.
type AuthLocation int

const (
	// AuthHeader sets a request header
	AuthHeader AuthLocation = iota
	// AuthQuery adds a query parameter to the request URL
	AuthQuery
)

// URLMatcher decides whether an AuthOption applies to a URL.
type URLMatcher func(u *url.URL) bool

// AuthOption is one credential to inject into matching requests.
type AuthOption struct {
	Where AuthLocation
	Key   string
	Value string
	// Match selects the URLs this option applies to. Nil matches every URL.
	Match URLMatcher
}

// HeaderAuth returns an AuthOption that sets header key to value.
func HeaderAuth(key, value string, match URLMatcher) AuthOption {
	return AuthOption{Where: AuthHeader, Key: key, Value: value, Match: match}
}

// QueryAuth returns an AuthOption that adds the query parameter key=value.
func QueryAuth(key, value string, match URLMatcher) AuthOption {
	return AuthOption{Where: AuthQuery, Key: key, Value: value, Match: match}
}

// MatchAll matches every URL.
func MatchAll() URLMatcher {
	return func(*url.URL) bool { return true }
}

// MatchHost matches URLs whose host (without port) equals host, case-insensitively.
func MatchHost(host string) URLMatcher {
	return func(u *url.URL) bool {
		return strings.EqualFold(u.Hostname(), host)
	}
}

// MatchPrefix matches URLs whose string form starts with prefix.
func MatchPrefix(prefix string) URLMatcher {
	return func(u *url.URL) bool {
		return strings.HasPrefix(u.String(), prefix)
	}
}

func (a AuthOption) matches(u *url.URL) bool {
	return a.Match == nil || a.Match(u)
}

// applyAuth returns the URL to request and sets matching headers on h.
// u itself is never modified.
func applyAuth(opts []AuthOption, u *url.URL, h http.Header) *url.URL {
	target := *u
	var query url.Values
	for _, opt := range opts {
		if !opt.matches(u) {
			continue
		}
		switch opt.Where {
		case AuthHeader:
			h.Set(opt.Key, opt.Value)
		case AuthQuery:
			if query == nil {
				query = target.Query()
			}
			query.Set(opt.Key, opt.Value)
		}
	}
	if query != nil {
		target.RawQuery = query.Encode()
	}
	return &target
}
