// Package httputil provides HTTP-related helpers and constants for document fetching.
package httputil

import (
	"net/http"
	"net/url"
)

// AcceptHeader is sent with every document request.
const AcceptHeader = "application/json, application/yaml, */*"

// MaxRedirects is the default number of redirects followed before giving up.
const MaxRedirects = 5

// IsRedirect reports whether a response asks the client to fetch another location:
// a 301/302 status or any response carrying a Location header.
func IsRedirect(resp *http.Response) bool {
	if resp == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound:
		return true
	}
	return resp.Header.Get("Location") != ""
}

// RedirectTarget resolves the Location header of resp against the request URL.
func RedirectTarget(current *url.URL, resp *http.Response) (*url.URL, error) {
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return nil, err
	}
	return current.ResolveReference(loc), nil
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
