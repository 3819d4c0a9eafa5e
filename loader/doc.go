// Package loader fetches OpenAPI documents and decodes them into tree values.
//
// A tree value is the generic decoded form every other oaskit package works
// with: nil, bool, numbers (json.Number for JSON input; int, uint64 or float64
// for YAML input), string, []any and map[string]any.
//
// # Quick Start
//
//	l, err := loader.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	doc, err := l.Load(ctx, "openapi.yaml")
//
// Documents are addressed by URL. Bare filesystem paths are converted to
// absolute file:// URLs; http:// and https:// URLs are fetched with GET.
//
// # Content Sniffing
//
// The first non-whitespace byte decides the format: '{' or '[' means JSON,
// anything else is decoded as YAML. An empty body decodes to [Missing] rather
// than failing. A response whose Content-Type declares JSON but whose body is
// not JSON is rejected as ambiguous.
//
// # Authentication
//
// Per-URL credentials are attached with [WithAuth]. Each [AuthOption] carries a
// predicate, and only options whose predicate matches the URL being fetched
// (including every redirect target) are applied:
//
//	l, _ := loader.New(
//		loader.WithAuth(loader.HeaderAuth("Authorization", "Bearer "+token, loader.MatchHost("specs.example.com"))),
//		loader.WithAuth(loader.QueryAuth("api_key", key, loader.MatchPrefix("https://partner.example.com/"))),
//	)
//
// # Redirects
//
// Redirects (301, 302, or any response carrying a Location header) are
// followed up to 5 times by default. Exceeding the limit fails with an
// *oaserrors.ResolutionError matching oaserrors.ErrTooManyRedirects.
//
// # Concurrency
//
// A Loader is safe for concurrent use. Concurrent loads of the same URL share
// a single fetch.
package loader
