// Package oaserrors provides structured error types for the oaskit library.
//
// Import path: github.com/erraggy/oaskit/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between different categories of errors.
//
// # Error Types
//
//   - [DecodeError]: I/O failures and malformed or ambiguous document content
//   - [ResolutionError]: unreachable documents, dangling or circular $ref links, redirect loops
//   - [ResourceLimitError]: resource exhaustion (chain depth, document size, document count)
//   - [ConfigError]: invalid configuration or input options
//
// Validation findings are not errors by default. The validator package returns
// them as results and only converts them into an error (which matches
// [ErrValidation]) on request.
//
// # Sentinel Errors
//
//   - [ErrDecode]: matches any [DecodeError]
//   - [ErrResolution]: matches any [ResolutionError]
//   - [ErrCircularReference]: matches [ResolutionError] with a non-empty Chain
//   - [ErrMissingReference]: matches [ResolutionError] with IsMissing=true
//   - [ErrTooManyRedirects]: matches [ResolutionError] with IsRedirectLoop=true
//   - [ErrValidation]: matches validation errors raised by the validator package
//   - [ErrResourceLimit]: matches any [ResourceLimitError]
//   - [ErrConfig]: matches any [ConfigError]
//
// # Example
//
//	_, err := resolver.Resolve(ctx, "openapi.yaml", nil)
//	var resErr *oaserrors.ResolutionError
//	if errors.As(err, &resErr) && resErr.IsCircular() {
//	    fmt.Println("cycle:", strings.Join(resErr.Chain, " -> "))
//	}
package oaserrors
