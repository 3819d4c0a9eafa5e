package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrDecode indicates a document could not be read or decoded.
	ErrDecode = errors.New("decode error")

	// ErrResolution indicates a reference resolution failure.
	ErrResolution = errors.New("resolution error")

	// ErrCircularReference indicates a circular chain of references.
	ErrCircularReference = errors.New("circular reference")

	// ErrMissingReference indicates a reference whose target does not exist.
	ErrMissingReference = errors.New("missing reference")

	// ErrTooManyRedirects indicates the redirect limit was exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrValidation indicates a value failed schema validation.
	ErrValidation = errors.New("validation error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// DecodeError represents a failure to read or decode a document.
type DecodeError struct {
	// URL is the document location
	URL string
	// Format is the detected content format ("json", "yaml"), if known
	Format string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *DecodeError) Error() string {
	msg := "decode error"
	if e.URL != "" {
		msg += " in " + e.URL
	}
	if e.Format != "" {
		msg += " (" + e.Format + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ResolutionError represents a failure to resolve a reference or to load a
// document needed for resolution.
type ResolutionError struct {
	// Ref is the canonical reference that failed, if any
	Ref string
	// Document is the URL of the document the reference belongs to
	Document string
	// Chain lists, in order, the references of a circular chain.
	// Non-empty only for circular references.
	Chain []string
	// IsMissing is true when the reference target does not exist
	IsMissing bool
	// IsRedirectLoop is true when the redirect limit was exceeded
	IsRedirectLoop bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// IsCircular reports whether the error describes a reference cycle.
func (e *ResolutionError) IsCircular() bool {
	return len(e.Chain) > 0
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	var msg string
	switch {
	case e.IsCircular():
		msg = "circular reference: " + strings.Join(e.Chain, " -> ")
	case e.IsMissing:
		msg = "missing reference"
	case e.IsRedirectLoop:
		msg = "too many redirects"
	default:
		msg = "resolution error"
	}
	if e.Ref != "" && !e.IsCircular() {
		msg += ": " + e.Ref
	}
	if e.Document != "" {
		msg += " (document " + e.Document + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrResolution, and also ErrCircularReference, ErrMissingReference or
// ErrTooManyRedirects when the corresponding condition holds.
func (e *ResolutionError) Is(target error) bool {
	switch target {
	case ErrResolution:
		return true
	case ErrCircularReference:
		return e.IsCircular()
	case ErrMissingReference:
		return e.IsMissing
	case ErrTooManyRedirects:
		return e.IsRedirectLoop
	}
	return false
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "ref_depth", "cached_documents", "file_size", "redirects"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
