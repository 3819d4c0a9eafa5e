// Package severity provides severity level constants and utilities
// for items reported by the validator package.
//
// The severity levels are ordered from least to most severe:
// None < Info < Warning < Error
//
// A result set is valid while its aggregate severity stays below Error.
package severity

// Severity indicates the severity level of a validation item.
type Severity int

const (
	// SeverityNone is the aggregate severity of an empty result set.
	SeverityNone Severity = iota

	// SeverityInfo indicates informational messages.
	SeverityInfo

	// SeverityWarning indicates actionable but non-blocking findings,
	// such as unknown or unchecked string formats.
	SeverityWarning

	// SeverityError indicates a constraint violation that makes the value invalid.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Max returns the more severe of a and b.
func Max(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}

// Blocking reports whether s makes a result set invalid.
func (s Severity) Blocking() bool {
	return s >= SeverityError
}
