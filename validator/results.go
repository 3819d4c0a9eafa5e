package validator

import (
	"fmt"
	"strings"

	"github.com/erraggy/oaskit/internal/issues"
	"github.com/erraggy/oaskit/internal/severity"
	"github.com/erraggy/oaskit/oaserrors"
)

// Item is a single validation finding.
// This is an alias to issues.Issue so all oaskit packages report the same type.
type Item = issues.Issue

// Severity levels for validation items.
type Severity = severity.Severity

// Severity constants re-exported for convenience.
const (
	SeverityNone    = severity.SeverityNone
	SeverityInfo    = severity.SeverityInfo
	SeverityWarning = severity.SeverityWarning
	SeverityError   = severity.SeverityError
)

// Results collects the items of one validation in the order they were found.
type Results struct {
	items    []Item
	severity Severity
}

// Valid reports whether no item has Error severity.
func (r *Results) Valid() bool {
	return r == nil || !r.severity.Blocking()
}

// Severity returns the highest severity of all items.
func (r *Results) Severity() Severity {
	if r == nil {
		return SeverityNone
	}
	return r.severity
}

// Items returns all items.
func (r *Results) Items() []Item {
	if r == nil {
		return nil
	}
	return r.items
}

// Errors returns the items with Error severity.
func (r *Results) Errors() []Item {
	return r.filter(SeverityError)
}

// Warnings returns the items with Warning severity.
func (r *Results) Warnings() []Item {
	return r.filter(SeverityWarning)
}

func (r *Results) filter(s Severity) []Item {
	if r == nil {
		return nil
	}
	var out []Item
	for _, item := range r.items {
		if item.Severity == s {
			out = append(out, item)
		}
	}
	return out
}

// Codes returns the code of every item, in order.
func (r *Results) Codes() []int {
	if r == nil {
		return nil
	}
	codes := make([]int, len(r.items))
	for i, item := range r.items {
		codes[i] = item.Code
	}
	return codes
}

// String renders one item per line.
func (r *Results) String() string {
	if r == nil || len(r.items) == 0 {
		return "valid"
	}
	var b strings.Builder
	for i, item := range r.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(item.String())
	}
	return b.String()
}

func (r *Results) add(item Item) {
	r.items = append(r.items, item)
	r.severity = severity.Max(r.severity, item.Severity)
}

func (r *Results) merge(other *Results) {
	for _, item := range other.items {
		r.add(item)
	}
}

// ValidationError is returned by ValidateOrThrow for an invalid value.
type ValidationError struct {
	Results *Results
}

// Error returns a summary naming the first error.
func (e *ValidationError) Error() string {
	errs := e.Results.Errors()
	switch len(errs) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + describeItem(errs[0])
	default:
		return fmt.Sprintf("validation failed with %d errors, first: %s", len(errs), describeItem(errs[0]))
	}
}

// Is reports whether target is oaserrors.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == oaserrors.ErrValidation
}

func describeItem(item Item) string {
	if item.DataPath == "" {
		return item.Message
	}
	return item.DataPath + ": " + item.Message
}
