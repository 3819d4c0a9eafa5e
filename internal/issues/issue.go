// Package issues provides the item type reported by schema validation.
package issues

import (
	"fmt"

	"github.com/erraggy/oaskit/internal/severity"
)

// Issue represents a single finding produced while validating a value.
type Issue struct {
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Code is a stable numeric identifier for programmatic matching (0 if none)
	Code int
	// Message is a human-readable description of the issue
	Message string
	// DataPath is the breadcrumb into the validated value (e.g., "pets[0].name")
	DataPath string
	// SchemaPath locates the keyword in the schema as a JSON Pointer, prefixed
	// by the reference the schema was compiled from (e.g.,
	// "#/components/schemas/Pet/properties/name/maxLength")
	SchemaPath string
	// Keyword is the schema keyword that produced the issue
	Keyword string
	// Value is the offending value; nil when values are redacted
	Value any
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}

	path := i.DataPath
	if path == "" {
		path = "$"
	}
	result := fmt.Sprintf("%s %s: %s", symbol, path, i.Message)
	if i.Code != 0 {
		result += fmt.Sprintf(" [%d]", i.Code)
	}
	if i.SchemaPath != "" {
		result += fmt.Sprintf("\n    Schema: %s", i.SchemaPath)
	}
	return result
}
