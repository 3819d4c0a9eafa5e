// Package cliutil provides output helpers for the oaskit CLI.
package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteStructured marshals data as "json" (indented) or "yaml" and writes it
// to w followed by a single newline.
func WriteStructured(w io.Writer, data any, format string) error {
	var out []byte
	var err error

	switch format {
	case "json":
		out, err = json.MarshalIndent(data, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", strings.TrimRight(string(out), "\n"))
	return nil
}
