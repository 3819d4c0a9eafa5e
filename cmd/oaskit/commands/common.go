// Package commands provides CLI command handlers for oaskit.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/erraggy/oaskit"
	"github.com/erraggy/oaskit/internal/cliutil"
	"github.com/erraggy/oaskit/loader"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ErrFailed is returned when a command ran to completion but found errors.
// The CLI exits with status 1 without printing it.
var ErrFailed = errors.New("commands: validation failed")

// Output streams. Tests swap these for buffers.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
	Stdin  io.Reader = os.Stdin
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to Stdout.
// Returns an error if marshaling fails.
func OutputStructured(data any, format string) error {
	return cliutil.WriteStructured(Stdout, data, format)
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// OutputHeader writes the common command header to Stderr.
func OutputHeader(title, specPath string) {
	cliutil.Writef(Stderr, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	cliutil.Writef(Stderr, "oaskit version: %s\n", oaskit.Version())
	cliutil.Writef(Stderr, "Specification: %s\n", FormatSpecPath(specPath))
}

// NewLogger returns the logger shared by the loader and resolver. Verbose
// mode logs debug records as text to Stderr; otherwise logging is off.
func NewLogger(verbose bool) loader.Logger {
	if !verbose {
		return loader.NopLogger{}
	}
	handler := slog.NewTextHandler(Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return loader.NewSlogAdapter(slog.New(handler))
}

// NewLoader builds a document loader with the given logger.
func NewLoader(logger loader.Logger, maxFileSize int64) (*loader.Loader, error) {
	opts := []loader.Option{loader.WithLogger(logger)}
	if maxFileSize > 0 {
		opts = append(opts, loader.WithMaxFileSize(maxFileSize))
	}
	return loader.New(opts...)
}

// LoadValue loads a data value from a file, URL, or Stdin when path is
// StdinFilePath.
func LoadValue(ctx context.Context, l *loader.Loader, path string) (any, error) {
	if path != StdinFilePath {
		v, err := l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		if loader.IsMissing(v) {
			return nil, nil
		}
		return v, nil
	}

	data, err := io.ReadAll(io.LimitReader(Stdin, l.MaxFileSize()+1))
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if int64(len(data)) > l.MaxFileSize() {
		return nil, fmt.Errorf("stdin exceeds maximum size %s", loader.FormatBytes(l.MaxFileSize()))
	}
	v, err := loader.DefaultCodec{}.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding stdin: %w", err)
	}
	if loader.IsMissing(v) {
		return nil, nil
	}
	return v, nil
}

// CommonFlags are shared by the commands that load documents.
type CommonFlags struct {
	Format      string
	Verbose     bool
	Quiet       bool
	MaxFileSize int64
}

// addCommonFlags binds CommonFlags to fs.
func addCommonFlags(fs *flag.FlagSet, flags *CommonFlags) {
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log loader and resolver activity to stderr")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the result, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the result, no diagnostic messages")
	fs.Int64Var(&flags.MaxFileSize, "max-file-size", 0, "maximum size in bytes of a loaded document (default 10 MiB)")
}
