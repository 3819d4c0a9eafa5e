package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/erraggy/oaskit/internal/cliutil"
	"github.com/erraggy/oaskit/refs"
	"github.com/erraggy/oaskit/validator"
	"golang.org/x/text/language"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	CommonFlags
	FastFail      bool
	StrictFormats bool
	Mode          string
	Redact        bool
	NoWarnings    bool
	Lang          string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	addCommonFlags(fs, &flags.CommonFlags)
	fs.BoolVar(&flags.FastFail, "fast-fail", false, "stop at the first error")
	fs.BoolVar(&flags.StrictFormats, "strict-formats", false, "report format violations as errors instead of warnings")
	fs.StringVar(&flags.Mode, "mode", "", "request or response: reject readOnly or writeOnly properties")
	fs.BoolVar(&flags.Redact, "redact", false, "omit data values from messages")
	fs.BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warning messages (only show errors)")
	fs.StringVar(&flags.Lang, "lang", "en", "language of messages (BCP 47 tag, e.g. en or de)")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oaskit validate [flags] <file|url>#<pointer> <data-file|url|->\n\n")
		cliutil.Writef(fs.Output(), "Validate a JSON or YAML data value against a schema of an OpenAPI document.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nOutput Formats:\n")
		cliutil.Writef(fs.Output(), "  text (default)  Human-readable text output\n")
		cliutil.Writef(fs.Output(), "  json            JSON format for programmatic processing\n")
		cliutil.Writef(fs.Output(), "  yaml            YAML format for programmatic processing\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oaskit validate 'openapi.yaml#/components/schemas/Pet' pet.json\n")
		cliutil.Writef(fs.Output(), "  cat pet.yaml | oaskit validate -q 'openapi.yaml#/components/schemas/Pet' -\n")
		cliutil.Writef(fs.Output(), "  oaskit validate --mode request --fast-fail 'openapi.yaml#/components/schemas/Pet' pet.json\n")
		cliutil.Writef(fs.Output(), "  oaskit validate --format json 'openapi.yaml#/components/schemas/Pet' pet.json | jq '.valid'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Validation successful\n")
		cliutil.Writef(fs.Output(), "  1    Validation failed with errors\n")
	}

	return fs, flags
}

// Options converts the flags into validator options.
func (f *ValidateFlags) Options() ([]validator.Option, error) {
	var vflags []validator.Flag
	if f.StrictFormats {
		vflags = append(vflags, validator.FlagStrictFormats)
	}
	switch f.Mode {
	case "":
	case "request":
		vflags = append(vflags, validator.FlagRequestMode)
	case "response":
		vflags = append(vflags, validator.FlagResponseMode)
	default:
		return nil, fmt.Errorf("invalid mode '%s'. Valid modes: request, response", f.Mode)
	}

	tag, err := language.Parse(f.Lang)
	if err != nil {
		return nil, fmt.Errorf("invalid lang '%s': %w", f.Lang, err)
	}

	return []validator.Option{
		validator.WithFlags(vflags...),
		validator.WithFastFail(f.FastFail),
		validator.WithRedactValues(f.Redact),
		validator.WithLanguage(tag),
	}, nil
}

// IssueOutput is one validation finding in structured output.
type IssueOutput struct {
	Severity   string `json:"severity"    yaml:"severity"`
	Code       int    `json:"code"        yaml:"code"`
	Keyword    string `json:"keyword"     yaml:"keyword"`
	DataPath   string `json:"data_path"   yaml:"data_path"`
	SchemaPath string `json:"schema_path" yaml:"schema_path"`
	Message    string `json:"message"     yaml:"message"`
}

// ValidateOutput is the structured output of the validate command.
type ValidateOutput struct {
	Schema       string        `json:"schema"        yaml:"schema"`
	Valid        bool          `json:"valid"         yaml:"valid"`
	ErrorCount   int           `json:"error_count"   yaml:"error_count"`
	WarningCount int           `json:"warning_count" yaml:"warning_count"`
	Issues       []IssueOutput `json:"issues"        yaml:"issues"`
}

// splitSchemaTarget splits "<spec>#<pointer>" into the document and the
// reference expression of the schema.
func splitSchemaTarget(target string) (string, string, error) {
	spec, pointer, ok := strings.Cut(target, "#")
	if !ok || spec == "" || pointer == "" {
		return "", "", fmt.Errorf("schema target %q must have the form <file|url>#<pointer>", target)
	}
	return spec, "#" + pointer, nil
}

// newIssueOutputs converts validator items, dropping warnings when requested.
func newIssueOutputs(items []validator.Item, noWarnings bool) []IssueOutput {
	out := make([]IssueOutput, 0, len(items))
	for _, item := range items {
		if noWarnings && item.Severity == validator.SeverityWarning {
			continue
		}
		out = append(out, IssueOutput{
			Severity:   item.Severity.String(),
			Code:       item.Code,
			Keyword:    item.Keyword,
			DataPath:   item.DataPath,
			SchemaPath: item.SchemaPath,
			Message:    item.Message,
		})
	}
	return out
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("validate command requires a schema target and a data file, URL, or '-' for stdin")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	specPath, expr, err := splitSchemaTarget(fs.Arg(0))
	if err != nil {
		return err
	}
	opts, err := flags.Options()
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := NewLogger(flags.Verbose)
	l, err := NewLoader(logger, flags.MaxFileSize)
	if err != nil {
		return err
	}

	startTime := time.Now()
	reg, err := refs.ResolveAll(ctx, l, specPath, nil, refs.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", specPath, err)
	}
	node, err := validator.CompileRef(reg, expr, opts...)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", expr, err)
	}
	value, err := LoadValue(ctx, l, fs.Arg(1))
	if err != nil {
		return fmt.Errorf("loading %s: %w", FormatSpecPath(fs.Arg(1)), err)
	}
	result := node.Validate(value)
	totalTime := time.Since(startTime)

	output := ValidateOutput{
		Schema:     node.Ref(),
		Valid:      result.Valid(),
		ErrorCount: len(result.Errors()),
		Issues:     newIssueOutputs(result.Items(), flags.NoWarnings),
	}
	if !flags.NoWarnings {
		output.WarningCount = len(result.Warnings())
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(output, flags.Format); err != nil {
			return err
		}
	} else {
		if !flags.Quiet {
			OutputHeader("OpenAPI Schema Validator", specPath)
			cliutil.Writef(Stderr, "Schema: %s\n", output.Schema)
			cliutil.Writef(Stderr, "Data: %s\n", FormatSpecPath(fs.Arg(1)))
			cliutil.Writef(Stderr, "Total Time: %v\n\n", totalTime)
		}
		writeItems(result.Items(), flags.NoWarnings)
		if !flags.Quiet {
			writeSummary(output.ErrorCount, output.WarningCount)
		}
	}

	if !output.Valid {
		return ErrFailed
	}
	return nil
}

// writeItems writes one item per line to Stdout.
func writeItems(items []validator.Item, noWarnings bool) {
	for _, item := range items {
		if noWarnings && item.Severity == validator.SeverityWarning {
			continue
		}
		cliutil.Writef(Stdout, "%s\n", item.String())
	}
}

func writeSummary(errorCount, warningCount int) {
	if errorCount == 0 {
		cliutil.Writef(Stderr, "\n✓ Validation passed")
		if warningCount > 0 {
			cliutil.Writef(Stderr, " with %d warning(s)", warningCount)
		}
		cliutil.Writef(Stderr, "\n")
		return
	}
	cliutil.Writef(Stderr, "\n✗ Validation failed: %d error(s)", errorCount)
	if warningCount > 0 {
		cliutil.Writef(Stderr, ", %d warning(s)", warningCount)
	}
	cliutil.Writef(Stderr, "\n")
}
