package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/oaskit/internal/cliutil"
	"github.com/erraggy/oaskit/refs"
	"github.com/erraggy/oaskit/validator"
)

// ExamplesFlags contains flags for the examples command
type ExamplesFlags struct {
	CommonFlags
	StrictFormats bool
	NoWarnings    bool
}

// SetupExamplesFlags creates and configures a FlagSet for the examples command.
// Returns the FlagSet and an ExamplesFlags struct with bound flag variables.
func SetupExamplesFlags() (*flag.FlagSet, *ExamplesFlags) {
	fs := flag.NewFlagSet("examples", flag.ContinueOnError)
	flags := &ExamplesFlags{}

	addCommonFlags(fs, &flags.CommonFlags)
	fs.BoolVar(&flags.StrictFormats, "strict-formats", false, "report format violations as errors instead of warnings")
	fs.BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warning messages (only show errors)")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oaskit examples [flags] <file|url>\n\n")
		cliutil.Writef(fs.Output(), "Validate every example and examples value of the document against the schema\nthat carries it or, for parameters, headers and media types, the schema next\nto it.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oaskit examples openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oaskit examples --format json openapi.yaml | jq '.[] | select(.valid == false)'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    All examples are valid\n")
		cliutil.Writef(fs.Output(), "  1    At least one example is invalid\n")
	}

	return fs, flags
}

// ExampleOutput is the structured output for one example.
type ExampleOutput struct {
	Schema   string        `json:"schema"   yaml:"schema"`
	Example  string        `json:"example"  yaml:"example"`
	Location string        `json:"location" yaml:"location"`
	Valid    bool          `json:"valid"    yaml:"valid"`
	Issues   []IssueOutput `json:"issues"   yaml:"issues"`
}

// HandleExamples executes the examples command
func HandleExamples(args []string) error {
	fs, flags := SetupExamplesFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("examples command requires exactly one file path or URL")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	specPath := fs.Arg(0)
	logger := NewLogger(flags.Verbose)
	l, err := NewLoader(logger, flags.MaxFileSize)
	if err != nil {
		return err
	}
	reg, err := refs.ResolveAll(context.Background(), l, specPath, nil, refs.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", specPath, err)
	}

	var opts []validator.Option
	if flags.StrictFormats {
		opts = append(opts, validator.WithFlags(validator.FlagStrictFormats))
	}
	results, err := validator.ValidateExamples(reg, opts...)
	if err != nil {
		return err
	}

	output := make([]ExampleOutput, 0, len(results))
	invalid := 0
	for _, r := range results {
		if !r.Results.Valid() {
			invalid++
		}
		output = append(output, ExampleOutput{
			Schema:   r.Schema,
			Example:  r.Example,
			Location: r.Location,
			Valid:    r.Results.Valid(),
			Issues:   newIssueOutputs(r.Results.Items(), flags.NoWarnings),
		})
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(output, flags.Format); err != nil {
			return err
		}
	} else {
		if !flags.Quiet {
			OutputHeader("OpenAPI Example Validator", specPath)
			cliutil.Writef(Stderr, "Examples: %d\n\n", len(output))
		}
		for _, r := range results {
			mark := "✓"
			if !r.Results.Valid() {
				mark = "✗"
			}
			cliutil.Writef(Stdout, "%s %s (%s)\n", mark, r.Schema, r.Example)
			for _, item := range r.Results.Items() {
				if flags.NoWarnings && item.Severity == validator.SeverityWarning {
					continue
				}
				cliutil.Writef(Stdout, "  %s\n", item.String())
			}
		}
		if !flags.Quiet {
			if invalid == 0 {
				cliutil.Writef(Stderr, "\n✓ All %d example(s) are valid\n", len(output))
			} else {
				cliutil.Writef(Stderr, "\n✗ %d of %d example(s) are invalid\n", invalid, len(output))
			}
		}
	}

	if invalid > 0 {
		return ErrFailed
	}
	return nil
}
