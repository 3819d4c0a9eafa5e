package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/erraggy/oaskit/internal/cliutil"
	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/refs"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	CommonFlags
	Keyword      string
	Concurrency  int
	MaxDocuments int
	MaxDepth     int
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
// Returns the FlagSet and a ResolveFlags struct with bound flag variables.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	addCommonFlags(fs, &flags.CommonFlags)
	fs.StringVar(&flags.Keyword, "keyword", "", "resolve only this reference keyword (default: $ref, operationRef and discriminator mappings)")
	fs.IntVar(&flags.Concurrency, "concurrency", refs.DefaultConcurrency, "documents fetched in parallel per discovery level")
	fs.IntVar(&flags.MaxDocuments, "max-documents", refs.MaxCachedDocuments, "maximum number of documents loaded")
	fs.IntVar(&flags.MaxDepth, "max-depth", refs.MaxRefDepth, "maximum length of a reference chain")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oaskit resolve [flags] <file|url>\n\n")
		cliutil.Writef(fs.Output(), "Resolve every reference of an OpenAPI document, following references into\nother files and URLs, and list the registered references.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oaskit resolve openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oaskit resolve --keyword x-ref openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oaskit resolve --format json https://example.com/openapi.yaml | jq '.references[].ref'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    All references resolved\n")
		cliutil.Writef(fs.Output(), "  1    A document could not be loaded or a reference could not be resolved\n")
	}

	return fs, flags
}

// ResolvedRef is one reference in the resolve command output.
type ResolvedRef struct {
	Ref      string `json:"ref"      yaml:"ref"`
	Expr     string `json:"expr"     yaml:"expr"`
	Document string `json:"document" yaml:"document"`
}

// ResolveOutput is the structured output of the resolve command.
type ResolveOutput struct {
	BaseURI    string        `json:"base_uri"   yaml:"base_uri"`
	Documents  []string      `json:"documents"  yaml:"documents"`
	References []ResolvedRef `json:"references" yaml:"references"`
}

// HandleResolve executes the resolve command
func HandleResolve(args []string) error {
	fs, flags := SetupResolveFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("resolve command requires exactly one file path or URL")
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

	opts := []refs.Option{
		refs.WithLogger(logger),
		refs.WithConcurrency(flags.Concurrency),
		refs.WithMaxCachedDocuments(flags.MaxDocuments),
		refs.WithMaxRefDepth(flags.MaxDepth),
	}

	startTime := time.Now()
	reg, err := resolveRegistry(context.Background(), l, specPath, flags.Keyword, opts)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", FormatSpecPath(specPath), err)
	}
	totalTime := time.Since(startTime)

	output := ResolveOutput{
		BaseURI:    reg.BaseURI(),
		Documents:  reg.Documents(),
		References: make([]ResolvedRef, 0, reg.Len()),
	}
	for _, key := range reg.Keys() {
		ref, ok := reg.Get(key)
		if !ok {
			continue
		}
		output.References = append(output.References, ResolvedRef{
			Ref:      ref.CanonicalRef(),
			Expr:     ref.RefExpr(),
			Document: ref.DocumentURL(),
		})
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		return OutputStructured(output, flags.Format)
	}

	if !flags.Quiet {
		OutputHeader("OpenAPI Reference Resolver", specPath)
		cliutil.Writef(Stderr, "Documents: %d\n", len(output.Documents))
		cliutil.Writef(Stderr, "Total Time: %v\n\n", totalTime)
	}
	for _, r := range output.References {
		cliutil.Writef(Stdout, "%s\n", r.Ref)
	}
	if !flags.Quiet {
		cliutil.Writef(Stderr, "\n✓ Resolved %d reference(s) across %d document(s)\n", len(output.References), len(output.Documents))
	}
	return nil
}

// resolveRegistry resolves all reference families, or only keyword when set.
func resolveRegistry(ctx context.Context, l *loader.Loader, specPath, keyword string, opts []refs.Option) (*refs.Registry, error) {
	if keyword == "" {
		return refs.ResolveAll(ctx, l, specPath, nil, opts...)
	}
	r, err := refs.NewResolver(l, append(opts, refs.WithKeyword(keyword))...)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, specPath, nil)
}
