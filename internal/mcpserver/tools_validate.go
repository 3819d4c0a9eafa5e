package mcpserver

import (
	"context"
	"fmt"

	"github.com/erraggy/oaskit/internal/options"
	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/validator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateValueInput struct {
	Spec          specInput `json:"spec"                     jsonschema:"The OAS document holding the schema"`
	Schema        string    `json:"schema"                   jsonschema:"Reference expression of the schema, e.g. #/components/schemas/Pet"`
	Value         any       `json:"value,omitempty"          jsonschema:"The JSON value to validate. Omit to validate null or when value_content is set"`
	ValueContent  string    `json:"value_content,omitempty"  jsonschema:"The value to validate as JSON or YAML text"`
	FastFail      *bool     `json:"fast_fail,omitempty"      jsonschema:"Stop at the first error"`
	StrictFormats *bool     `json:"strict_formats,omitempty" jsonschema:"Report format violations as errors instead of warnings"`
	Mode          string    `json:"mode,omitempty"           jsonschema:"request or response: enforce readOnly or writeOnly properties"`
	Redact        *bool     `json:"redact,omitempty"         jsonschema:"Omit data values from messages"`
	NoWarnings    *bool     `json:"no_warnings,omitempty"    jsonschema:"Suppress warnings from output"`
	Offset        int       `json:"offset,omitempty"         jsonschema:"Skip the first N errors/warnings (for pagination)"`
	Limit         int       `json:"limit,omitempty"          jsonschema:"Maximum number of errors/warnings to return (default 100). Applied independently to errors and warnings arrays."`
}

type validateIssue struct {
	DataPath   string `json:"data_path"`
	SchemaPath string `json:"schema_path"`
	Keyword    string `json:"keyword"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

type validateValueOutput struct {
	Valid        bool            `json:"valid"`
	Schema       string          `json:"schema"`
	ErrorCount   int             `json:"error_count"`
	WarningCount int             `json:"warning_count"`
	Returned     int             `json:"returned"`
	Errors       []validateIssue `json:"errors,omitempty"`
	Warnings     []validateIssue `json:"warnings,omitempty"`
}

// validatorOptions applies config defaults when input fields are omitted (nil).
func (in validateValueInput) validatorOptions() ([]validator.Option, error) {
	fastFail := cfg.ValidateFastFail
	if in.FastFail != nil {
		fastFail = *in.FastFail
	}
	strict := cfg.ValidateStrictFormats
	if in.StrictFormats != nil {
		strict = *in.StrictFormats
	}
	redact := cfg.ValidateRedact
	if in.Redact != nil {
		redact = *in.Redact
	}

	var flags []validator.Flag
	if strict {
		flags = append(flags, validator.FlagStrictFormats)
	}
	switch in.Mode {
	case "":
	case "request":
		flags = append(flags, validator.FlagRequestMode)
	case "response":
		flags = append(flags, validator.FlagResponseMode)
	default:
		return nil, fmt.Errorf("invalid mode %q; valid values: request, response", in.Mode)
	}

	return []validator.Option{
		validator.WithFastFail(fastFail),
		validator.WithRedactValues(redact),
		validator.WithFlags(flags...),
	}, nil
}

// value returns the value to validate, decoding value_content when set.
func (in validateValueInput) value() (any, error) {
	if in.ValueContent == "" {
		return in.Value, nil
	}
	if err := options.ValidateSingleInputSource([]string{"value", "value_content"}, in.Value != nil, true); err != nil {
		return nil, err
	}
	if int64(len(in.ValueContent)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("value_content size %d bytes exceeds maximum %d bytes", len(in.ValueContent), cfg.MaxInlineSize)
	}
	v, err := loader.DefaultCodec{}.Decode([]byte(in.ValueContent))
	if err != nil {
		return nil, err
	}
	if loader.IsMissing(v) {
		return nil, nil
	}
	return v, nil
}

func toIssues(items []validator.Item) []validateIssue {
	out := makeSlice[validateIssue](len(items))
	for _, item := range items {
		out = append(out, validateIssue{
			DataPath:   item.DataPath,
			SchemaPath: item.SchemaPath,
			Keyword:    item.Keyword,
			Code:       item.Code,
			Message:    item.Message,
		})
	}
	return out
}

func handleValidateValue(ctx context.Context, _ *mcp.CallToolRequest, input validateValueInput) (*mcp.CallToolResult, validateValueOutput, error) {
	if input.Schema == "" {
		return errResult(fmt.Errorf("schema is required")), validateValueOutput{}, nil
	}
	opts, err := input.validatorOptions()
	if err != nil {
		return errResult(err), validateValueOutput{}, nil
	}
	value, err := input.value()
	if err != nil {
		return errResult(err), validateValueOutput{}, nil
	}
	noWarnings := cfg.ValidateNoWarnings
	if input.NoWarnings != nil {
		noWarnings = *input.NoWarnings
	}

	reg, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateValueOutput{}, nil
	}
	node, err := validator.CompileRef(reg, input.Schema, opts...)
	if err != nil {
		return errResult(err), validateValueOutput{}, nil
	}

	result := node.Validate(value)
	errs := result.Errors()
	output := validateValueOutput{
		Valid:      result.Valid(),
		Schema:     node.Ref(),
		ErrorCount: len(errs),
		Errors:     paginate(toIssues(errs), input.Offset, input.Limit),
	}
	if !noWarnings {
		warnings := result.Warnings()
		output.WarningCount = len(warnings)
		output.Warnings = paginate(toIssues(warnings), input.Offset, input.Limit)
	}
	output.Returned = len(output.Errors) + len(output.Warnings)

	return nil, output, nil
}
