package mcpserver

import (
	"context"
	"strings"

	"github.com/erraggy/oaskit/refs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type resolveInput struct {
	Spec    specInput `json:"spec"               jsonschema:"The OAS document to resolve"`
	Target  string    `json:"target,omitempty"   jsonschema:"Filter canonical refs by substring or * glob pattern"`
	GroupBy string    `json:"group_by,omitempty" jsonschema:"Group results and return counts instead of refs. Allowed values: document"`
	Offset  int       `json:"offset,omitempty"   jsonschema:"Skip the first N refs (for pagination)"`
	Limit   int       `json:"limit,omitempty"    jsonschema:"Maximum number of refs to return (default 100)"`
}

type refSummary struct {
	Ref      string `json:"ref"`
	Expr     string `json:"expr"`
	Document string `json:"document"`
	Resolved bool   `json:"resolved"`
}

type resolveOutput struct {
	BaseURI   string       `json:"base_uri"`
	Documents []string     `json:"documents"`
	Total     int          `json:"total"`
	Matched   int          `json:"matched"`
	Returned  int          `json:"returned"`
	Refs      []refSummary `json:"refs,omitempty"`
	Groups    []groupCount `json:"groups,omitempty"`
}

var resolveGroupBy = []string{"document"}

func handleResolve(ctx context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, resolveOutput, error) {
	if err := validateGroupBy(input.GroupBy, resolveGroupBy); err != nil {
		return errResult(err), resolveOutput{}, nil
	}
	if err := validateGlobPattern(input.Target); err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	reg, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), resolveOutput{}, nil
	}

	keys := reg.Keys()
	matched := makeSlice[*refs.Reference](len(keys))
	for _, key := range keys {
		if !matchRefGlob(input.Target, key) {
			continue
		}
		if ref, ok := reg.Get(key); ok {
			matched = append(matched, ref)
		}
	}

	output := resolveOutput{
		BaseURI:   reg.BaseURI(),
		Documents: reg.Documents(),
		Total:     reg.Len(),
		Matched:   len(matched),
	}

	if strings.EqualFold(input.GroupBy, "document") {
		output.Groups = groupAndSort(matched, func(r *refs.Reference) []string {
			return []string{r.DocumentURL()}
		})
		output.Returned = len(output.Groups)
		return nil, output, nil
	}

	page := paginate(matched, input.Offset, input.Limit)
	output.Refs = makeSlice[refSummary](len(page))
	for _, ref := range page {
		output.Refs = append(output.Refs, refSummary{
			Ref:      ref.CanonicalRef(),
			Expr:     ref.RefExpr(),
			Document: ref.DocumentURL(),
			Resolved: ref.IsResolved(),
		})
	}
	output.Returned = len(output.Refs)
	return nil, output, nil
}
