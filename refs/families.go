package refs

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oaskit/internal/pathutil"
	"github.com/erraggy/oaskit/loader"
)

// Family describes one keyword whose string values are reference expressions.
type Family struct {
	// Keyword is the object key holding the expression.
	Keyword string
	// AuxField is the key the canonical reference is written to.
	AuxField string
	// mapping marks the discriminator mapping family, whose keyword holds a
	// map of names to expressions rather than a single expression.
	mapping bool
}

// Keyword families resolved by ResolveAll.
var (
	FamilyRef          = Family{Keyword: "$ref", AuxField: "$$ref"}
	FamilyOperationRef = Family{Keyword: "operationRef", AuxField: "$$operationRef"}
	FamilyMapping      = Family{Keyword: "mapping", AuxField: "$$mapping", mapping: true}
)

// KeywordFamily returns a Family for a custom keyword. The canonical reference
// is written to "$$" followed by the keyword without its leading '$'.
func KeywordFamily(keyword string) Family {
	return Family{Keyword: keyword, AuxField: "$$" + strings.TrimPrefix(keyword, "$")}
}

// site is one place in a tree holding a reference expression.
type site struct {
	node map[string]any
	expr string
	// name is the mapping key for the mapping family.
	name string
}

// collect appends every site below node in sorted key order.
func (f Family) collect(node any, parentKey string, out []site) []site {
	switch n := node.(type) {
	case map[string]any:
		if f.mapping {
			if parentKey == "discriminator" {
				if m, ok := n[f.Keyword].(map[string]any); ok {
					for _, name := range slices.Sorted(maps.Keys(m)) {
						if s, ok := m[name].(string); ok {
							out = append(out, site{node: n, expr: MappingExpr(s), name: name})
						}
					}
				}
			}
		} else if s, ok := n[f.Keyword].(string); ok {
			out = append(out, site{node: n, expr: s})
		}
		for _, k := range slices.Sorted(maps.Keys(n)) {
			if strings.HasPrefix(k, "$$") {
				continue
			}
			out = f.collect(n[k], k, out)
		}
	case []any:
		for _, item := range n {
			out = f.collect(item, "", out)
		}
	}
	return out
}

// record writes the canonical reference of s into its node.
func (f Family) record(s site, canonical string) {
	if !f.mapping {
		s.node[f.AuxField] = canonical
		return
	}
	aux, ok := s.node[f.AuxField].(map[string]any)
	if !ok {
		aux = make(map[string]any)
		s.node[f.AuxField] = aux
	}
	aux[s.name] = canonical
}

// chained returns the canonical reference held by a target that is itself a
// reference, if any.
func (f Family) chained(target any) (string, bool) {
	m, ok := target.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[f.AuxField].(string)
	return s, ok
}

// MappingExpr turns a discriminator mapping value into a reference expression.
// Values without '#' or '/' that do not name a JSON or YAML file are schema
// names under components/schemas.
func MappingExpr(value string) string {
	if strings.ContainsAny(value, "#/") {
		return value
	}
	lower := strings.ToLower(value)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(lower, ext) {
			return value
		}
	}
	return pathutil.SchemaRef(value)
}

// ResolveAll resolves the $ref, operationRef and discriminator mapping
// families over one shared set of documents and merges their registries.
// doc may be nil, in which case baseURL is loaded. When a later family loads
// documents no earlier family reached, all families run again so that every
// family covers every loaded document.
func ResolveAll(ctx context.Context, l *loader.Loader, baseURL string, doc any, opts ...Option) (*Registry, error) {
	families := []Family{FamilyRef, FamilyOperationRef, FamilyMapping}
	resolvers := make([]*Resolver, len(families))
	for i, family := range families {
		r, err := NewResolver(l, append(slices.Clone(opts), WithFamily(family))...)
		if err != nil {
			return nil, err
		}
		resolvers[i] = r
	}

	var docs *documentSet
	for {
		var merged *Registry
		loaded := 0
		for i, r := range resolvers {
			reg, set, err := r.resolve(ctx, baseURL, doc, docs)
			if err != nil {
				return nil, err
			}
			docs = set
			if i == 0 {
				loaded = docs.len()
			}
			if merged == nil {
				merged = reg
				continue
			}
			merged.Merge(reg)
		}
		if docs.len() == loaded {
			return merged, nil
		}
	}
}
