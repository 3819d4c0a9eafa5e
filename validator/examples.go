package validator

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oaskit/internal/pathutil"
	"github.com/erraggy/oaskit/refs"
)

// ExampleResult is the outcome of validating one example value.
type ExampleResult struct {
	// Schema is the pointer of the schema the example is validated against.
	Schema string
	// Example names the example relative to the object carrying it:
	// "example", "examples/<index>" for schemas or "examples/<name>" for
	// parameters, headers and media types.
	Example string
	// Location is the pointer of the example value in the base document.
	Location string
	// Results holds the findings for the example value.
	Results *Results
}

// ValidateExamples validates every example value embedded in the registry's
// base document. Schemas under components/schemas are walked with their
// nested property, item and composition schemas; elsewhere every schema of a
// parameter, header or media type is walked the same way, and the example
// and examples of the object owning the schema are validated against it.
// All schemas are compiled into one shared arena.
func ValidateExamples(reg *refs.Registry, opts ...Option) ([]ExampleResult, error) {
	if reg == nil {
		return nil, fmt.Errorf("validator: registry is required to validate examples")
	}
	e, err := newEnv(reg, opts)
	if err != nil {
		return nil, err
	}
	doc, ok := reg.Document(reg.BaseURI())
	if !ok {
		return nil, nil
	}

	w := &exampleWalker{reg: reg}
	w.walk(doc, "#")

	var out []ExampleResult
	for _, es := range w.sites {
		canonical, err := refs.Canonicalize(reg.BaseURI(), es.pointer)
		if err != nil {
			return nil, err
		}
		n, err := e.refNode(canonical)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		for _, ex := range es.examples {
			s := &scope{env: e, out: &Results{}, fast: e.cfg.fastFail}
			n.eval(ex.value, s)
			out = append(out, ExampleResult{
				Schema:   es.pointer,
				Example:  ex.name,
				Location: ex.location,
				Results:  s.out,
			})
		}
	}
	return out, nil
}

type namedExample struct {
	name     string
	location string
	value    any
}

type exampleSite struct {
	pointer  string
	examples []namedExample
}

// exampleWalker finds the schemas of a document that carry or are paired
// with examples.
type exampleWalker struct {
	reg   *refs.Registry
	sites []exampleSite
}

// skipExampleKeys hold data values, never schemas.
var skipExampleKeys = map[string]bool{
	"example":  true,
	"examples": true,
	"default":  true,
	"enum":     true,
	"const":    true,
}

func (w *exampleWalker) walk(node any, pointer string) {
	switch v := node.(type) {
	case map[string]any:
		if pointer == "#/components/schemas" {
			for _, name := range slices.Sorted(maps.Keys(v)) {
				w.sites = collectExamples(v[name], pointer+"/"+pathutil.EscapePointerToken(name), w.sites)
			}
			return
		}
		if schema, ok := v["schema"].(map[string]any); ok {
			schemaPtr := pointer + "/schema"
			w.sites = collectExamples(schema, schemaPtr, w.sites)
			if examples := w.ownerExamples(v, pointer); len(examples) > 0 {
				w.sites = append(w.sites, exampleSite{pointer: schemaPtr, examples: examples})
			}
		}
		for _, key := range slices.Sorted(maps.Keys(v)) {
			if key == "schema" || skipExampleKeys[key] || strings.HasPrefix(key, "x-") || strings.HasPrefix(key, "$") {
				continue
			}
			w.walk(v[key], pointer+"/"+pathutil.EscapePointerToken(key))
		}
	case []any:
		for i, item := range v {
			w.walk(item, pointer+"/"+strconv.Itoa(i))
		}
	}
}

// ownerExamples returns the example and the Example Objects of a parameter,
// header or media type. Example Objects may be references; those without an
// inline value are skipped.
func (w *exampleWalker) ownerExamples(owner map[string]any, pointer string) []namedExample {
	var out []namedExample
	if v, ok := owner["example"]; ok {
		out = append(out, namedExample{name: "example", location: pointer + "/example", value: v})
	}
	examples, _ := owner["examples"].(map[string]any)
	for _, name := range slices.Sorted(maps.Keys(examples)) {
		obj, ok := examples[name].(map[string]any)
		if !ok {
			continue
		}
		if expr, ok := obj["$ref"].(string); ok {
			target, err := w.reg.Lookup(expr)
			if err != nil {
				continue
			}
			if obj, ok = target.(map[string]any); !ok {
				continue
			}
		}
		value, ok := obj["value"]
		if !ok {
			continue
		}
		key := "examples/" + pathutil.EscapePointerToken(name)
		out = append(out, namedExample{name: key, location: pointer + "/" + key + "/value", value: value})
	}
	return out
}

// collectExamples walks a schema and its inline subschemas. References are
// not followed; their targets are visited under their own names.
func collectExamples(schema any, pointer string, out []exampleSite) []exampleSite {
	m, ok := schema.(map[string]any)
	if !ok {
		return out
	}
	if _, isRef := m["$ref"]; isRef {
		return out
	}
	var examples []namedExample
	if v, ok := m["example"]; ok {
		examples = append(examples, namedExample{name: "example", location: pointer + "/example", value: v})
	}
	if list, ok := m["examples"].([]any); ok {
		for i, v := range list {
			name := "examples/" + strconv.Itoa(i)
			examples = append(examples, namedExample{name: name, location: pointer + "/" + name, value: v})
		}
	}
	if len(examples) > 0 {
		out = append(out, exampleSite{pointer: pointer, examples: examples})
	}

	child := func(v any, segments ...string) {
		p := pointer
		for _, s := range segments {
			p += "/" + pathutil.EscapePointerToken(s)
		}
		out = collectExamples(v, p, out)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		for _, name := range slices.Sorted(maps.Keys(props)) {
			child(props[name], "properties", name)
		}
	}
	for _, key := range []string{"items", "additionalProperties", "not"} {
		if v, ok := m[key]; ok {
			child(v, key)
		}
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		list, _ := m[key].([]any)
		for i, v := range list {
			child(v, key, strconv.Itoa(i))
		}
	}
	return out
}
