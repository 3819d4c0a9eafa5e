package validator

import (
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oaskit/internal/pathutil"
	"github.com/erraggy/oaskit/refs"
)

// discriminator dispatches on a property value to exactly one schema and
// replaces anyOf/oneOf evaluation of the same object. Values map to schemas
// through the mapping, then through the names of oneOf/anyOf branch
// references. A schema without branches falls back to the names under
// components/schemas.
func (c *compiler) discriminator(at *site) (func(any, *scope), error) {
	disc, ok := c.schema[at.keyword].(map[string]any)
	if !ok {
		return nil, c.invalid(at, "must be an object")
	}
	prop, ok := disc["propertyName"].(string)
	if !ok || prop == "" {
		return nil, c.invalid(at, "requires a propertyName")
	}
	targets, err := c.discriminatorTargets(disc)
	if err != nil {
		return nil, err
	}

	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		raw, present := obj[prop]
		if !present {
			s.fail(at, CodeDiscriminatorMissing, nil, msgDiscMissing, prop)
			return
		}
		value, ok := raw.(string)
		if !ok {
			s.at(s.data.Child(prop)).fail(at, CodeDiscriminatorType, raw, msgDiscType, prop)
			return
		}
		target := targets[value]
		if target == nil {
			if s.redacted() {
				s.fail(at, CodeDiscriminatorUnknown, nil, msgDiscUnknownR, prop)
			} else {
				s.fail(at, CodeDiscriminatorUnknown, value, msgDiscUnknown, value, prop)
			}
			return
		}
		target.eval(v, s)
	}, nil
}

// discriminatorTargets compiles the schema of every value the discriminator
// can take. An explicit mapping to a missing schema maps to nil.
func (c *compiler) discriminatorTargets(disc map[string]any) (map[string]*Node, error) {
	refsByName := make(map[string]string)

	if !c.hasBranches() && c.env.reg != nil {
		if schemas, err := c.env.reg.LookupFrom(c.base, "#/components/schemas"); err == nil {
			if m, ok := schemas.(map[string]any); ok {
				for _, name := range slices.Sorted(maps.Keys(m)) {
					if canonical, err := refs.Canonicalize(c.base, pathutil.SchemaRef(name)); err == nil {
						refsByName[name] = canonical
					}
				}
			}
		}
	}
	for _, key := range []string{"anyOf", "oneOf"} {
		branches, _ := c.schema[key].([]any)
		for _, b := range branches {
			m, ok := b.(map[string]any)
			if !ok {
				continue
			}
			expr, ok := m["$ref"].(string)
			if !ok {
				continue
			}
			if canonical, ok := c.canonical(m, expr); ok {
				refsByName[refName(expr)] = canonical
			}
		}
	}

	explicit := make(map[string]bool)
	if aux, ok := disc["$$mapping"].(map[string]any); ok {
		for name, v := range aux {
			if canonical, ok := v.(string); ok {
				refsByName[name] = canonical
				explicit[name] = true
			}
		}
	} else if mapping, ok := disc["mapping"].(map[string]any); ok {
		for name, v := range mapping {
			value, ok := v.(string)
			if !ok {
				continue
			}
			canonical, err := refs.Canonicalize(c.base, refs.MappingExpr(value))
			if err != nil {
				return nil, &SchemaError{
					Path:    joinLoc(c.node.loc, "discriminator", "mapping", name),
					Keyword: "discriminator",
					Message: "invalid mapping",
					Cause:   err,
				}
			}
			refsByName[name] = canonical
			explicit[name] = true
		}
	}

	targets := make(map[string]*Node, len(refsByName))
	for _, name := range slices.Sorted(maps.Keys(refsByName)) {
		n, err := c.env.refNode(refsByName[name])
		if err != nil {
			return nil, err
		}
		if n != nil || explicit[name] {
			targets[name] = n
		}
	}
	return targets, nil
}

// hasBranches reports whether the schema lists anyOf or oneOf alternatives.
func (c *compiler) hasBranches() bool {
	for _, key := range []string{"anyOf", "oneOf"} {
		if branches, ok := c.schema[key].([]any); ok && len(branches) > 0 {
			return true
		}
	}
	return false
}

// refName is the last pointer segment of a reference expression.
func refName(expr string) string {
	_, frag, found := strings.Cut(expr, "#")
	if !found {
		frag = expr
	}
	i := strings.LastIndex(frag, "/")
	return pathutil.UnescapePointerToken(frag[i+1:])
}
