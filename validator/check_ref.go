package validator

import (
	"github.com/erraggy/oaskit/refs"
)

// canonical returns the canonical form of a reference held by a schema
// object, preferring the one written during resolution.
func (c *compiler) canonical(schema map[string]any, expr string) (string, bool) {
	if s, ok := schema["$$ref"].(string); ok {
		return s, true
	}
	if c.env.reg == nil {
		return "", false
	}
	s, err := refs.Canonicalize(c.base, expr)
	if err != nil {
		return "", false
	}
	return s, true
}

// ref applies the target schema. A target missing from the registry is
// reported on every evaluation rather than failing compilation.
func (c *compiler) ref(at *site) (func(any, *scope), error) {
	expr, ok := c.schema[at.keyword].(string)
	if !ok {
		return nil, c.invalid(at, "must be a string")
	}
	var target *Node
	if canonical, ok := c.canonical(c.schema, expr); ok {
		var err error
		if target, err = c.env.refNode(canonical); err != nil {
			return nil, err
		}
	}
	if target == nil {
		return func(v any, s *scope) {
			s.fail(at, CodeRefNotFound, nil, msgRefNotFound, expr)
		}, nil
	}
	return func(v any, s *scope) {
		target.eval(v, s)
	}, nil
}
