package validator

import (
	"maps"
	"regexp"
	"slices"
)

// required checks that listed properties are present. In request mode
// readOnly properties may be absent, in response mode writeOnly ones.
func (c *compiler) required(at *site) (func(any, *scope), error) {
	list, ok := c.schema[at.keyword].([]any)
	if !ok {
		return nil, c.invalid(at, "must be an array of strings")
	}
	names := make([]string, 0, len(list))
	for _, item := range list {
		name, ok := item.(string)
		if !ok {
			return nil, c.invalid(at, "must be an array of strings")
		}
		if c.exempt(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, name := range names {
			if _, present := obj[name]; !present {
				s.fail(at, CodeRequired, nil, msgRequired, name)
				if s.stopped() {
					return
				}
			}
		}
	}, nil
}

// exempt reports whether the access mode makes a required property optional.
func (c *compiler) exempt(name string) bool {
	var key string
	switch {
	case c.env.cfg.flags[FlagRequestMode]:
		key = "readOnly"
	case c.env.cfg.flags[FlagResponseMode]:
		key = "writeOnly"
	default:
		return false
	}
	props, _ := c.schema["properties"].(map[string]any)
	prop, _ := props[name].(map[string]any)
	if prop == nil {
		return false
	}
	if prop[key] == true {
		return true
	}
	if canonical, ok := prop["$$ref"].(string); ok {
		target, _ := c.env.lookup(canonical)
		m, _ := target.(map[string]any)
		return m[key] == true
	}
	return false
}

func (c *compiler) properties(at *site) (func(any, *scope), error) {
	props, ok := c.schema[at.keyword].(map[string]any)
	if !ok {
		return nil, c.invalid(at, "must be an object")
	}
	names := slices.Sorted(maps.Keys(props))
	nodes := make([]*Node, len(names))
	for i, name := range names {
		n, err := c.subschema(props[name], at.keyword, name)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for i, name := range names {
			if s.stopped() {
				return
			}
			if val, present := obj[name]; present {
				nodes[i].eval(val, s.at(s.data.Child(name)))
			}
		}
	}, nil
}

type patternNode struct {
	re   *regexp.Regexp
	node *Node
}

func (c *compiler) patterns() ([]patternNode, error) {
	raw, ok := c.schema["patternProperties"].(map[string]any)
	if !ok {
		return nil, nil
	}
	var out []patternNode
	for _, expr := range slices.Sorted(maps.Keys(raw)) {
		re, err := c.env.regexp(expr)
		if err != nil {
			return nil, &SchemaError{
				Path:    joinLoc(c.node.loc, "patternProperties", expr),
				Keyword: "patternProperties",
				Message: "invalid pattern",
				Cause:   err,
			}
		}
		n, err := c.subschema(raw[expr], "patternProperties", expr)
		if err != nil {
			return nil, err
		}
		out = append(out, patternNode{re: re, node: n})
	}
	return out, nil
}

func (c *compiler) patternProperties(at *site) (func(any, *scope), error) {
	if _, ok := c.schema[at.keyword].(map[string]any); !ok {
		return nil, c.invalid(at, "must be an object")
	}
	pats, err := c.patterns()
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(obj)) {
			for _, p := range pats {
				if s.stopped() {
					return
				}
				if p.re.MatchString(name) {
					p.node.eval(obj[name], s.at(s.data.Child(name)))
				}
			}
		}
	}, nil
}

// additionalProperties applies to properties matched neither by properties
// nor by patternProperties.
func (c *compiler) additionalProperties(at *site) (func(any, *scope), error) {
	raw := c.schema[at.keyword]
	if raw == true {
		return nil, nil
	}
	var n *Node
	if raw != false {
		var err error
		if n, err = c.subschema(raw, at.keyword); err != nil {
			return nil, err
		}
	}
	declared, _ := c.schema["properties"].(map[string]any)
	pats, err := c.patterns()
	if err != nil {
		return nil, err
	}

	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(obj)) {
			if s.stopped() {
				return
			}
			if _, ok := declared[name]; ok {
				continue
			}
			if slices.ContainsFunc(pats, func(p patternNode) bool { return p.re.MatchString(name) }) {
				continue
			}
			if n == nil {
				s.at(s.data.Child(name)).fail(at, CodeAdditionalProperties, nil, msgAdditional, name)
				continue
			}
			n.eval(obj[name], s.at(s.data.Child(name)))
		}
	}, nil
}

func (c *compiler) propertyNames(at *site) (func(any, *scope), error) {
	n, err := c.subschema(c.schema[at.keyword], at.keyword)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, name := range slices.Sorted(maps.Keys(obj)) {
			if s.stopped() {
				return
			}
			b := s.branch(true)
			n.eval(name, b)
			if !b.out.Valid() {
				s.fail(at, CodePropertyNames, nil, msgPropertyName, name)
			}
		}
	}, nil
}

func (c *compiler) propertyCount(at *site, lower bool) (func(any, *scope), error) {
	limit, err := c.count(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		if lower && len(obj) < limit {
			s.fail(at, CodeMinProperties, nil, msgMinProperties, len(obj), limit)
		}
		if !lower && len(obj) > limit {
			s.fail(at, CodeMaxProperties, nil, msgMaxProperties, len(obj), limit)
		}
	}, nil
}

// accessMode rejects a present readOnly or writeOnly value when the matching
// mode flag is set.
func (c *compiler) accessMode(at *site, mode Flag, code int, msg string) (func(any, *scope), error) {
	set, ok := c.schema[at.keyword].(bool)
	if !ok {
		return nil, c.invalid(at, "must be a boolean")
	}
	if !set || !c.env.cfg.flags[mode] {
		return nil, nil
	}
	return func(v any, s *scope) {
		s.fail(at, code, nil, msg)
	}, nil
}
