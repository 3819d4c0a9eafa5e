package validator

import (
	"github.com/erraggy/oaskit/internal/equalutil"
)

// items applies one schema to every array element. The tuple form of items
// is not supported and compiles to no checker.
func (c *compiler) items(at *site) (func(any, *scope), error) {
	raw := c.schema[at.keyword]
	if _, tuple := raw.([]any); tuple {
		return nil, nil
	}
	n, err := c.subschema(raw, at.keyword)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		arr, ok := v.([]any)
		if !ok {
			return
		}
		for i, item := range arr {
			if s.stopped() {
				return
			}
			n.eval(item, s.at(s.data.Index(i)))
		}
	}, nil
}

func (c *compiler) itemCount(at *site, lower bool) (func(any, *scope), error) {
	limit, err := c.count(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		arr, ok := v.([]any)
		if !ok {
			return
		}
		if lower && len(arr) < limit {
			s.fail(at, CodeMinItems, nil, msgMinItems, len(arr), limit)
		}
		if !lower && len(arr) > limit {
			s.fail(at, CodeMaxItems, nil, msgMaxItems, len(arr), limit)
		}
	}, nil
}

func (c *compiler) uniqueItems(at *site) (func(any, *scope), error) {
	unique, ok := c.schema[at.keyword].(bool)
	if !ok {
		return nil, c.invalid(at, "must be a boolean")
	}
	if !unique {
		return nil, nil
	}
	return func(v any, s *scope) {
		arr, ok := v.([]any)
		if !ok {
			return
		}
		if i, j, dup := equalutil.FirstDuplicate(arr); dup {
			s.fail(at, CodeUniqueItems, nil, msgUniqueItems, i, j)
		}
	}, nil
}

func (c *compiler) contains(at *site) (func(any, *scope), error) {
	n, err := c.subschema(c.schema[at.keyword], at.keyword)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		arr, ok := v.([]any)
		if !ok {
			return
		}
		for i, item := range arr {
			b := s.branch(true).at(s.data.Index(i))
			n.eval(item, b)
			if b.out.Valid() {
				return
			}
		}
		s.fail(at, CodeContains, nil, msgContains)
	}, nil
}
