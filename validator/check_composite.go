package validator

// allOf applies every branch. Items of a failing branch are reported
// followed by a summary naming the branch.
func (c *compiler) allOf(at *site) (func(any, *scope), error) {
	nodes, err := c.subschemas(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		for i, n := range nodes {
			b := s.branch(false)
			n.eval(v, b)
			s.out.merge(b.out)
			if b.out.Valid() {
				continue
			}
			if s.stopped() {
				return
			}
			s.fail(at, CodeAllOf, nil, msgAllOf, i)
		}
	}, nil
}

// anyOf passes when a branch passes. The items of the first passing branch,
// such as format warnings, are kept; failing branches report nothing.
func (c *compiler) anyOf(at *site) (func(any, *scope), error) {
	nodes, err := c.subschemas(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		for _, n := range nodes {
			b := s.branch(true)
			n.eval(v, b)
			if b.out.Valid() {
				s.out.merge(b.out)
				return
			}
		}
		s.fail(at, CodeAnyOf, nil, msgAnyOf)
	}, nil
}

// oneOf passes when exactly one branch passes.
func (c *compiler) oneOf(at *site) (func(any, *scope), error) {
	nodes, err := c.subschemas(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		var match *Results
		matches := 0
		for _, n := range nodes {
			b := s.branch(true)
			n.eval(v, b)
			if b.out.Valid() {
				matches++
				match = b.out
			}
		}
		switch matches {
		case 0:
			s.fail(at, CodeOneOfNone, nil, msgOneOfNone)
		case 1:
			s.out.merge(match)
		default:
			s.fail(at, CodeOneOfMany, nil, msgOneOfMany, matches)
		}
	}, nil
}

func (c *compiler) not(at *site) (func(any, *scope), error) {
	n, err := c.subschema(c.schema[at.keyword], at.keyword)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		b := s.branch(true)
		n.eval(v, b)
		if b.out.Valid() {
			s.fail(at, CodeNot, nil, msgNot)
		}
	}, nil
}

// ifThenElse applies then when the value matches if, else otherwise. The
// if schema itself never reports.
func (c *compiler) ifThenElse(at *site) (func(any, *scope), error) {
	cond, err := c.subschema(c.schema[at.keyword], at.keyword)
	if err != nil {
		return nil, err
	}
	var then, els *Node
	if raw, ok := c.schema["then"]; ok {
		if then, err = c.subschema(raw, "then"); err != nil {
			return nil, err
		}
	}
	if raw, ok := c.schema["else"]; ok {
		if els, err = c.subschema(raw, "else"); err != nil {
			return nil, err
		}
	}
	if then == nil && els == nil {
		return nil, nil
	}
	thenAt := &site{keyword: "then", path: joinLoc(c.node.loc, "then")}
	elseAt := &site{keyword: "else", path: joinLoc(c.node.loc, "else")}

	return func(v any, s *scope) {
		b := s.branch(true)
		cond.eval(v, b)
		n, where, msg := then, thenAt, msgThen
		if !b.out.Valid() {
			n, where, msg = els, elseAt, msgElse
		}
		if n == nil {
			return
		}
		r := s.branch(false)
		n.eval(v, r)
		s.out.merge(r.out)
		if !r.out.Valid() && !s.stopped() {
			s.fail(where, CodeIfThenElse, nil, msg)
		}
	}, nil
}
