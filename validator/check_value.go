package validator

import (
	"strings"

	"github.com/erraggy/oaskit/internal/equalutil"
	"github.com/shopspring/decimal"
)

var knownTypes = map[string]bool{
	"null": true, "boolean": true, "string": true, "integer": true,
	"number": true, "array": true, "object": true,
}

// typeCheck handles type together with nullable. A null value passes when
// nullable is true or the type list includes "null".
func (c *compiler) typeCheck(at *site) (func(any, *scope), error) {
	var types []string
	switch t := c.schema["type"].(type) {
	case string:
		types = []string{t}
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, c.invalid(at, "must be a string or an array of strings")
			}
			types = append(types, s)
		}
	default:
		return nil, c.invalid(at, "must be a string or an array of strings")
	}
	allowNull := c.schema["nullable"] == true
	for _, t := range types {
		if !knownTypes[t] {
			return nil, c.invalid(at, "names unknown type "+t)
		}
		if t == "null" {
			allowNull = true
		}
	}
	expected := strings.Join(types, " or ")

	return func(v any, s *scope) {
		if v == nil {
			if !allowNull {
				s.fail(at, CodeNull, v, msgNull)
			}
			return
		}
		actual := dataType(v)
		for _, t := range types {
			if t == actual || (t == "number" && actual == "integer") {
				return
			}
		}
		s.fail(at, CodeType, v, msgType, expected, actual)
	}, nil
}

func (c *compiler) enum(at *site) (func(any, *scope), error) {
	allowed, ok := c.schema["enum"].([]any)
	if !ok {
		return nil, c.invalid(at, "must be an array")
	}
	return func(v any, s *scope) {
		for _, a := range allowed {
			if equalutil.DeepEqual(v, a) {
				return
			}
		}
		s.failValue(at, CodeEnum, v, msgEnum, msgEnumR)
	}, nil
}

func (c *compiler) constCheck(at *site) (func(any, *scope), error) {
	want := c.schema["const"]
	return func(v any, s *scope) {
		if equalutil.DeepEqual(v, want) {
			return
		}
		if s.redacted() {
			s.fail(at, CodeConst, nil, msgConstR)
			return
		}
		s.fail(at, CodeConst, v, msgConst, describe(v), describe(want))
	}, nil
}

func (c *compiler) number(at *site, key string) (decimal.Decimal, error) {
	d, ok := equalutil.ToDecimal(c.schema[key])
	if !ok {
		return decimal.Decimal{}, c.invalid(at, "must be a number")
	}
	return d, nil
}

func (c *compiler) multipleOf(at *site) (func(any, *scope), error) {
	factor, err := c.number(at, at.keyword)
	if err != nil {
		return nil, err
	}
	if !factor.IsPositive() {
		return nil, c.invalid(at, "must be greater than 0")
	}
	return func(v any, s *scope) {
		d, ok := equalutil.ToDecimal(v)
		if !ok {
			return
		}
		if !d.Mod(factor).IsZero() {
			s.failValue(at, CodeMultipleOf, v, msgMultipleOf, msgMultipleOfR, factor.String())
		}
	}, nil
}

// bound checks minimum or maximum. A boolean exclusiveMinimum or
// exclusiveMaximum sibling makes the bound exclusive.
func (c *compiler) bound(at *site, exclusiveKey string, lower bool) (func(any, *scope), error) {
	limit, err := c.number(at, at.keyword)
	if err != nil {
		return nil, err
	}
	exclusive := c.schema[exclusiveKey] == true
	text := limit.String()

	return func(v any, s *scope) {
		d, ok := equalutil.ToDecimal(v)
		if !ok {
			return
		}
		cmp := d.Cmp(limit)
		if !lower {
			cmp = -cmp
		}
		switch {
		case exclusive && cmp <= 0:
			if lower {
				s.failValue(at, CodeExclusiveMinimum, v, msgExclMinimum, msgExclMinimumR, text)
			} else {
				s.failValue(at, CodeExclusiveMaximum, v, msgExclMaximum, msgExclMaximumR, text)
			}
		case cmp < 0:
			if lower {
				s.failValue(at, CodeMinimum, v, msgMinimum, msgMinimumR, text)
			} else {
				s.failValue(at, CodeMaximum, v, msgMaximum, msgMaximumR, text)
			}
		}
	}, nil
}

// exclusiveBound checks the numeric form of exclusiveMinimum and
// exclusiveMaximum. The boolean form is read by bound.
func (c *compiler) exclusiveBound(at *site, lower bool) (func(any, *scope), error) {
	switch c.schema[at.keyword].(type) {
	case bool:
		return nil, nil
	}
	limit, err := c.number(at, at.keyword)
	if err != nil {
		return nil, c.invalid(at, "must be a boolean or a number")
	}
	text := limit.String()

	return func(v any, s *scope) {
		d, ok := equalutil.ToDecimal(v)
		if !ok {
			return
		}
		if lower && d.LessThanOrEqual(limit) {
			s.failValue(at, CodeExclusiveMinimum, v, msgExclMinimum, msgExclMinimumR, text)
		}
		if !lower && d.GreaterThanOrEqual(limit) {
			s.failValue(at, CodeExclusiveMaximum, v, msgExclMaximum, msgExclMaximumR, text)
		}
	}, nil
}

// count reads a non-negative integer keyword value.
func (c *compiler) count(at *site) (int, error) {
	d, ok := equalutil.ToDecimal(c.schema[at.keyword])
	if !ok || !d.IsInteger() || d.IsNegative() || !d.LessThan(decimal.NewFromInt(1<<31)) {
		return 0, c.invalid(at, "must be a non-negative integer")
	}
	return int(d.IntPart()), nil
}
