package validator

import (
	"regexp"
	"unicode/utf8"
)

// length checks minLength or maxLength. Lengths count Unicode code points.
func (c *compiler) length(at *site, lower bool) (func(any, *scope), error) {
	limit, err := c.count(at)
	if err != nil {
		return nil, err
	}
	return func(v any, s *scope) {
		str, ok := v.(string)
		if !ok {
			return
		}
		n := utf8.RuneCountInString(str)
		if lower && n < limit {
			s.fail(at, CodeMinLength, v, msgMinLength, n, limit)
		}
		if !lower && n > limit {
			s.fail(at, CodeMaxLength, v, msgMaxLength, n, limit)
		}
	}, nil
}

func (c *compiler) pattern(at *site) (func(any, *scope), error) {
	expr, ok := c.schema[at.keyword].(string)
	if !ok {
		return nil, c.invalid(at, "must be a string")
	}
	re, err := c.env.regexp(expr)
	if err != nil {
		return nil, &SchemaError{Path: at.path, Keyword: at.keyword, Message: "invalid pattern", Cause: err}
	}
	return func(v any, s *scope) {
		str, ok := v.(string)
		if !ok {
			return
		}
		if !re.MatchString(str) {
			s.failValue(at, CodePattern, v, msgPattern, msgPatternR, expr)
		}
	}, nil
}

// regexp compiles a pattern once per compilation.
func (e *env) regexp(expr string) (*regexp.Regexp, error) {
	if re, ok := e.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	e.patterns[expr] = re
	return re, nil
}

// format checks known formats. Unknown formats are annotations and never
// fail. Violations are warnings unless FlagStrictFormats is set.
func (c *compiler) format(at *site) (func(any, *scope), error) {
	name, ok := c.schema[at.keyword].(string)
	if !ok {
		return nil, c.invalid(at, "must be a string")
	}
	f, known := formats[name]
	if !known {
		return nil, nil
	}
	return func(v any, s *scope) {
		if f.valid(v) {
			return
		}
		sev := SeverityWarning
		if s.flag(FlagStrictFormats) {
			sev = SeverityError
		}
		s.reportValue(at, sev, CodeFormat, v, msgFormat, msgFormatR, name)
	}, nil
}
