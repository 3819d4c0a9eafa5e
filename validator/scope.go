package validator

import (
	"github.com/erraggy/oaskit/internal/pathutil"
)

// frame is one entry of the immutable list of tracked nodes being evaluated.
type frame struct {
	node   *Node
	data   pathutil.Path
	parent *frame
}

// active reports whether n is already being evaluated at data path p.
func (f *frame) active(n *Node, p pathutil.Path) bool {
	depth := p.Len()
	for ; f != nil; f = f.parent {
		// Frames are pushed with non-decreasing data depth.
		if f.data.Len() < depth {
			return false
		}
		if f.node == n && f.data.Equal(p) {
			return true
		}
	}
	return false
}

// scope is the evaluation state of one node application. Scopes are cheap
// values derived from their parent; only out is shared.
type scope struct {
	env    *env
	out    *Results
	data   pathutil.Path
	frames *frame
	fast   bool
}

func (s *scope) stopped() bool {
	return s.fast && s.out.severity.Blocking()
}

// at returns a scope for a child value, reporting into the same results.
func (s *scope) at(p pathutil.Path) *scope {
	c := *s
	c.data = p
	return &c
}

// branch returns a scope with its own results. Branches whose items are only
// inspected for validity stop at their first error.
func (s *scope) branch(passFail bool) *scope {
	c := *s
	c.out = &Results{}
	c.fast = s.fast || passFail
	return &c
}

func (s *scope) enter(n *Node) *scope {
	c := *s
	c.frames = &frame{node: n, data: s.data, parent: s.frames}
	return &c
}

func (s *scope) redacted() bool {
	return s.env.cfg.redact
}

func (s *scope) flag(f Flag) bool {
	return s.env.cfg.flags[f]
}

// report adds an item with a localized message.
func (s *scope) report(at *site, sev Severity, code int, value any, key string, args ...any) {
	item := Item{
		Severity:   sev,
		Code:       code,
		Message:    s.env.printer.Sprintf(key, args...),
		DataPath:   s.data.String(),
		SchemaPath: at.path,
		Keyword:    at.keyword,
	}
	if !s.redacted() {
		item.Value = value
	}
	s.out.add(item)
}

func (s *scope) fail(at *site, code int, value any, key string, args ...any) {
	s.report(at, SeverityError, code, value, key, args...)
}

// failValue reports an error whose message quotes the value unless values
// are redacted, in which case the redacted template is used without it.
func (s *scope) failValue(at *site, code int, value any, key, redactedKey string, args ...any) {
	s.reportValue(at, SeverityError, code, value, key, redactedKey, args...)
}

func (s *scope) reportValue(at *site, sev Severity, code int, value any, key, redactedKey string, args ...any) {
	if s.redacted() {
		s.report(at, sev, code, nil, redactedKey, args...)
		return
	}
	s.report(at, sev, code, value, key, append([]any{describe(value)}, args...)...)
}

// eval applies n to v.
func (n *Node) eval(v any, s *scope) {
	if n.tracked {
		if s.frames.active(n, s.data) {
			return
		}
		s = s.enter(n)
	}
	for i := range n.checkers {
		if s.stopped() {
			return
		}
		n.checkers[i].check(v, s)
	}
}

// Validate applies the schema to value. Values that are not decoded tree
// values, such as structs, are converted through their JSON encoding first.
func (n *Node) Validate(value any) *Results {
	s := &scope{env: n.env, out: &Results{}, fast: n.env.cfg.fastFail}
	n.eval(toTree(value), s)
	return s.out
}

// ValidateOrThrow is Validate returning a *ValidationError for an invalid
// value.
func (n *Node) ValidateOrThrow(value any) error {
	res := n.Validate(value)
	if !res.Valid() {
		return &ValidationError{Results: res}
	}
	return nil
}

// Ref returns the canonical reference the node was compiled from, or "".
func (n *Node) Ref() string { return n.ref }

// Keywords lists the keywords of the node's checkers in evaluation order.
func (n *Node) Keywords() []string {
	out := make([]string, len(n.checkers))
	for i, c := range n.checkers {
		out[i] = c.at.keyword
	}
	return out
}
