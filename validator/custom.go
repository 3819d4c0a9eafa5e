package validator

// Checker is a custom keyword checker. Check is called once per evaluated
// value and reports findings through r.
type Checker interface {
	Check(value any, r Reporter)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(value any, r Reporter)

// Check calls f(value, r).
func (f CheckerFunc) Check(value any, r Reporter) { f(value, r) }

// CheckerFactory builds a Checker for one schema object. keywordValue is the
// value of the keyword the checker is registered for and schema is the whole
// schema object. A returned error fails compilation; a nil Checker adds nothing.
type CheckerFactory func(keywordValue any, schema map[string]any) (Checker, error)

// Reporter receives the findings of a custom checker.
type Reporter interface {
	// Report adds an item at the current data path. message is used as is.
	Report(sev Severity, code int, message string)
	// DataPath returns the path of the value being checked.
	DataPath() string
}

type reporter struct {
	s  *scope
	at *site
	v  any
}

func (r *reporter) Report(sev Severity, code int, message string) {
	r.s.report(r.at, sev, code, r.v, "%s", message)
}

func (r *reporter) DataPath() string { return r.s.data.String() }

func customCheck(chk Checker, at *site) func(any, *scope) {
	return func(v any, s *scope) {
		chk.Check(v, &reporter{s: s, at: at, v: v})
	}
}
