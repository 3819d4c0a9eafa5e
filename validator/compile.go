package validator

import (
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/oaskit/internal/pathutil"
	"github.com/erraggy/oaskit/refs"
	"golang.org/x/text/message"
)

// SchemaError reports a schema fragment that cannot be compiled.
type SchemaError struct {
	// Path locates the offending keyword
	Path string
	// Keyword is the schema key holding the bad value
	Keyword string
	// Message describes the problem
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SchemaError) Error() string {
	msg := "invalid schema"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// env is shared by every node of one compilation. It is written only while
// compiling.
type env struct {
	cfg      *config
	printer  *message.Printer
	reg      *refs.Registry
	arena    map[string]*Node
	byMap    map[uintptr]*Node
	patterns map[string]*regexp.Regexp
}

// Node is a compiled schema. A Node is immutable and safe for concurrent use.
type Node struct {
	env *env
	// ref is the canonical reference the node was compiled from, if any.
	ref string
	// loc is the schema path of the node.
	loc string
	// tracked nodes are entered into the active list during evaluation.
	tracked  bool
	checkers []checker
}

// site names where in a schema a checker came from.
type site struct {
	keyword string
	path    string
}

type checker struct {
	kw    Keyword
	at    *site
	check func(v any, s *scope)
}

// Compile compiles a schema fragment. References are looked up in reg, which
// may be nil for schemas without $ref.
func Compile(schema any, reg *refs.Registry, opts ...Option) (*Node, error) {
	e, err := newEnv(reg, opts)
	if err != nil {
		return nil, err
	}
	base := ""
	if reg != nil {
		base = reg.BaseURI()
	}
	n := &Node{env: e, loc: "#", tracked: true}
	e.index(schema, n)
	if err := e.fill(n, schema, base); err != nil {
		return nil, err
	}
	return n, nil
}

// CompileRef compiles the schema that expr points to. expr is resolved
// against the registry's base URI and need not be referenced anywhere.
func CompileRef(reg *refs.Registry, expr string, opts ...Option) (*Node, error) {
	if reg == nil {
		return nil, fmt.Errorf("validator: registry is required to compile %s", expr)
	}
	e, err := newEnv(reg, opts)
	if err != nil {
		return nil, err
	}
	canonical, err := refs.Canonicalize(reg.BaseURI(), expr)
	if err != nil {
		return nil, err
	}
	n, err := e.refNode(canonical)
	if err != nil {
		return nil, err
	}
	if n == nil {
		_, lookupErr := reg.Lookup(canonical)
		return nil, fmt.Errorf("validator: %w", lookupErr)
	}
	return n, nil
}

func newEnv(reg *refs.Registry, opts []Option) (*env, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &env{
		cfg:      cfg,
		printer:  newPrinter(cfg.lang),
		reg:      reg,
		arena:    make(map[string]*Node),
		byMap:    make(map[uintptr]*Node),
		patterns: make(map[string]*regexp.Regexp),
	}, nil
}

// index remembers the node compiled for a schema object, so that the same
// object reached again through a reference reuses it.
func (e *env) index(schema any, n *Node) {
	if m, ok := schema.(map[string]any); ok && m != nil {
		e.byMap[reflect.ValueOf(m).Pointer()] = n
	}
}

func (e *env) indexed(schema any) (*Node, bool) {
	m, ok := schema.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	n, ok := e.byMap[reflect.ValueOf(m).Pointer()]
	return n, ok
}

// lookup returns the content a canonical reference points to.
func (e *env) lookup(canonical string) (any, bool) {
	if e.reg == nil {
		return nil, false
	}
	if ref, ok := e.reg.Get(canonical); ok && ref.IsResolved() {
		return ref.Content(), true
	}
	v, err := e.reg.Lookup(canonical)
	if err != nil {
		return nil, false
	}
	return v, true
}

// refNode returns the node for a canonical reference, compiling it on first
// use. The node is registered before its schema is compiled so recursive
// schemas compile to a graph with back-edges. It returns nil when the target
// does not exist.
func (e *env) refNode(canonical string) (*Node, error) {
	if n, ok := e.arena[canonical]; ok {
		return n, nil
	}
	content, ok := e.lookup(canonical)
	if !ok {
		return nil, nil
	}
	if n, ok := e.indexed(content); ok {
		e.arena[canonical] = n
		return n, nil
	}

	n := &Node{env: e, ref: canonical, loc: e.locFor(canonical), tracked: true}
	e.arena[canonical] = n
	e.index(content, n)
	docURL, _, _ := strings.Cut(canonical, "#")
	if err := e.fill(n, content, docURL); err != nil {
		return nil, err
	}
	return n, nil
}

// locFor shortens references into the base document to their fragment.
func (e *env) locFor(canonical string) string {
	if e.reg != nil {
		if rest, ok := strings.CutPrefix(canonical, e.reg.BaseURI()+"#"); ok {
			return "#" + rest
		}
	}
	return canonical
}

// sub compiles an inline subschema.
func (e *env) sub(schema any, base, loc string) (*Node, error) {
	n := &Node{env: e, loc: loc}
	if err := e.fill(n, schema, base); err != nil {
		return nil, err
	}
	return n, nil
}

// schemaKey pairs a schema key with its keyword for ordering.
type schemaKey struct {
	kw   Keyword
	name string
}

// fill compiles schema into n. base is the URL of the document the schema
// belongs to.
func (e *env) fill(n *Node, schema any, base string) error {
	switch s := schema.(type) {
	case bool:
		if !s {
			at := &site{keyword: "false", path: n.loc}
			n.checkers = []checker{{kw: KeywordType, at: at, check: func(v any, sc *scope) {
				sc.fail(at, CodeType, v, msgFalseSchema)
			}}}
		}
		return nil
	case map[string]any:
		return e.fillObject(n, s, base)
	case nil:
		return &SchemaError{Path: n.loc, Message: "schema is null"}
	default:
		return &SchemaError{Path: n.loc, Message: fmt.Sprintf("schema must be an object or boolean, got %T", schema)}
	}
}

func (e *env) fillObject(n *Node, m map[string]any, base string) error {
	var keys []schemaKey
	for _, name := range slices.Sorted(maps.Keys(m)) {
		kw, ok := ParseKeyword(name)
		if !ok {
			if _, custom := e.cfg.custom[name]; !custom {
				continue
			}
			kw = KeywordExtension
		}
		keys = append(keys, schemaKey{kw: kw, name: name})
	}
	slices.SortStableFunc(keys, func(a, b schemaKey) int { return int(a.kw) - int(b.kw) })

	c := &compiler{env: e, node: n, schema: m, base: base}
	for _, k := range keys {
		at := &site{keyword: k.name, path: joinLoc(n.loc, k.name)}
		overridden := false
		for _, custom := range e.cfg.custom[k.name] {
			chk, err := custom.factory(m[k.name], m)
			if err != nil {
				return &SchemaError{Path: at.path, Keyword: k.name, Message: "custom checker", Cause: err}
			}
			if custom.mode == Override {
				overridden = true
			}
			if chk == nil {
				continue
			}
			n.checkers = append(n.checkers, checker{kw: k.kw, at: at, check: customCheck(chk, at)})
		}
		if overridden || k.kw == KeywordExtension {
			continue
		}
		check, err := c.build(k.kw, at)
		if err != nil {
			return err
		}
		if check != nil {
			n.checkers = append(n.checkers, checker{kw: k.kw, at: at, check: check})
		}
	}
	return nil
}

// compiler builds the checkers of one schema object.
type compiler struct {
	env    *env
	node   *Node
	schema map[string]any
	base   string
}

// build returns the core checker of kw, or nil when the keyword needs no
// checker of its own.
func (c *compiler) build(kw Keyword, at *site) (func(any, *scope), error) {
	switch kw {
	case KeywordRef:
		return c.ref(at)
	case KeywordNullable:
		return nil, nil // read by type
	case KeywordType:
		return c.typeCheck(at)
	case KeywordEnum:
		return c.enum(at)
	case KeywordConst:
		return c.constCheck(at)
	case KeywordMultipleOf:
		return c.multipleOf(at)
	case KeywordMinimum:
		return c.bound(at, "exclusiveMinimum", true)
	case KeywordMaximum:
		return c.bound(at, "exclusiveMaximum", false)
	case KeywordExclusiveMinimum:
		return c.exclusiveBound(at, true)
	case KeywordExclusiveMaximum:
		return c.exclusiveBound(at, false)
	case KeywordMinLength:
		return c.length(at, true)
	case KeywordMaxLength:
		return c.length(at, false)
	case KeywordPattern:
		return c.pattern(at)
	case KeywordFormat:
		return c.format(at)
	case KeywordItems:
		return c.items(at)
	case KeywordMinItems:
		return c.itemCount(at, true)
	case KeywordMaxItems:
		return c.itemCount(at, false)
	case KeywordUniqueItems:
		return c.uniqueItems(at)
	case KeywordContains:
		return c.contains(at)
	case KeywordRequired:
		return c.required(at)
	case KeywordProperties:
		return c.properties(at)
	case KeywordPatternProperties:
		return c.patternProperties(at)
	case KeywordAdditionalProperties:
		return c.additionalProperties(at)
	case KeywordPropertyNames:
		return c.propertyNames(at)
	case KeywordMinProperties:
		return c.propertyCount(at, true)
	case KeywordMaxProperties:
		return c.propertyCount(at, false)
	case KeywordReadOnly:
		return c.accessMode(at, FlagRequestMode, CodeReadOnly, msgReadOnly)
	case KeywordWriteOnly:
		return c.accessMode(at, FlagResponseMode, CodeWriteOnly, msgWriteOnly)
	case KeywordDiscriminator:
		return c.discriminator(at)
	case KeywordAllOf:
		return c.allOf(at)
	case KeywordAnyOf:
		if c.dispatched() {
			return nil, nil
		}
		return c.anyOf(at)
	case KeywordOneOf:
		if c.dispatched() {
			return nil, nil
		}
		return c.oneOf(at)
	case KeywordNot:
		return c.not(at)
	case KeywordIf:
		return c.ifThenElse(at)
	case KeywordExtension:
		return nil, nil
	default:
		return nil, fmt.Errorf("validator: unhandled keyword %v", kw)
	}
}

// dispatched reports whether a discriminator replaces anyOf/oneOf evaluation.
func (c *compiler) dispatched() bool {
	_, ok := c.schema["discriminator"].(map[string]any)
	return ok
}

// subschema compiles the schema under the keyword path segments.
func (c *compiler) subschema(v any, segments ...string) (*Node, error) {
	return c.env.sub(v, c.base, joinLoc(c.node.loc, segments...))
}

// subschemas compiles a non-empty array of schemas.
func (c *compiler) subschemas(at *site) ([]*Node, error) {
	list, ok := c.schema[at.keyword].([]any)
	if !ok || len(list) == 0 {
		return nil, c.invalid(at, "must be a non-empty array of schemas")
	}
	nodes := make([]*Node, len(list))
	for i, v := range list {
		n, err := c.env.sub(v, c.base, fmt.Sprintf("%s/%d", at.path, i))
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (c *compiler) invalid(at *site, msg string) error {
	return &SchemaError{Path: at.path, Keyword: at.keyword, Message: at.keyword + " " + msg}
}

// joinLoc appends JSON Pointer segments to a schema path.
func joinLoc(loc string, segments ...string) string {
	var b strings.Builder
	b.WriteString(loc)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(pathutil.EscapePointerToken(s))
	}
	return b.String()
}
