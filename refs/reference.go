package refs

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Reference is one registered reference and, once resolved, its target content.
type Reference struct {
	documentURL string
	canonical   string
	expr        string

	mu       sync.RWMutex
	content  any
	resolved bool

	// mapped caches MappedContent results keyed by target type.
	mapped sync.Map
}

func newReference(canonical, expr string) *Reference {
	doc, _, _ := strings.Cut(canonical, "#")
	return &Reference{documentURL: doc, canonical: canonical, expr: expr}
}

// DocumentURL returns the URL of the document holding the target.
func (r *Reference) DocumentURL() string { return r.documentURL }

// CanonicalRef returns the absolute reference string the Registry keys on.
func (r *Reference) CanonicalRef() string { return r.canonical }

// RefExpr returns the expression as written in the source document.
func (r *Reference) RefExpr() string { return r.expr }

// Fragment returns the JSON Pointer part of the canonical reference, without
// the leading '#'.
func (r *Reference) Fragment() string {
	_, frag, _ := strings.Cut(r.canonical, "#")
	return frag
}

// Content returns the resolved target, or nil before resolution.
func (r *Reference) Content() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// IsResolved reports whether the target has been located.
func (r *Reference) IsResolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

func (r *Reference) setContent(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return
	}
	r.content = v
	r.resolved = true
}

// String returns the canonical reference.
func (r *Reference) String() string { return r.canonical }

// MappedContent decodes the content of ref into a T, for example a typed
// OpenAPI Schema struct. The decoded value is cached per type, so repeated
// calls for the same T return the same value without decoding again.
func MappedContent[T any](ref *Reference) (T, error) {
	var zero T
	if ref == nil {
		return zero, fmt.Errorf("refs: nil reference")
	}
	if !ref.IsResolved() {
		return zero, fmt.Errorf("refs: reference %s is not resolved", ref.canonical)
	}

	key := reflect.TypeFor[T]()
	if cached, ok := ref.mapped.Load(key); ok {
		return cached.(T), nil
	}

	data, err := json.Marshal(ref.Content())
	if err != nil {
		return zero, fmt.Errorf("refs: encoding %s: %w", ref.canonical, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("refs: mapping %s to %s: %w", ref.canonical, key, err)
	}
	actual, _ := ref.mapped.LoadOrStore(key, out)
	return actual.(T), nil
}
