package refs

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/oaserrors"
	"github.com/go-openapi/jsonpointer"
	"github.com/go-openapi/jsonreference"
)

// Registry maps canonical reference strings to References.
//
// A Registry is filled by a Resolver and is read-only afterwards; all methods
// are safe for concurrent use.
type Registry struct {
	baseURI string

	mu        sync.RWMutex
	entries   map[string]*Reference
	documents map[string]any
}

// NewRegistry creates an empty Registry whose relative lookups resolve
// against baseURI.
func NewRegistry(baseURI string) *Registry {
	return &Registry{
		baseURI:   baseURI,
		entries:   make(map[string]*Reference),
		documents: make(map[string]any),
	}
}

// BaseURI returns the URI relative expressions are resolved against.
func (r *Registry) BaseURI() string { return r.baseURI }

// AddRef registers expr as written in the document at docURL. An existing
// entry with the same canonical form is replaced.
func (r *Registry) AddRef(docURL, expr string) (*Reference, error) {
	canonical, err := Canonicalize(docURL, expr)
	if err != nil {
		return nil, err
	}
	ref := newReference(canonical, expr)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[canonical] = ref
	return ref, nil
}

// Get looks up expr, which is either absolute or relative to BaseURI.
func (r *Registry) Get(expr string) (*Reference, bool) {
	return r.GetFrom(r.baseURI, expr)
}

// GetFrom looks up expr relative to base.
func (r *Registry) GetFrom(base, expr string) (*Reference, bool) {
	canonical, err := Canonicalize(base, expr)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.entries[canonical]
	return ref, ok
}

// Merge copies every entry and document of other into r. Entries of other
// win over existing ones with the same key.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	entries := maps.Clone(other.entries)
	documents := maps.Clone(other.documents)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.entries, entries)
	maps.Copy(r.documents, documents)
}

// Keys returns the canonical references in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of registered references.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Document returns the decoded tree of a document loaded during resolution.
func (r *Registry) Document(docURL string) (any, bool) {
	canonical, err := Canonicalize(docURL, "")
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[canonical]
	return doc, ok
}

// Documents returns the URLs of all loaded documents in sorted order.
func (r *Registry) Documents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.documents))
}

// Lookup evaluates expr relative to BaseURI against the loaded documents,
// whether or not any document references it.
func (r *Registry) Lookup(expr string) (any, error) {
	return r.LookupFrom(r.baseURI, expr)
}

// LookupFrom evaluates expr relative to base against the loaded documents.
func (r *Registry) LookupFrom(base, expr string) (any, error) {
	canonical, err := Canonicalize(base, expr)
	if err != nil {
		return nil, err
	}
	docURL, frag, _ := strings.Cut(canonical, "#")

	r.mu.RLock()
	doc, ok := r.documents[docURL]
	r.mu.RUnlock()
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Ref:       canonical,
			Document:  docURL,
			IsMissing: true,
			Message:   "document was not loaded",
		}
	}
	v, err := evalPointer(doc, frag)
	if err != nil {
		return nil, &oaserrors.ResolutionError{Ref: canonical, Document: docURL, IsMissing: true, Cause: err}
	}
	return v, nil
}

func (r *Registry) setDocument(docURL string, doc any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[docURL] = doc
}

func (r *Registry) entry(canonical string) (*Reference, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.entries[canonical]
	return ref, ok
}

func (r *Registry) sortedEntries() []*Reference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Reference, 0, len(r.entries))
	for _, k := range slices.Sorted(maps.Keys(r.entries)) {
		out = append(out, r.entries[k])
	}
	return out
}

// braces are legal in OpenAPI path templates but not in URI fragments.
var braceEscaper = strings.NewReplacer("{", "%7B", "}", "%7D")

// Canonicalize resolves expr against base and returns the absolute reference
// string used as a Registry key. An empty expr yields the canonical form of
// base without its fragment.
func Canonicalize(base, expr string) (string, error) {
	parent, err := jsonreference.New(braceEscaper.Replace(base))
	if err != nil {
		return "", fmt.Errorf("refs: invalid base %q: %w", base, err)
	}
	child, err := jsonreference.New(braceEscaper.Replace(expr))
	if err != nil {
		return "", fmt.Errorf("refs: invalid reference %q: %w", expr, err)
	}
	resolved, err := parent.Inherits(child)
	if err != nil {
		return "", fmt.Errorf("refs: resolving %q against %q: %w", expr, base, err)
	}
	s := braceEscaper.Replace(resolved.String())
	if expr == "" {
		s, _, _ = strings.Cut(s, "#")
	}
	return s, nil
}

// evalPointer evaluates a percent-encoded JSON Pointer fragment against doc.
// An empty pointer or "/" selects the whole document.
func evalPointer(doc any, fragment string) (any, error) {
	frag, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, fmt.Errorf("invalid fragment %q: %w", fragment, err)
	}
	if frag == "" || frag == "/" {
		if loader.IsMissing(doc) {
			return nil, fmt.Errorf("document is empty")
		}
		return doc, nil
	}
	ptr, err := jsonpointer.New(frag)
	if err != nil {
		return nil, err
	}
	v, _, err := ptr.Get(doc)
	if err != nil {
		return nil, err
	}
	return v, nil
}
