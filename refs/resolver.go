package refs

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/oaserrors"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxRefDepth is the maximum length of a chain of references to references.
	// This prevents stack overflow from deeply nested (but non-circular) chains.
	MaxRefDepth = 100

	// MaxCachedDocuments is the maximum number of documents loaded in one run.
	// This prevents memory exhaustion from documents with many external references.
	MaxCachedDocuments = 100

	// DefaultConcurrency is the number of documents fetched in parallel.
	DefaultConcurrency = 4
)

// Option configures a Resolver.
type Option func(*config) error

type config struct {
	family       Family
	logger       loader.Logger
	concurrency  int
	maxDocuments int
	maxDepth     int
}

// WithFamily selects the keyword family to resolve. Default: FamilyRef.
func WithFamily(f Family) Option {
	return func(c *config) error {
		if f.Keyword == "" || f.AuxField == "" {
			return &oaserrors.ConfigError{Option: "WithFamily", Message: "keyword and auxiliary field are required"}
		}
		c.family = f
		return nil
	}
}

// WithKeyword resolves a custom keyword, see KeywordFamily.
func WithKeyword(keyword string) Option {
	return func(c *config) error {
		if keyword == "" {
			return &oaserrors.ConfigError{Option: "WithKeyword", Message: "keyword cannot be empty"}
		}
		c.family = KeywordFamily(keyword)
		return nil
	}
}

// WithLogger sets the structured logger for debug output.
func WithLogger(l loader.Logger) Option {
	return func(c *config) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithConcurrency bounds how many documents of one discovery level are
// fetched at the same time.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "WithConcurrency", Value: n, Message: "must be at least 1"}
		}
		c.concurrency = n
		return nil
	}
}

// WithMaxCachedDocuments bounds the number of documents loaded in one run.
func WithMaxCachedDocuments(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "WithMaxCachedDocuments", Value: n, Message: "must be at least 1"}
		}
		c.maxDocuments = n
		return nil
	}
}

// WithMaxRefDepth bounds the length of reference chains.
func WithMaxRefDepth(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "WithMaxRefDepth", Value: n, Message: "must be at least 1"}
		}
		c.maxDepth = n
		return nil
	}
}

// Resolver discovers and resolves the references of one keyword family.
// A Resolver holds no per-run state and may be reused.
type Resolver struct {
	loader *loader.Loader
	cfg    config
}

// NewResolver creates a Resolver that loads documents with l.
func NewResolver(l *loader.Loader, opts ...Option) (*Resolver, error) {
	if l == nil {
		return nil, &oaserrors.ConfigError{Option: "loader", Message: "loader cannot be nil"}
	}
	cfg := config{
		family:       FamilyRef,
		logger:       loader.NopLogger{},
		concurrency:  DefaultConcurrency,
		maxDocuments: MaxCachedDocuments,
		maxDepth:     MaxRefDepth,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Resolver{loader: l, cfg: cfg}, nil
}

// Resolve builds a Registry for the document at baseURL.
//
// If doc is non-nil it is registered verbatim as the base document instead of
// being loaded. Discovery writes canonical references into the trees it
// walks, doc included.
func (r *Resolver) Resolve(ctx context.Context, baseURL string, doc any) (*Registry, error) {
	reg, _, err := r.resolve(ctx, baseURL, doc, nil)
	return reg, err
}

// documentSet caches the documents of a resolution run, keyed by canonical URL.
type documentSet struct {
	mu   sync.Mutex
	docs map[string]any
}

func newDocumentSet() *documentSet {
	return &documentSet{docs: make(map[string]any)}
}

func (s *documentSet) get(u string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[u]
	return doc, ok
}

func (s *documentSet) put(u string, doc any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[u] = doc
}

// urls returns the cached document URLs in sorted order.
func (s *documentSet) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.docs))
}

func (s *documentSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (r *Resolver) resolve(ctx context.Context, baseURL string, doc any, docs *documentSet) (*Registry, *documentSet, error) {
	u, err := loader.ToURL(baseURL)
	if err != nil {
		return nil, nil, &oaserrors.ResolutionError{Document: baseURL, Message: "invalid base URL", Cause: err}
	}
	base, err := Canonicalize(u.String(), "")
	if err != nil {
		return nil, nil, &oaserrors.ResolutionError{Document: baseURL, Message: "invalid base URL", Cause: err}
	}
	if docs == nil {
		docs = newDocumentSet()
	}
	logger := r.cfg.logger.With("keyword", r.cfg.family.Keyword)

	// Register the base document.
	if doc != nil {
		docs.put(base, doc)
	} else if _, ok := docs.get(base); !ok {
		loaded, err := r.loader.Load(ctx, base)
		if err != nil {
			return nil, nil, loadError(base, err)
		}
		docs.put(base, loaded)
	}

	reg := NewRegistry(base)
	if err := r.discover(ctx, reg, docs, logger); err != nil {
		return nil, nil, err
	}

	for _, ref := range reg.sortedEntries() {
		if err := r.resolveRef(reg, docs, ref, nil); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("resolved references",
		"base", base,
		"references", reg.Len(),
		"documents", len(reg.Documents()))
	return reg, docs, nil
}

// discover walks documents level by level, registering every reference and
// loading the documents each level points into. The first level holds every
// document already cached, so documents loaded by an earlier run over the
// same set are searched too.
func (r *Resolver) discover(ctx context.Context, reg *Registry, docs *documentSet, logger loader.Logger) error {
	family := r.cfg.family
	level := docs.urls()
	seen := make(map[string]bool, len(level))
	for _, u := range level {
		seen[u] = true
	}

	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		var next []string
		for _, docURL := range level {
			doc, _ := docs.get(docURL)
			reg.setDocument(docURL, doc)

			sites := family.collect(doc, "", nil)
			for _, s := range sites {
				ref, err := reg.AddRef(docURL, s.expr)
				if err != nil {
					return &oaserrors.ResolutionError{Ref: s.expr, Document: docURL, Message: "invalid reference", Cause: err}
				}
				family.record(s, ref.CanonicalRef())
				if sub := ref.DocumentURL(); !seen[sub] {
					seen[sub] = true
					next = append(next, sub)
				}
			}
			if len(sites) > 0 {
				logger.Debug("discovered references", "document", docURL, "count", len(sites))
			}
		}
		slices.Sort(next)
		if err := r.fetchAll(ctx, docs, next, logger); err != nil {
			return err
		}
		level = next
	}
	return nil
}

// fetchAll loads the documents of urls that are not cached yet, in parallel.
func (r *Resolver) fetchAll(ctx context.Context, docs *documentSet, urls []string, logger loader.Logger) error {
	var missing []string
	for _, u := range urls {
		if _, ok := docs.get(u); !ok {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if total := docs.len() + len(missing); total > r.cfg.maxDocuments {
		return &oaserrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        int64(r.cfg.maxDocuments),
			Actual:       int64(total),
		}
	}

	loaded := make([]any, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.concurrency)
	for i, u := range missing {
		g.Go(func() error {
			doc, err := r.loader.Load(gctx, u)
			if err != nil {
				return loadError(u, err)
			}
			loaded[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, u := range missing {
		docs.put(u, loaded[i])
	}
	logger.Debug("loaded documents", "count", len(missing))
	return nil
}

// resolveRef locates the target of ref. Targets that are themselves
// references are resolved first; chain holds the references being resolved
// by the current call.
func (r *Resolver) resolveRef(reg *Registry, docs *documentSet, ref *Reference, chain []string) error {
	if ref.IsResolved() {
		return nil
	}
	canonical := ref.CanonicalRef()
	if i := slices.Index(chain, canonical); i >= 0 {
		return &oaserrors.ResolutionError{
			Ref:      canonical,
			Document: ref.DocumentURL(),
			Chain:    append(slices.Clone(chain[i:]), canonical),
		}
	}
	if len(chain) >= r.cfg.maxDepth {
		return &oaserrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(r.cfg.maxDepth),
			Actual:       int64(len(chain) + 1),
			Message:      "reference chain starting at " + chain[0],
		}
	}

	doc, ok := docs.get(ref.DocumentURL())
	if !ok {
		return &oaserrors.ResolutionError{
			Ref:       canonical,
			Document:  ref.DocumentURL(),
			IsMissing: true,
			Message:   "document was not loaded",
		}
	}
	target, err := evalPointer(doc, ref.Fragment())
	if err != nil {
		return &oaserrors.ResolutionError{
			Ref:       canonical,
			Document:  ref.DocumentURL(),
			IsMissing: true,
			Cause:     err,
		}
	}

	if next, ok := r.cfg.family.chained(target); ok {
		if nextRef, found := reg.entry(next); found {
			if err := r.resolveRef(reg, docs, nextRef, append(slices.Clip(chain), canonical)); err != nil {
				return err
			}
		}
	}
	ref.setContent(target)
	return nil
}

// loadError reports a document that could not be loaded. Errors that already
// describe a resolution or resource failure pass through.
func loadError(docURL string, err error) error {
	var resErr *oaserrors.ResolutionError
	var limErr *oaserrors.ResourceLimitError
	if errors.As(err, &resErr) || errors.As(err, &limErr) {
		return err
	}
	return &oaserrors.ResolutionError{Document: docURL, Message: "failed to load document", Cause: err}
}
