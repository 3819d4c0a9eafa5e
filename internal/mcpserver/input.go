package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oaskit/internal/options"
	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/refs"
)

// inlineBaseURL is the base URL of inline content. Its scheme cannot be
// loaded, so inline documents can only refer to absolute http(s) URLs.
const inlineBaseURL = "inline:///openapi.yaml"

// specInput represents the three ways an OAS document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// cacheEntry holds a resolved registry with LRU ordering and TTL expiry.
type cacheEntry struct {
	registry  *refs.Registry
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache for resolved documents.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. URL inputs are keyed by URL string.
// Entries have per-type TTLs and a background sweeper removes expired entries.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached registry or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *refs.Registry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.registry
	}
	return nil
}

// putWithTTL stores a registry with a specific TTL, evicting the oldest entry if at capacity.
func (c *specCacheStore) putWithTTL(key string, reg *refs.Registry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{registry: reg, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given spec input.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		return fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
}

// newLoader builds the loader used for tool inputs.
func newLoader() (*loader.Loader, error) {
	opts := []loader.Option{loader.WithMaxFileSize(cfg.MaxFileSize)}
	// SSRF-safe HTTP client unless private IPs are allowed.
	if !cfg.AllowPrivateIPs {
		opts = append(opts, loader.WithHTTPClient(newSafeHTTPClient()))
	}
	return loader.New(opts...)
}

// resolve loads the document from whichever input was provided and resolves
// all of its references, using the cache for file, URL, and content inputs.
func (s specInput) resolve(ctx context.Context) (*refs.Registry, error) {
	if err := options.ValidateSingleInputSource(
		[]string{"file", "url", "content"},
		s.File != "", s.URL != "", s.Content != "",
	); err != nil {
		return nil, err
	}

	// Enforce inline content size limit.
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASKIT_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	// Determine cache key and TTL (skip when caching is disabled).
	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}

	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	l, err := newLoader()
	if err != nil {
		return nil, err
	}
	var base string
	var doc any
	switch {
	case s.File != "":
		base = s.File
	case s.URL != "":
		base = s.URL
	default:
		base = inlineBaseURL
		doc, err = loader.DefaultCodec{}.Decode([]byte(s.Content))
		if err != nil {
			return nil, err
		}
		if loader.IsMissing(doc) {
			return nil, fmt.Errorf("inline content is empty")
		}
	}

	reg, err := refs.ResolveAll(ctx, l, base, doc)
	if err != nil {
		return nil, err
	}

	if key != "" {
		specCache.putWithTTL(key, reg, ttl)
	}
	return reg, nil
}
