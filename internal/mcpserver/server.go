// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oaskit reference resolution and schema validation as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/oaskit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oaskit MCP server: resolves $ref references in OpenAPI 3.x documents and validates data values against their schemas.

Configuration: All defaults are configurable via OASKIT_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- OASKIT_CACHE_FILE_TTL (default: 15m): cache TTL for local file specs
- OASKIT_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched specs
- OASKIT_CACHE_ENABLED (default: true): disable spec caching entirely
- OASKIT_LIST_LIMIT (default: 100): default result limit for list outputs
- OASKIT_MAX_FILE_SIZE (default: 10MiB): largest document the loader reads
- OASKIT_ALLOW_PRIVATE_IPS (default: false): allow URL inputs on private networks
- OASKIT_VALIDATE_FAST_FAIL (default: false): stop at the first error by default
- OASKIT_VALIDATE_STRICT_FORMATS (default: false): report format violations as errors
- OASKIT_VALIDATE_REDACT (default: false): omit data values from messages
- OASKIT_VALIDATE_NO_WARNINGS (default: false): suppress warnings by default

Caching: Resolved documents are cached per session. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := newServer()
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oaskit", Version: oaskit.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Resolve every $ref, operationRef and discriminator mapping in an OpenAPI 3.x document, following references into other files and URLs. Returns the registered references (canonical ref, expression as written, document, resolved status) and the loaded documents. Use target to filter canonical refs with a * glob (e.g. *schemas/Pet*). Use group_by=document to get counts per document instead of individual refs. Use offset/limit to paginate.",
	}, handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_value",
		Description: "Validate a data value against a schema of an OpenAPI 3.x document. schema is a reference expression such as #/components/schemas/Pet. Provide the value as JSON (value) or as JSON/YAML text (value_content). Returns errors and warnings with data paths, schema paths, keywords and stable codes. Use mode=request or mode=response to enforce readOnly/writeOnly. Defaults are configurable via OASKIT_VALIDATE_* env vars.",
	}, handleValidateValue)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is one of the allowed values.
func validateGroupBy(groupBy string, allowed []string) error {
	if groupBy == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(groupBy, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchRefGlob never encounters an
// invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}

// matchRefGlob reports whether a canonical ref matches pattern, ignoring
// case. Patterns without * or ? match as substrings.
func matchRefGlob(pattern, ref string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(strings.ToLower(ref), strings.ToLower(pattern))
	}
	// Replace / with : so filepath.Match's * can cross path boundaries.
	normalizedRef := strings.ReplaceAll(strings.ToLower(ref), "/", ":")
	normalizedPattern := strings.ReplaceAll(strings.ToLower(pattern), "/", ":")
	matched, err := filepath.Match(normalizedPattern, normalizedRef)
	return err == nil && matched
}
