// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

import "strings"

// OAS 3.x reference prefixes
const (
	RefPrefixSchemas       = "#/components/schemas/"
	RefPrefixParameters    = "#/components/parameters/"
	RefPrefixResponses     = "#/components/responses/"
	RefPrefixRequestBodies = "#/components/requestBodies/"
	RefPrefixHeaders       = "#/components/headers/"
	RefPrefixLinks         = "#/components/links/"
)

// SchemaRef builds "#/components/schemas/{name}", escaping the name as a
// JSON Pointer token.
func SchemaRef(name string) string {
	return RefPrefixSchemas + EscapePointerToken(name)
}

// EscapePointerToken escapes a JSON Pointer token.
// Per RFC 6901, ~ is written as ~0 and / as ~1.
func EscapePointerToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// UnescapePointerToken unescapes a JSON Pointer token.
// Per RFC 6901, ~1 represents / and ~0 represents ~
func UnescapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
