// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil provides breadcrumb paths and JSON Pointer helpers for
// OpenAPI document traversal.
//
// The primary type is [Path], an immutable path built by structural
// extension. Each recursive step derives a child path from its parent and
// passes it down by value, so there is nothing to pop when a step returns,
// panics or short-circuits:
//
//	root := pathutil.Path{}
//	name := root.Child("pets").Index(0).Child("name")
//	name.String()  // "pets[0].name"
//	name.Pointer() // "/pets/0/name"
//
// Sibling paths share their common prefix, which keeps per-step cost to a
// single small allocation. The full string is only materialized when
// String or Pointer is called, typically when reporting a diagnostic.
//
// # Reference Builders
//
// The package also provides helpers for building JSON Pointer references
// to OpenAPI components:
//
//	ref := pathutil.SchemaRef("Pet") // "#/components/schemas/Pet"
package pathutil
