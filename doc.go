// Package oaskit loads OpenAPI 3.x documents, resolves the links between
// their parts and validates data values against the schemas they contain.
//
// # Overview
//
// The library is organised as a small pipeline of packages:
//
//   - loader: fetch a document from a file or URL and decode JSON or YAML
//   - refs: discover, fetch, canonicalize and resolve $ref links into a Registry
//   - validator: compile a schema into a reusable Node and validate values
//   - oaserrors: structured errors usable with errors.Is and errors.As
//
// # Quick Start
//
// Resolve a document and validate a value against one of its schemas:
//
//	l, err := loader.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	reg, err := refs.ResolveAll(ctx, l, "openapi.yaml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	node, err := validator.CompileRef(reg, "#/components/schemas/Pet")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res := node.Validate(map[string]any{"name": "Rex"})
//	if !res.Valid() {
//		for _, item := range res.Items() {
//			fmt.Println(item)
//		}
//	}
//
// A compiled Node is immutable and may be shared by many goroutines. Compile
// once per schema, validate many times.
//
// # References
//
// Every $ref is keyed in the Registry by its canonical absolute form, for
// example "file:///srv/api/openapi.yaml#/components/schemas/Pet". The resolver
// writes that key back next to the original expression (as "$$ref"), so later
// consumers never re-resolve relative paths. Cycles through chains of bare
// references fail resolution; recursive schemas (a property that refers back
// to its own schema) are fine and compile to a graph with back-edges.
//
// # Discriminators
//
// When a discriminator is present, the validator reads the discriminator
// property from the value and validates against the single mapped schema
// instead of trying every branch.
package oaskit
