// Package validator compiles OpenAPI Schema Objects into reusable validation
// graphs and applies them to decoded data values.
//
// # Compiling
//
// Compile turns a schema fragment into a *Node. Every known keyword of the
// fragment becomes one checker; checkers run in a fixed keyword order
// (see Keyword), not in the order keys appear in the document. Unknown keys
// are ignored. A $ref is followed through the Registry the schema was resolved
// with, and every reference target is compiled once per compilation, so
// recursive schemas compile to a graph with back-edges:
//
//	node, err := validator.CompileRef(reg, "#/components/schemas/Pet",
//		validator.WithFlags(validator.FlagRequestMode))
//
// A Node is immutable and safe for concurrent use.
//
// # Validating
//
// Validate returns a *Results holding every finding in the order found. Each
// Item carries a stable numeric code (CodeType, CodeRequired, ...), a message,
// the data path of the offending value and the schema path of the keyword.
// Format violations are warnings unless FlagStrictFormats is set, and a value
// is valid when no item is an error. ValidateOrThrow returns a
// *ValidationError instead.
//
// Numeric keywords compare decimals exactly, so 0.3 is a multiple of 0.1.
// String lengths count Unicode code points.
//
// # Discriminators
//
// A schema with a discriminator validates an object against the one schema its
// discriminator property selects and skips anyOf/oneOf evaluation. Values are
// looked up in the mapping, then among the names of oneOf/anyOf references and
// the schemas under components/schemas. An unknown value is an error.
//
// # Extending
//
// WithChecker registers a custom checker for any keyword, including x-*
// extensions. Supplementing checkers run before the core checker; an
// overriding checker replaces it.
package validator
