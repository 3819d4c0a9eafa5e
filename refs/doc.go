// Package refs discovers, registers and resolves references between fragments
// of OpenAPI documents.
//
// A [Resolver] starts from a base document, finds every object holding a
// reference keyword ($ref by default), loads the external documents those
// references point into, and evaluates each reference's JSON Pointer fragment.
// The outcome is a [Registry] mapping canonical absolute reference strings to
// [Reference] values whose Content is the target fragment.
//
// # Canonical references
//
// Every expression is made absolute against the URL of the document it appears
// in, so "#/components/schemas/Pet" in https://example.com/api.yaml is stored as
// "https://example.com/api.yaml#/components/schemas/Pet". Discovery also writes
// the canonical string back into the tree under an auxiliary key ($$ref,
// $$operationRef or $$mapping), which lets later consumers such as the
// validator look references up without knowing which document a fragment came
// from.
//
// # Keyword families
//
// [FamilyRef], [FamilyOperationRef] and [FamilyMapping] are independent
// resolver runs. [ResolveAll] runs all three over one shared set of documents
// and merges their registries.
//
// # Errors
//
// Resolution stops at the first failure. Cycles are reported as a
// *oaserrors.ResolutionError whose Chain lists the references in order;
// pointers that do not match anything report IsMissing.
//
//	l, _ := loader.New()
//	reg, err := refs.ResolveAll(ctx, l, "openapi.yaml", nil)
//	if errors.Is(err, oaserrors.ErrCircularReference) {
//		// ...
//	}
package refs
