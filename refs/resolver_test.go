package refs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/oaserrors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstoreYAML = `
openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths:
  /pets/{id}:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      required: [petType]
      properties:
        petType:
          type: string
        owner:
          $ref: "#/components/schemas/Owner"
      discriminator:
        propertyName: petType
        mapping:
          cat: Cat
          dog: "#/components/schemas/Dog"
    Owner:
      type: object
      properties:
        name:
          type: string
    Cat:
      allOf:
        - $ref: "#/components/schemas/Pet"
        - type: object
    Dog:
      allOf:
        - $ref: "#/components/schemas/Pet"
  links:
    GetPet:
      operationRef: "#/paths/~1pets~1{id}/get"
`

func newTestLoader(t *testing.T) *loader.Loader {
	t.Helper()
	l, err := loader.New()
	require.NoError(t, err)
	return l
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(newTestLoader(t), opts...)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fileURL(t *testing.T, path string) string {
	t.Helper()
	u, err := loader.ToURL(path)
	require.NoError(t, err)
	s, err := Canonicalize(u.String(), "")
	require.NoError(t, err)
	return s
}

func TestNewResolver_Config(t *testing.T) {
	_, err := NewResolver(nil)
	assert.True(t, errors.Is(err, oaserrors.ErrConfig))

	l := newTestLoader(t)
	for _, opt := range []Option{
		WithConcurrency(0),
		WithMaxCachedDocuments(0),
		WithMaxRefDepth(-1),
		WithKeyword(""),
		WithFamily(Family{}),
	} {
		_, err := NewResolver(l, opt)
		assert.True(t, errors.Is(err, oaserrors.ErrConfig))
	}
}

func TestResolve_LocalReferences(t *testing.T) {
	path := writeFile(t, t.TempDir(), "openapi.yaml", petstoreYAML)
	base := fileURL(t, path)

	reg, err := newTestResolver(t).Resolve(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, base, reg.BaseURI())
	assert.Equal(t, []string{
		base + "#/components/schemas/Owner",
		base + "#/components/schemas/Pet",
	}, reg.Keys())

	pet, ok := reg.Get("#/components/schemas/Pet")
	require.True(t, ok)
	require.True(t, pet.IsResolved())
	content := pet.Content().(map[string]any)
	assert.Equal(t, "object", content["type"])

	// The canonical reference is written next to every expression.
	owner := content["properties"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, base+"#/components/schemas/Owner", owner["$$ref"])
}

func TestResolve_SuppliedDocument(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"A": map[string]any{"$ref": "#/components/schemas/B"},
				"B": map[string]any{"type": "string"},
			},
		},
	}
	const base = "https://example.com/api.json"
	reg, err := newTestResolver(t).Resolve(context.Background(), base, doc)
	require.NoError(t, err)

	b, ok := reg.Get("#/components/schemas/B")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "string"}, b.Content())

	a := doc["components"].(map[string]any)["schemas"].(map[string]any)["A"].(map[string]any)
	assert.Equal(t, base+"#/components/schemas/B", a["$$ref"])
}

func TestResolve_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "openapi.yaml", petstoreYAML)

	run := func() (*Registry, any) {
		r := newTestResolver(t)
		reg, err := r.Resolve(context.Background(), path, nil)
		require.NoError(t, err)
		doc, ok := reg.Document(reg.BaseURI())
		require.True(t, ok)
		return reg, doc
	}
	reg1, doc1 := run()
	reg2, doc2 := run()

	assert.Equal(t, reg1.Keys(), reg2.Keys())
	for _, k := range reg1.Keys() {
		r1, _ := reg1.Get(k)
		r2, _ := reg2.Get(k)
		if diff := cmp.Diff(r1.Content(), r2.Content()); diff != "" {
			t.Errorf("content of %s differs (-first +second):\n%s", k, diff)
		}
	}
	if diff := cmp.Diff(doc1, doc2); diff != "" {
		t.Errorf("annotated documents differ (-first +second):\n%s", diff)
	}
}

func TestResolve_CircularChain(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"A": map[string]any{"$ref": "#/components/schemas/B"},
				"B": map[string]any{"$ref": "#/components/schemas/A"},
			},
		},
	}
	const base = "https://example.com/api.json"
	_, err := newTestResolver(t).Resolve(context.Background(), base, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrCircularReference))

	var resErr *oaserrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, []string{
		base + "#/components/schemas/A",
		base + "#/components/schemas/B",
		base + "#/components/schemas/A",
	}, resErr.Chain)
}

func TestResolve_SelfReferenceIsNotACycle(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Node": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"value": map[string]any{"type": "integer"},
						"next":  map[string]any{"$ref": "#/components/schemas/Node"},
					},
				},
			},
		},
	}
	reg, err := newTestResolver(t).Resolve(context.Background(), "https://example.com/list.json", doc)
	require.NoError(t, err)

	node, ok := reg.Get("#/components/schemas/Node")
	require.True(t, ok)
	content := node.Content().(map[string]any)
	next := content["properties"].(map[string]any)["next"].(map[string]any)
	assert.Equal(t, node.CanonicalRef(), next["$$ref"])
}

func TestResolve_PointerMiss(t *testing.T) {
	doc := map[string]any{
		"schema": map[string]any{"$ref": "#/components/schemas/Nope"},
	}
	const base = "https://example.com/api.json"
	_, err := newTestResolver(t).Resolve(context.Background(), base, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrMissingReference))
	assert.Contains(t, err.Error(), "#/components/schemas/Nope")
	assert.Contains(t, err.Error(), base)
}

func TestResolve_NullAndNonStringSkipped(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"$ref": nil},
		"b": map[string]any{"$ref": 42},
		"properties": map[string]any{
			"$ref": map[string]any{"type": "string"},
		},
	}
	reg, err := newTestResolver(t).Resolve(context.Background(), "https://example.com/x.json", doc)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}

func TestResolve_ExternalFiles(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "openapi.yaml", `
components:
  schemas:
    Pet:
      $ref: "schemas/pet.yaml#/Pet"
`)
	writeFile(t, dir, "schemas/pet.yaml", `
Pet:
  type: object
  properties:
    tag:
      $ref: "../common.json#/Tag"
`)
	writeFile(t, dir, "common.json", `{"Tag": {"type": "string", "maxLength": 8}}`)

	reg, err := newTestResolver(t).Resolve(context.Background(), root, nil)
	require.NoError(t, err)

	petURL := fileURL(t, filepath.Join(dir, "schemas", "pet.yaml"))
	commonURL := fileURL(t, filepath.Join(dir, "common.json"))
	assert.Equal(t, []string{
		commonURL + "#/Tag",
		petURL + "#/Pet",
	}, reg.Keys())
	assert.Len(t, reg.Documents(), 3)

	tag, ok := reg.Get(commonURL + "#/Tag")
	require.True(t, ok)
	assert.Equal(t, "string", tag.Content().(map[string]any)["type"])

	pet, ok := reg.Get("schemas/pet.yaml#/Pet")
	require.True(t, ok)
	assert.Equal(t, petURL, pet.DocumentURL())
}

func TestResolve_ChainThroughDocuments(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "a.yaml", "start:\n  $ref: b.yaml#/hop\n")
	writeFile(t, dir, "b.yaml", "hop:\n  $ref: a.yaml#/start\n")

	_, err := newTestResolver(t).Resolve(context.Background(), root, nil)
	require.Error(t, err)
	var resErr *oaserrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.True(t, resErr.IsCircular())
	assert.Len(t, resErr.Chain, 3)
	assert.True(t, strings.HasSuffix(resErr.Chain[0], "a.yaml#/start"))
	assert.True(t, strings.HasSuffix(resErr.Chain[1], "b.yaml#/hop"))
}

func TestResolve_MissingExternalDocument(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "a.yaml", "x:\n  $ref: absent.yaml#/y\n")

	_, err := newTestResolver(t).Resolve(context.Background(), root, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrResolution))
	assert.True(t, errors.Is(err, oaserrors.ErrDecode))
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestResolve_DocumentLimit(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "a.yaml", "x:\n  $ref: b.yaml#/y\nz:\n  $ref: c.yaml#/y\n")
	writeFile(t, dir, "b.yaml", "y: 1\n")
	writeFile(t, dir, "c.yaml", "y: 2\n")

	_, err := newTestResolver(t, WithMaxCachedDocuments(2)).Resolve(context.Background(), root, nil)
	require.Error(t, err)
	var limErr *oaserrors.ResourceLimitError
	require.ErrorAs(t, err, &limErr)
	assert.Equal(t, "cached_documents", limErr.ResourceType)
}

func TestResolve_DepthLimit(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"$ref": "#/b"},
		"b": map[string]any{"$ref": "#/c"},
		"c": map[string]any{"$ref": "#/d"},
		"d": map[string]any{"type": "string"},
	}
	_, err := newTestResolver(t, WithMaxRefDepth(2)).Resolve(context.Background(), "https://example.com/x.json", doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrResourceLimit))
}

func TestResolve_HTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"components":{"schemas":{"Err":{"$ref":"common.yaml#/Error"}}}}`))
	})
	mux.HandleFunc("/api/common.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("Error:\n  type: object\n  required: [code]\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reg, err := newTestResolver(t).Resolve(context.Background(), srv.URL+"/api/openapi.json", nil)
	require.NoError(t, err)

	ref, ok := reg.Get("common.yaml#/Error")
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/api/common.yaml#/Error", ref.CanonicalRef())
	assert.Equal(t, []any{"code"}, ref.Content().(map[string]any)["required"])
}

func TestResolveAll(t *testing.T) {
	path := writeFile(t, t.TempDir(), "openapi.yaml", petstoreYAML)
	base := fileURL(t, path)

	reg, err := ResolveAll(context.Background(), newTestLoader(t), path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		base + "#/components/schemas/Cat",
		base + "#/components/schemas/Dog",
		base + "#/components/schemas/Owner",
		base + "#/components/schemas/Pet",
		base + "#/paths/~1pets~1%7Bid%7D/get",
	}, reg.Keys())

	op, ok := reg.Get("#/paths/~1pets~1{id}/get")
	require.True(t, ok)
	assert.Contains(t, op.Content().(map[string]any), "responses")

	// All families annotate the same tree.
	pet, ok := reg.Get("#/components/schemas/Pet")
	require.True(t, ok)
	disc := pet.Content().(map[string]any)["discriminator"].(map[string]any)
	assert.Equal(t, map[string]any{
		"cat": base + "#/components/schemas/Cat",
		"dog": base + "#/components/schemas/Dog",
	}, disc["$$mapping"])
	owner := pet.Content().(map[string]any)["properties"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, base+"#/components/schemas/Owner", owner["$$ref"])
}

const mappedOnlyRoot = `
components:
  schemas:
    Pet:
      type: object
      discriminator:
        propertyName: kind
        mapping:
          ext: "ext.yaml#/Ext"
`

func TestResolveAll_DocumentReachedOnlyByMapping(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "openapi.yaml", mappedOnlyRoot)
	writeFile(t, dir, "ext.yaml", `
Ext:
  type: object
  properties:
    tag:
      $ref: "#/Tag"
Tag:
  type: string
`)

	reg, err := ResolveAll(context.Background(), newTestLoader(t), root, nil)
	require.NoError(t, err)

	extURL := fileURL(t, filepath.Join(dir, "ext.yaml"))
	assert.Equal(t, []string{extURL + "#/Ext", extURL + "#/Tag"}, reg.Keys())

	ext, ok := reg.Get(extURL + "#/Ext")
	require.True(t, ok)
	tag := ext.Content().(map[string]any)["properties"].(map[string]any)["tag"].(map[string]any)
	assert.Equal(t, extURL+"#/Tag", tag["$$ref"])
}

func TestResolveAll_CycleInDocumentReachedOnlyByMapping(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "openapi.yaml", mappedOnlyRoot)
	writeFile(t, dir, "ext.yaml", `
Ext:
  $ref: "#/Loop"
Loop:
  $ref: "#/Ext"
`)

	_, err := ResolveAll(context.Background(), newTestLoader(t), root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrCircularReference)
}

func TestMappingExpr(t *testing.T) {
	assert.Equal(t, "#/components/schemas/Cat", MappingExpr("Cat"))
	assert.Equal(t, "#/components/schemas/pets.Cat", MappingExpr("pets.Cat"))
	assert.Equal(t, "#/components/schemas/Dog", MappingExpr("#/components/schemas/Dog"))
	assert.Equal(t, "cat.yaml", MappingExpr("cat.yaml"))
	assert.Equal(t, "other.json#/Cat", MappingExpr("other.json#/Cat"))
}

func TestMappedContent(t *testing.T) {
	doc := map[string]any{
		"Pet": map[string]any{
			"type":     "object",
			"required": []any{"name"},
		},
	}
	r := newTestResolver(t, WithKeyword("$ref"))
	doc["use"] = map[string]any{"$ref": "#/Pet"}
	reg, err := r.Resolve(context.Background(), "https://example.com/x.json", doc)
	require.NoError(t, err)

	ref, ok := reg.Get("#/Pet")
	require.True(t, ok)

	type schema struct {
		Type     string   `json:"type"`
		Required []string `json:"required"`
	}
	got, err := MappedContent[schema](ref)
	require.NoError(t, err)
	assert.Equal(t, schema{Type: "object", Required: []string{"name"}}, got)

	ptr1, err := MappedContent[*schema](ref)
	require.NoError(t, err)
	ptr2, err := MappedContent[*schema](ref)
	require.NoError(t, err)
	assert.Same(t, ptr1, ptr2, "mapped content is cached per type")

	_, err = MappedContent[schema](newReference("https://example.com/x.json#/none", "#/none"))
	assert.Error(t, err)
}
