// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oaskit/internal/fileutil"
	"go.yaml.in/yaml/v4"
)

// PetstoreURL is the base URL tests register PetstoreYAML under.
const PetstoreURL = "file:///testdata/petstore.yaml"

// PetstoreYAML is an OAS 3.0 document exercising local references, a
// discriminator with explicit and implicit mappings, a recursive schema,
// readOnly/writeOnly properties and schema examples.
const PetstoreYAML = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths:
  /pets/{id}:
    get:
      operationId: getPet
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
      required: [petType, name]
      properties:
        id:
          type: integer
          readOnly: true
        petType:
          type: string
        name:
          type: string
          minLength: 1
          maxLength: 10
        secret:
          type: string
          writeOnly: true
      discriminator:
        propertyName: petType
        mapping:
          cat: Cat
          dog: "#/components/schemas/Dog"
      example:
        petType: Lizard
        name: Rex
    Cat:
      allOf:
        - $ref: "#/components/schemas/Pet"
        - type: object
          properties:
            huntingSkill:
              type: string
              enum: [clueless, lazy, adventurous, aggressive]
    Dog:
      allOf:
        - $ref: "#/components/schemas/Pet"
        - type: object
          required: [packSize]
          properties:
            packSize:
              type: integer
              minimum: 0
              example: -1
    Lizard:
      allOf:
        - $ref: "#/components/schemas/Pet"
    Node:
      type: object
      required: [value]
      properties:
        value:
          type: integer
        next:
          $ref: "#/components/schemas/Node"
      example:
        value: 1
        next:
          value: 2
`

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, fileutil.OwnerReadWrite); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}

	return tmpFile
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(tmpFile, data, fileutil.OwnerReadWrite); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}

	return tmpFile
}

// WriteFiles writes files, keyed by slash-separated relative path, into a
// fresh temporary directory and returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), fileutil.OwnerDir); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), fileutil.OwnerReadWrite); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// DecodeYAML decodes a YAML (or JSON) source into a tree value.
func DecodeYAML(t *testing.T, src string) any {
	t.Helper()

	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("Failed to decode YAML: %v", err)
	}
	return v
}
