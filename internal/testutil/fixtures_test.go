package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

// TestPetstoreYAML verifies the fixture decodes and holds the schemas tests rely on.
func TestPetstoreYAML(t *testing.T) {
	doc, ok := DecodeYAML(t, PetstoreYAML).(map[string]any)
	require.True(t, ok, "document should decode to an object")

	components, ok := doc["components"].(map[string]any)
	require.True(t, ok)
	schemas, ok := components["schemas"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"Pet", "Cat", "Dog", "Lizard", "Node"} {
		assert.Contains(t, schemas, name)
	}
}

// TestWriteTempYAML verifies that documents are written as YAML to a temp file.
func TestWriteTempYAML(t *testing.T) {
	path := WriteTempYAML(t, map[string]any{"openapi": "3.0.3"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "3.0.3", got["openapi"])
	assert.Equal(t, ".yaml", filepath.Ext(path))
}

// TestWriteTempJSON verifies that documents are written as JSON to a temp file.
func TestWriteTempJSON(t *testing.T) {
	path := WriteTempJSON(t, map[string]any{"openapi": "3.0.3"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "3.0.3", got["openapi"])
}

// TestWriteFiles verifies nested relative paths are created.
func TestWriteFiles(t *testing.T) {
	dir := WriteFiles(t, map[string]string{
		"openapi.yaml":     "openapi: 3.0.3\n",
		"schemas/pet.yaml": "type: object\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "schemas", "pet.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "type: object\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "openapi.yaml"))
}
