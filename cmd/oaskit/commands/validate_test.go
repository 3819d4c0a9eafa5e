package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestSetupValidateFlags(t *testing.T) {
	fs, flags := SetupValidateFlags()

	t.Run("default values", func(t *testing.T) {
		assert.False(t, flags.FastFail)
		assert.False(t, flags.StrictFormats)
		assert.False(t, flags.NoWarnings)
		assert.False(t, flags.Quiet)
		assert.Empty(t, flags.Mode)
		assert.Equal(t, "en", flags.Lang)
		assert.Equal(t, FormatText, flags.Format)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"--fast-fail", "--no-warnings", "-q", "--mode", "request", "--format", "json", "spec.yaml#/components/schemas/Pet", "pet.json"}
		require.NoError(t, fs.Parse(args))

		assert.True(t, flags.FastFail)
		assert.True(t, flags.NoWarnings)
		assert.True(t, flags.Quiet)
		assert.Equal(t, "request", flags.Mode)
		assert.Equal(t, "json", flags.Format)
		assert.Equal(t, []string{"spec.yaml#/components/schemas/Pet", "pet.json"}, fs.Args())
	})
}

func TestValidateFlagsOptions(t *testing.T) {
	_, flags := SetupValidateFlags()
	opts, err := flags.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	flags.Mode = "sideways"
	_, err = flags.Options()
	assert.ErrorContains(t, err, "invalid mode 'sideways'")

	flags.Mode = "response"
	flags.Lang = "not a tag!"
	_, err = flags.Options()
	assert.ErrorContains(t, err, "invalid lang")
}

func TestSplitSchemaTarget(t *testing.T) {
	spec, expr, err := splitSchemaTarget("openapi.yaml#/components/schemas/Pet")
	require.NoError(t, err)
	assert.Equal(t, "openapi.yaml", spec)
	assert.Equal(t, "#/components/schemas/Pet", expr)

	for _, bad := range []string{"openapi.yaml", "#/components/schemas/Pet", "openapi.yaml#"} {
		_, _, err := splitSchemaTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestHandleValidate_Valid(t *testing.T) {
	path := writePetstore(t, map[string]string{"pet.yaml": "petType: Cat\nname: Tom\n"})
	stdout, stderr := captureOutput(t)

	err := HandleValidate([]string{path + "#/components/schemas/Pet", filepath.Join(filepath.Dir(path), "pet.yaml")})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "✓ Validation passed")
}

func TestHandleValidate_Invalid(t *testing.T) {
	path := writePetstore(t, map[string]string{"pet.json": `{"petType": "Dog", "name": "Rex"}`})
	stdout, stderr := captureOutput(t)

	err := HandleValidate([]string{path + "#/components/schemas/Pet", filepath.Join(filepath.Dir(path), "pet.json")})
	require.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, stdout.String(), `required property "packSize" is missing [1016]`)
	assert.Contains(t, stderr.String(), "✗ Validation failed")
}

func TestHandleValidate_StructuredOutput(t *testing.T) {
	path := writePetstore(t, map[string]string{"pet.json": `{"petType": "Cat", "name": "Tom", "id": 7}`})
	data := filepath.Join(filepath.Dir(path), "pet.json")
	target := path + "#/components/schemas/Pet"

	t.Run("json", func(t *testing.T) {
		stdout, _ := captureOutput(t)
		err := HandleValidate([]string{"--format", "json", "--mode", "request", target, data})
		require.ErrorIs(t, err, ErrFailed)

		var out ValidateOutput
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
		assert.False(t, out.Valid)
		assert.Equal(t, 1, out.ErrorCount)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "error", out.Issues[0].Severity)
		assert.Equal(t, 1032, out.Issues[0].Code)
		assert.Equal(t, "id", out.Issues[0].DataPath)
		assert.True(t, strings.HasSuffix(out.Schema, "#/components/schemas/Pet"))
	})

	t.Run("yaml", func(t *testing.T) {
		stdout, _ := captureOutput(t)
		require.NoError(t, HandleValidate([]string{"--format", "yaml", target, data}))

		var out ValidateOutput
		require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
		assert.True(t, out.Valid)
		assert.Empty(t, out.Issues)
	})
}

func TestHandleValidate_Language(t *testing.T) {
	path := writePetstore(t, map[string]string{"pet.json": `{"petType": "Cat"}`})
	stdout, _ := captureOutput(t)

	err := HandleValidate([]string{"-q", "--lang", "de", path + "#/components/schemas/Pet", filepath.Join(filepath.Dir(path), "pet.json")})
	require.ErrorIs(t, err, ErrFailed)
	assert.NotContains(t, stdout.String(), "is missing")
	assert.Contains(t, stdout.String(), "[1016]")
}

func TestHandleValidate_Errors(t *testing.T) {
	captureOutput(t)
	path := writePetstore(t, nil)

	assert.Error(t, HandleValidate([]string{}))
	assert.Error(t, HandleValidate([]string{path}))
	assert.Error(t, HandleValidate([]string{"--format", "xml", path + "#/components/schemas/Pet", "-"}))
	assert.Error(t, HandleValidate([]string{path, "-"}))
	assert.Error(t, HandleValidate([]string{path + "#/components/schemas/Fish", "-"}))
	assert.Error(t, HandleValidate([]string{path + "#/components/schemas/Pet", "/nonexistent/pet.json"}))
	assert.NoError(t, HandleValidate([]string{"--help"}))
}
