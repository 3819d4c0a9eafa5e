package validator

import (
	"context"
	"testing"

	"github.com/erraggy/oaskit/internal/testutil"
	"github.com/erraggy/oaskit/loader"
	"github.com/erraggy/oaskit/refs"
	"github.com/stretchr/testify/require"
)

// compileYAML compiles a standalone schema written in YAML.
func compileYAML(t *testing.T, src string, opts ...Option) *Node {
	t.Helper()
	n, err := Compile(testutil.DecodeYAML(t, src), nil, opts...)
	require.NoError(t, err)
	return n
}

// resolveYAML resolves every reference family of a document supplied in YAML.
func resolveYAML(t *testing.T, baseURL, src string) *refs.Registry {
	t.Helper()
	l, err := loader.New()
	require.NoError(t, err)
	reg, err := refs.ResolveAll(context.Background(), l, baseURL, testutil.DecodeYAML(t, src))
	require.NoError(t, err)
	return reg
}

func petstore(t *testing.T) *refs.Registry {
	t.Helper()
	return resolveYAML(t, testutil.PetstoreURL, testutil.PetstoreYAML)
}

func compilePet(t *testing.T, name string, opts ...Option) *Node {
	t.Helper()
	n, err := CompileRef(petstore(t), "#/components/schemas/"+name, opts...)
	require.NoError(t, err)
	return n
}

// tree decodes a YAML value for validation.
func tree(t *testing.T, src string) any {
	t.Helper()
	return testutil.DecodeYAML(t, src)
}
