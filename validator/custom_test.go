package validator

import (
	"errors"
	"testing"

	"github.com/erraggy/oaskit/internal/equalutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportCode returns a factory whose checker always reports code as a warning.
func reportCode(code int) CheckerFactory {
	return func(any, map[string]any) (Checker, error) {
		return CheckerFunc(func(_ any, r Reporter) {
			r.Report(SeverityWarning, code, "custom")
		}), nil
	}
}

func TestCustomExtensionChecker(t *testing.T) {
	even := func(kv any, _ map[string]any) (Checker, error) {
		if kv != true {
			return nil, nil
		}
		return CheckerFunc(func(v any, r Reporter) {
			d, ok := equalutil.ToDecimal(v)
			if ok && !d.Mod(decimal.NewFromInt(2)).IsZero() {
				r.Report(SeverityError, 9000, "value must be even at "+r.DataPath())
			}
		}), nil
	}
	n := compileYAML(t, "{type: object, properties: {n: {type: integer, x-even: true}}}",
		WithChecker("x-even", Supplement, even))

	assert.True(t, n.Validate(map[string]any{"n": 4}).Valid())
	res := n.Validate(map[string]any{"n": 3})
	require.Len(t, res.Items(), 1)
	assert.Equal(t, 9000, res.Items()[0].Code)
	assert.Equal(t, "value must be even at n", res.Items()[0].Message)
	assert.Equal(t, "#/properties/n/x-even", res.Items()[0].SchemaPath)
}

func TestCustomCheckerOverride(t *testing.T) {
	silent := func(any, map[string]any) (Checker, error) {
		return CheckerFunc(func(any, Reporter) {}), nil
	}
	n := compileYAML(t, "maxLength: 1", WithChecker("maxLength", Override, silent))
	assert.True(t, n.Validate("abc").Valid())
}

func TestCustomCheckerSupplementOrder(t *testing.T) {
	n := compileYAML(t, "minimum: 5",
		WithChecker("minimum", Supplement, reportCode(1)),
		WithChecker("minimum", Supplement, reportCode(2)))

	res := n.Validate(1)
	assert.Equal(t, []int{1, 2, CodeMinimum}, res.Codes())
	assert.Equal(t, []string{"minimum", "minimum", "minimum"}, n.Keywords())
}

func TestCustomCheckerOnUnknownKey(t *testing.T) {
	n := compileYAML(t, "{maxLength: 5, tenant: acme}", WithChecker("tenant", Supplement, reportCode(7)))
	assert.Equal(t, []int{CodeMaxLength, 7}, n.Validate("toolong").Codes())
}

func TestCustomCheckerFactoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Compile(tree(t, "x-rule: 1"), nil, WithChecker("x-rule", Supplement,
		func(any, map[string]any) (Checker, error) { return nil, boom }))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "#/x-rule", schemaErr.Path)
}
