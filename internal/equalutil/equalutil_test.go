package equalutil

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{"json number", json.Number("12.50"), "12.5", true},
		{"int", 7, "7", true},
		{"int64", int64(-3), "-3", true},
		{"uint64", uint64(18446744073709551615), "18446744073709551615", true},
		{"float keeps shortest form", 9.999, "9.999", true},
		{"decimal", decimal.RequireFromString("1e3"), "1000", true},
		{"string", "1", "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ToDecimal(tt.value)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestDeepEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int vs float", 1, 1.0, true},
		{"json number vs int", json.Number("1.0"), int64(1), true},
		{"different numbers", 1, 2, false},
		{"number vs string", 1, "1", false},
		{"nil vs nil", nil, nil, true},
		{"nil vs value", nil, false, false},
		{"nested maps", map[string]any{"a": []any{1, "x"}}, map[string]any{"a": []any{1.0, "x"}}, true},
		{"map key mismatch", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"array length", []any{1}, []any{1, 1}, false},
		{"bools", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, Key(tt.a) == Key(tt.b), "Key must agree with DeepEqual")
		})
	}
}

func TestFirstDuplicate(t *testing.T) {
	i, j, found := FirstDuplicate([]any{"a", 1, map[string]any{"x": 2}, 1.0})
	require.True(t, found)
	assert.Equal(t, 1, i)
	assert.Equal(t, 3, j)

	_, _, found = FirstDuplicate([]any{"1", 1, true})
	assert.False(t, found)
}
