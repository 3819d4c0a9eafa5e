package validator

import (
	"bytes"
	"encoding/json"

	"github.com/erraggy/oaskit/internal/equalutil"
)

// toTree returns v as a decoded tree value.
func toTree(v any) any {
	if isTree(v) {
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

func isTree(v any) bool {
	switch t := v.(type) {
	case nil, bool, string:
		return true
	case []any:
		for _, item := range t {
			if !isTree(item) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, item := range t {
			if !isTree(item) {
				return false
			}
		}
		return true
	}
	return equalutil.IsNumber(v)
}

// dataType names the JSON type of a tree value. Numbers with an integral
// value are "integer".
func dataType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if d, ok := equalutil.ToDecimal(v); ok {
		if d.IsInteger() {
			return "integer"
		}
		return "number"
	}
	return "unknown"
}
