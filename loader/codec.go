package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v4"
)

// Format is the detected content format of a document.
type Format string

const (
	// FormatJSON indicates the content starts with '{' or '['
	FormatJSON Format = "json"
	// FormatYAML indicates any other non-empty content
	FormatYAML Format = "yaml"
	// FormatEmpty indicates the content is empty or whitespace only
	FormatEmpty Format = "empty"
)

// MissingValue is the type of [Missing].
type MissingValue struct{}

// Missing is the tree value produced by decoding an empty document.
var Missing = MissingValue{}

// IsMissing reports whether v is the [Missing] sentinel.
func IsMissing(v any) bool {
	_, ok := v.(MissingValue)
	return ok
}

// Codec decodes raw document bytes into a tree value.
// A Codec is owned by a Loader; implementations must be safe for concurrent use.
type Codec interface {
	Decode(data []byte) (any, error)
}

// utf8BOM is skipped before sniffing.
var utf8BOM = []byte("\xef\xbb\xbf")

// DetectFormat sniffs the first non-whitespace byte of data.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\n\r")
	if len(trimmed) == 0 {
		return FormatEmpty
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// DefaultCodec decodes JSON with encoding/json (numbers kept as json.Number)
// and everything else with YAML.
type DefaultCodec struct{}

// Decode implements Codec.
func (DefaultCodec) Decode(data []byte) (any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	switch DetectFormat(data) {
	case FormatEmpty:
		return Missing, nil
	case FormatJSON:
		return decodeJSON(data)
	default:
		return decodeYAML(data)
	}
}

var _ Codec = DefaultCodec{}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after JSON value")
	}
	return v, nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		// A document holding only comments or "---".
		return Missing, nil
	}
	return normalize(v), nil
}

// normalize converts YAML-specific shapes into plain tree values:
// non-string mapping keys become strings and timestamps become RFC 3339 text.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return v
}
