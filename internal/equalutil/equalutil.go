// Package equalutil provides structural equality for decoded document values.
//
// Numbers are compared by magnitude, not by representation: 1, 1.0, "1e0"
// decoded as json.Number, and int64(1) are all equal.
package equalutil

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal converts a decoded numeric value into an arbitrary-precision decimal.
// Returns false for non-numeric values and for NaN or infinite floats.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return floatDecimal(float64(n))
	case float64:
		return floatDecimal(n)
	}
	return decimal.Decimal{}, false
}

func floatDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	// Shortest round-trip representation, so 9.999 stays 9.999.
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))
	return d, err == nil
}

// IsNumber reports whether v is a decoded numeric value.
func IsNumber(v any) bool {
	_, ok := ToDecimal(v)
	return ok
}

// DeepEqual reports whether a and b are structurally equal.
func DeepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := ToDecimal(a); ok {
		db, ok := ToDecimal(b)
		return ok && da.Equal(db)
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !DeepEqual(v, w) {
				return false
			}
		}
		return true
	}
	return false
}

// Key returns a canonical string for v such that Key(a) == Key(b) exactly
// when DeepEqual(a, b). Used to detect duplicates in linear time.
func Key(v any) string {
	var b strings.Builder
	writeKey(&b, v)
	return b.String()
}

func writeKey(b *strings.Builder, v any) {
	if v == nil {
		b.WriteString("null")
		return
	}
	if d, ok := ToDecimal(v); ok {
		b.WriteString("n:")
		b.WriteString(d.String())
		return
	}
	switch t := v.(type) {
	case string:
		b.WriteString(strconv.Quote(t))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeKey(b, item)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeKey(b, t[k])
		}
		b.WriteByte('}')
	default:
		b.WriteString("?")
	}
}

// FirstDuplicate returns the indexes of the first pair of equal items.
func FirstDuplicate(items []any) (first, second int, found bool) {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		k := Key(item)
		if j, ok := seen[k]; ok {
			return j, i, true
		}
		seen[k] = i
	}
	return 0, 0, false
}
