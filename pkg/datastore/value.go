package datastore

import (
	"bytes"
	"fmt"
	"math"
	"reflect"

	json "github.com/goccy/go-json"
)

// Kind names the JSON kind of a stored value.
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, int, int32, float64, float32, json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// Clone deep-copies containers. Scalars are immutable and shared.
func Clone(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = Clone(val)
		}
		return out
	}
	return v
}

// Normalize converts arbitrary Go values into the store's JSON-compatible
// representation. Common shapes are converted directly; anything else
// (structs, typed maps) round-trips through JSON.
func Normalize(v any) any {
	switch typed := v.(type) {
	case nil, string, bool, int64, float64:
		return v
	case int:
		return int64(typed)
	case int32:
		return int64(typed)
	case uint:
		return int64(typed)
	case float32:
		return float64(typed)
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		f, _ := typed.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = Normalize(val)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = val
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = val
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = Normalize(val)
		}
		return out
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return v
	}
	return normalizeNumbers(decoded)
}

func normalizeNumbers(v any) any {
	switch typed := v.(type) {
	case json.Number:
		return Normalize(typed)
	case map[string]any:
		for key, val := range typed {
			typed[key] = normalizeNumbers(val)
		}
		return typed
	case []any:
		for idx, val := range typed {
			typed[idx] = normalizeNumbers(val)
		}
		return typed
	}
	return v
}

// Equal reports deep equality. Numbers compare by value, so int64(3) equals
// float64(3); every other pair needs matching kinds.
func Equal(a, b any) bool {
	if af, ok := number(a); ok {
		bf, ok := number(b)
		return ok && af == bf
	}
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for key, va := range ta {
			vb, ok := tb[key]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ra != rb || !ra.Comparable() {
		return false
	}
	return a == b
}

// Truthy mirrors JSON truthiness: false, zero numbers, empty strings and null
// are false; every container is true.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	}
	if f, ok := number(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func number(v any) (float64, bool) {
	switch typed := v.(type) {
	case int64:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	}
	return 0, false
}
