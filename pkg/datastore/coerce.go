package datastore

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Coerce converts a raw value reported by a rendering backend into the typed
// value the schema describes. The second result is false when the value must
// be omitted from the data: nil and empty strings.
//
// Numeric text that does not parse is returned unchanged so the validator
// reports a type error at that path instead of the write failing.
func Coerce(n *schema.Node, raw any) (any, bool) {
	raw = Normalize(raw)
	if raw == nil {
		return nil, false
	}
	if str, ok := raw.(string); ok && str == "" {
		return nil, false
	}
	typ := ""
	if n != nil {
		typ = n.Type
	}
	switch typ {
	case "integer":
		return coerceInteger(raw), true
	case "number":
		return coerceNumber(raw), true
	case "boolean":
		return coerceBoolean(raw), true
	}
	return raw, true
}

func coerceInteger(raw any) any {
	switch v := raw.(type) {
	case int64:
		return v
	case float64:
		if i, ok := wholeInt(v); ok {
			return i
		}
		return v
	case string:
		text := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			if i, ok := wholeInt(f); ok {
				return i
			}
			return f
		}
	}
	return raw
}

// wholeInt converts f when it is a whole number inside the int64 range.
// float64(math.MaxInt64) rounds up to 2^63, hence the strict upper bound.
func wholeInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func coerceNumber(raw any) any {
	switch v := raw.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(f) {
			return f
		}
	}
	return raw
}

func coerceBoolean(raw any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return v != ""
	}
	return Truthy(raw)
}
