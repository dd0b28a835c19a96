// Package ident holds the small value-shape helpers shared by the normalizr
// root package and the schema variants: id coercion, reference identity for
// the visited-set, and object-kind classification.
package ident

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// StringID coerces an entity id to the string form used as a store key.
// Numeric ids of equal value map to the same key regardless of how the input
// was decoded (int from YAML, float64 or json.Number from JSON).
func StringID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(id)
	default:
		return fmt.Sprint(id)
	}
}

// IsObjectLike reports whether v is a traversable composite: a decoded JSON
// object or array. Primitives and nil are never object-like.
func IsObjectLike(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// Kind names the shape of a value for diagnostics: null, array, object or
// primitive.
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "primitive"
}

// SameRef reports whether a and b are the very same reference. Only maps,
// slices and pointers carry identity; values of other kinds are never the
// same reference even when equal.
func SameRef(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

// ShallowCopy returns a new map with the same top-level entries as m.
func ShallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
