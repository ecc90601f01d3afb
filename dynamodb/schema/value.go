package schema

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"reflect"
	"strconv"

	"golang.org/x/exp/constraints"
)

type numeric interface {
	constraints.Integer | constraints.Float
}

func toFloat[T numeric](v T) float64 {
	return float64(v)
}

// AsNumber converts any Go numeric value to a float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return toFloat(n), true
	case int8:
		return toFloat(n), true
	case int16:
		return toFloat(n), true
	case int32:
		return toFloat(n), true
	case int64:
		return toFloat(n), true
	case uint:
		return toFloat(n), true
	case uint8:
		return toFloat(n), true
	case uint16:
		return toFloat(n), true
	case uint32:
		return toFloat(n), true
	case uint64:
		return toFloat(n), true
	case float32:
		return toFloat(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// MatchesKind reports whether v is a Go value of the primitive kind k.
func MatchesKind(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		_, ok := AsNumber(v)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindBinary:
		_, ok := v.([]byte)
		return ok
	}
	return false
}

// Equal compares values structurally. Numbers of different Go types are
// equal when their values are.
func Equal(a, b any) bool {
	if fa, ok := AsNumber(a); ok {
		fb, ok := AsNumber(b)
		return ok && fa == fb
	}
	if ba, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ba, bb)
	}
	if ma, ok := Object(a); ok {
		mb, ok := Object(b)
		if !ok || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, found := mb[k]
			if !found || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	if la, ok := Slice(a); ok {
		lb, ok := Slice(b)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Slice returns the elements of any slice or array value except []byte.
func Slice(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return s, true
	case Set:
		return []any(s), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Object returns v as a map when it is a map keyed by strings.
func Object(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Clone deep copies maps, slices and byte slices.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case Set:
		out := make(Set, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case []byte:
		return bytes.Clone(t)
	}
	return v
}

// elementKey identifies a set element for uniqueness checks.
func elementKey(v any) (string, bool) {
	switch e := v.(type) {
	case string:
		return "S" + e, true
	case []byte:
		return "B" + base64.StdEncoding.EncodeToString(e), true
	}
	if f, ok := AsNumber(v); ok {
		return "N" + strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return "", false
}

// TypeOf describes a Go value with the kind names used in error payloads.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return string(KindString)
	case bool:
		return string(KindBoolean)
	case []byte:
		return string(KindBinary)
	case Set:
		return string(KindSet)
	}
	if _, ok := AsNumber(v); ok {
		return string(KindNumber)
	}
	if _, ok := Object(v); ok {
		return "object"
	}
	if _, ok := Slice(v); ok {
		return "array"
	}
	return reflect.TypeOf(v).String()
}
