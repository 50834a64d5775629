package settings

import (
	"encoding/json"
	"math"
	"reflect"
)

// Normalize returns v as it looks after a JSON encode/decode round trip:
// objects become map[string]interface{}, arrays []interface{}, numbers
// float64. Members that JSON cannot represent (funcs, channels, complex
// numbers) are dropped from objects and become null in arrays; NaN and
// infinities become null.
func Normalize(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		cleaned, keep := sanitize(reflect.ValueOf(v))
		if !keep {
			return nil
		}
		if data, err = json.Marshal(cleaned); err != nil {
			return nil
		}
	}

	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// Equal reports whether a and b are structurally equal once both are
// normalized, so object key order and wrapper types do not matter. A bare
// func or channel normalizes to null and so equals nil.
func Equal(a, b interface{}) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}

// sanitize rebuilds rv using only JSON-representable parts. keep is false
// for values an encoder would omit entirely.
func sanitize(rv reflect.Value) (interface{}, bool) {
	if !rv.IsValid() {
		return nil, true
	}
	if rv.CanInterface() {
		if data, err := json.Marshal(rv.Interface()); err == nil {
			return json.RawMessage(data), true
		}
	}

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true
		}
		return f, true
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, true
		}
		return sanitize(rv.Elem())
	case reflect.Map:
		if rv.IsNil() {
			return nil, true
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := mapKey(iter.Key())
			if !ok {
				continue
			}
			if value, keep := sanitize(iter.Value()); keep {
				out[key] = value
			}
		}
		return out, true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if value, keep := sanitize(rv.Index(i)); keep {
				out[i] = value
			}
		}
		return out, true
	case reflect.Struct:
		out := make(map[string]interface{})
		t := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag := field.Tag.Get("json"); tag != "" {
				if tag == "-" {
					continue
				}
				if n := tagName(tag); n != "" {
					name = n
				}
			}
			if value, keep := sanitize(rv.Field(i)); keep {
				out[name] = value
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func mapKey(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Interface:
		if s, ok := k.Interface().(string); ok {
			return s, true
		}
	}
	data, err := json.Marshal(k.Interface())
	if err != nil {
		return "", false
	}
	return string(data), true
}

func tagName(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}
