package data

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind is the runtime shape of a field value.
//
// Values held by the engine are always one of:
//   - nil                     KindUndefined
//   - string                  KindText (C, M, G and D fields)
//   - float64                 KindNumber
//   - bool                    KindLogical
//   - map[string]interface{}  KindObject
//   - []interface{}           KindArray
type Kind int

const (
	KindUndefined Kind = iota
	KindText
	KindNumber
	KindLogical
	KindObject
	KindArray
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "string"
	case KindNumber:
		return "number"
	case KindLogical:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	default:
		return "undefined"
	}
}

// KindOf classifies a normalized value
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindUndefined
	case string:
		return KindText
	case float64:
		return KindNumber
	case bool:
		return KindLogical
	case map[string]interface{}, Record:
		return KindObject
	case []interface{}:
		return KindArray
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return KindFunction
	}
	return KindUndefined
}

// SameKind compares kinds the way a field type check does: arrays count as objects
func SameKind(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindArray {
		ka = KindObject
	}
	if kb == KindArray {
		kb = KindObject
	}
	return ka == kb
}

// Normalize converts caller-supplied Go values into the engine's value shapes.
// Integers and float32 become float64, typed maps and slices become generic
// ones, time.Time becomes an RFC3339 string. Unknown types pass through.
func Normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, string, float64, bool:
		return x
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case time.Time:
		return x.Format(time.RFC3339)
	case Record:
		return Normalize(map[string]interface{}(x))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// Clone deep-copies maps and slices; scalars are returned as is
func Clone(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	case Record:
		return x.Clone()
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// CanonicalJSON renders a value as JSON with sorted object keys
func CanonicalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatNumber renders a number the way expression string concatenation does
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
