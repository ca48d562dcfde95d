package toolschema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the native value kind a declared parameter type maps to.
type Kind int

const (
	KindText Kind = iota
	KindWhole
	KindFloat
	KindFlag
	KindSeq
	KindMap
)

var kindByType = map[string]Kind{
	"string":  KindText,
	"integer": KindWhole,
	"number":  KindFloat,
	"boolean": KindFlag,
	"array":   KindSeq,
	"object":  KindMap,
}

// KindOf maps a declared registry type onto a Kind. Unknown types map to
// KindText and ok is false.
func KindOf(declared string) (k Kind, ok bool) {
	k, ok = kindByType[strings.ToLower(strings.TrimSpace(declared))]
	if !ok {
		return KindText, false
	}
	return k, true
}

func (k Kind) String() string {
	switch k {
	case KindWhole:
		return "whole"
	case KindFloat:
		return "float"
	case KindFlag:
		return "flag"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	default:
		return "text"
	}
}

// JSONType is the JSON Schema type keyword for k.
func (k Kind) JSONType() string {
	switch k {
	case KindWhole:
		return "integer"
	case KindFloat:
		return "number"
	case KindFlag:
		return "boolean"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	default:
		return "string"
	}
}

// Coerce converts v to k's native representation when that loses nothing:
// integral floats and numeric strings become whole numbers, "true"/"false"
// become flags, scalars become text. Anything else is an error.
func (k Kind) Coerce(v any) (any, error) {
	switch k {
	case KindText:
		return toText(v)
	case KindWhole:
		return toWhole(v)
	case KindFloat:
		return toFloat(v)
	case KindFlag:
		return toFlag(v)
	case KindSeq:
		return toSeq(v)
	case KindMap:
		return toMap(v)
	}
	return nil, fmt.Errorf("unsupported kind %d", k)
}

func toText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	}
	return nil, fmt.Errorf("expected text, got %T", v)
}

func toWhole(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("whole number %d out of range", x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("whole number %d out of range", x)
		}
		return int64(x), nil
	case float64:
		return integral(x)
	case float32:
		return integral(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected whole number, got %q", x.String())
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
		return nil, fmt.Errorf("expected whole number, got %q", x)
	}
	return nil, fmt.Errorf("expected whole number, got %T", v)
}

func integral(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return nil, fmt.Errorf("expected whole number, got %v", f)
	}
	return int64(f), nil
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(x).Uint()), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", x.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected number, got %q", x)
		}
		return f, nil
	}
	return nil, fmt.Errorf("expected number, got %T", v)
}

func toFlag(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("expected boolean, got %q", x)
		}
		return b, nil
	}
	return nil, fmt.Errorf("expected boolean, got %T", v)
}

func toSeq(v any) (any, error) {
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected array, got %T", v)
}

func toMap(v any) (any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected object, got %T", v)
}
