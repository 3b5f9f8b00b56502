package lang

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"time"
)

// FromNative converts a Go value into a [Value].
//
// Strings, booleans and byte slices map directly. Numbers are formatted in
// decimal and times as RFC 3339, since the template language has no numeric
// type. nil becomes the empty string. Slices and arrays become lists; maps
// with string keys (or keys formatted with fmt) become maps.
func FromNative(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case Map:
		return MapValue(x), nil
	case *SubTemplate:
		return SubTemplateValue(x), nil
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case []byte:
		return StringValue(string(x)), nil
	case int:
		return StringValue(strconv.Itoa(x)), nil
	case int64:
		return StringValue(strconv.FormatInt(x, 10)), nil
	case uint64:
		return StringValue(strconv.FormatUint(x, 10)), nil
	case float64:
		return StringValue(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case time.Time:
		return StringValue(x.Format(time.RFC3339)), nil
	case []any:
		return listFromNative(len(x), func(i int) any { return x[i] })
	case map[string]any:
		m := make(Map, len(x))

		for k, e := range x {
			val, err := FromNative(e)
			if err != nil {
				return Value{}, WrapError(err).With(slog.String("key", k))
			}

			m[k] = val
		}

		return MapValue(m), nil
	}

	return fromReflect(reflect.ValueOf(v))
}

func listFromNative(n int, at func(int) any) (Value, error) {
	elems := make([]Value, n)

	for i := range elems {
		e, err := FromNative(at(i))
		if err != nil {
			return Value{}, WrapError(err).With(slog.Int("index", i))
		}

		elems[i] = e
	}

	return ListValue(elems...), nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}

		return FromNative(rv.Elem().Interface())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return StringValue(strconv.FormatInt(rv.Int(), 10)), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return StringValue(strconv.FormatUint(rv.Uint(), 10)), nil

	case reflect.Float32, reflect.Float64:
		return StringValue(strconv.FormatFloat(rv.Float(), 'g', -1, 64)), nil

	case reflect.String:
		return StringValue(rv.String()), nil

	case reflect.Bool:
		return BoolValue(rv.Bool()), nil

	case reflect.Slice, reflect.Array:
		return listFromNative(rv.Len(), func(i int) any {
			return rv.Index(i).Interface()
		})

	case reflect.Map:
		m := make(Map, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())

			val, err := FromNative(iter.Value().Interface())
			if err != nil {
				return Value{}, WrapError(err).With(slog.String("key", k))
			}

			m[k] = val
		}

		return MapValue(m), nil

	default:
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return StringValue(s.String()), nil
		}

		return Value{}, ErrUnsupportedType.With(
			slog.String("type", rv.Type().String()),
		)
	}
}

// MapFromNative converts a string-keyed Go map into a [Map].
func MapFromNative(m map[string]any) (Map, error) {
	v, err := FromNative(m)
	if err != nil {
		return nil, err
	}

	return v.m, nil
}

// Native converts v into plain Go values: string, bool, []any and
// map[string]any. Sub-templates become a descriptive string.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b

	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}

		return out

	case KindMap:
		return v.m.Native()

	case KindTemplate:
		return v.String()

	default:
		return v.str
	}
}

// Native converts m into a map of plain Go values.
func (m Map) Native() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Native()
	}

	return out
}
