package fieldpath

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var timeZero time.Time

// IsNil reports whether v is absent: an untyped nil or a nil pointer, map,
// slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// AsTime returns v as a time when it is one
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

// AsNumber returns v as a float64 when it is a Go number. Numeric strings are
// not numbers.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// AsSlice returns the elements of a slice or array. Byte slices are strings
// and are not returned.
func AsSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if IsNil(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ToString stringifies v for text comparisons. Absent values become "",
// slices are joined with commas and times use RFC 3339.
func ToString(v any) string {
	if IsNil(v) {
		return ""
	}
	if t, ok := AsTime(v); ok {
		return t.Format(time.RFC3339)
	}
	if items, ok := AsSlice(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = ToString(item)
		}
		return strings.Join(parts, ",")
	}
	if n, ok := AsNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s, err := cast.ToStringE(v)
	if err == nil {
		return s
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return fmt.Sprint(v)
}

// ToNumber coerces v to a number. Values with no numeric reading, including
// absent values, become NaN.
func ToNumber(v any) float64 {
	if IsNil(v) {
		return math.NaN()
	}
	if n, ok := AsNumber(v); ok {
		return n
	}
	if t, ok := AsTime(v); ok {
		return float64(t.UnixMilli())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Truthy mirrors a loose truthiness test: nil, false, zero, NaN and the empty
// string are falsy; everything else is truthy.
func Truthy(v any) bool {
	if IsNil(v) {
		return false
	}
	if n, ok := AsNumber(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}

// Equal is strict equality without string/number coercion. Go numeric kinds
// compare by value, string and bool kinds by their underlying value, and
// non-comparable values structurally.
func Equal(a, b any) bool {
	aNil, bNil := IsNil(a), IsNil(b)
	if aNil || bNil {
		return aNil && bNil
	}

	if an, ok := AsNumber(a); ok {
		bn, ok := AsNumber(b)
		return ok && an == bn
	}
	if at, ok := AsTime(a); ok {
		bt, ok := AsTime(b)
		return ok && at.Equal(bt)
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case av.Kind() == reflect.String && bv.Kind() == reflect.String:
		return av.String() == bv.String()
	case av.Kind() == reflect.Bool && bv.Kind() == reflect.Bool:
		return av.Bool() == bv.Bool()
	case av.Type() != bv.Type():
		return false
	case av.Comparable() && bv.Comparable():
		return av.Equal(bv)
	}
	return reflect.DeepEqual(a, b)
}
