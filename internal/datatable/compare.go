package datatable

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Compare orders two cell values: numbers numerically across integer and
// float kinds, strings lexicographically, times chronologically, false before
// true. Nil sorts first. Other combinations compare their fmt.Sprint forms.
func Compare(a, b any) int {
	aNil, bNil := isNil(a), isNil(b)
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return -1
	case bNil:
		return 1
	}

	a, b = deref(a), deref(b)

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(av.Kind()) && isInt(bv.Kind()):
		return cmp.Compare(av.Int(), bv.Int())
	case isUint(av.Kind()) && isUint(bv.Kind()):
		return cmp.Compare(av.Uint(), bv.Uint())
	case isNumber(av.Kind()) && isNumber(bv.Kind()):
		return cmp.Compare(toFloat(av), toFloat(bv))
	case av.Kind() == reflect.String && bv.Kind() == reflect.String:
		return strings.Compare(av.String(), bv.String())
	case av.Kind() == reflect.Bool && bv.Kind() == reflect.Bool:
		return cmp.Compare(boolRank(av.Bool()), boolRank(bv.Bool()))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	}
	return v.Float()
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
