package crud

import (
	"reflect"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// Equal compares two field values. Types with an Equal(T) bool method use
// it; time.Time values compare by instant, also behind pointers.
func Equal[T any](a, b T) bool {
	if eq, ok := any(a).(interface{ Equal(T) bool }); ok {
		return eq.Equal(b)
	}
	return equalValues(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equalValues(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Kind() == reflect.Pointer && b.Kind() == reflect.Pointer {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equalValues(a.Elem(), b.Elem())
	}
	if a.Type() == timeType && b.Type() == timeType {
		return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}
