package crud

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Optional marks whether a value was supplied. With a pointer type it forms
// a double option: absent, present and null, or present with a value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrElse returns the value when supplied and fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// IsZero reports an absent value, which lets `omitzero` drop it from JSON.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON treats null as "present, nil" when T is a pointer and as
// absent otherwise. Only pointer fields map to nullable columns, so a null
// for a slice or map never reaches the database as NULL.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{Set: nullable[T]()}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func nullable[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Pointer
}
