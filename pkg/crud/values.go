package crud

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ParseValue parses a path, form or filter value into T. Supported are the
// Go scalar kinds (including named types over them), time.Time in RFC 3339,
// byte slices in standard base64 as encoding/json writes them, and any type
// whose pointer implements encoding.TextUnmarshaler.
func ParseValue[T any](s string) (T, error) {
	var v T
	if err := parseInto(&v, s); err != nil {
		return v, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

func parseInto(dst any, s string) error {
	switch p := dst.(type) {
	case *string:
		*p = s
		return nil
	case *time.Time:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		*p = t
		return nil
	case encoding.TextUnmarshaler:
		return p.UnmarshalText([]byte(s))
	}

	rv := reflect.ValueOf(dst).Elem()
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)
	case reflect.Slice:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported type %s", rv.Type())
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return err
		}
		rv.SetBytes(b)
	default:
		return fmt.Errorf("unsupported type %s", rv.Type())
	}
	return nil
}
