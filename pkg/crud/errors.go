package crud

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error for HTTP mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindBadRequest
	KindInvalidSortSpec
	KindInvalidFilterSpec
	KindInvalidFieldSpec
	KindUnchangeableField
	KindValidation
	KindConflict
	KindUnsupportedMediaType
	KindDBValue
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad request"
	case KindInvalidSortSpec:
		return "invalid sort spec"
	case KindInvalidFilterSpec:
		return "invalid filter spec"
	case KindInvalidFieldSpec:
		return "invalid field spec"
	case KindUnchangeableField:
		return "unchangeable field"
	case KindValidation:
		return "validation failed"
	case KindConflict:
		return "conflict"
	case KindUnsupportedMediaType:
		return "unsupported media type"
	case KindDBValue:
		return "unexpected database value"
	default:
		return "internal error"
	}
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest, KindInvalidSortSpec, KindInvalidFilterSpec, KindInvalidFieldSpec,
		KindUnchangeableField, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type returned by generated handlers and the store.
type Error struct {
	Kind Kind
	// Field names the offending field for UnchangeableField and DBValue.
	Field string
	// Fields holds validation failures keyed by JSON field name.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when target carries no details,
// so errors.Is(err, ErrNotFound) works for wrapped store errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil && t.Field == "" && t.Fields == nil
}

// Sentinel errors
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrUnsupportedMediaType = &Error{Kind: KindUnsupportedMediaType}
)

// BadRequest wraps a malformed request error.
func BadRequest(err error) error {
	return &Error{Kind: KindBadRequest, Err: err}
}

// InvalidSortSpec wraps a sort parameter error.
func InvalidSortSpec(err error) error {
	return &Error{Kind: KindInvalidSortSpec, Err: err}
}

// InvalidFilterSpec wraps a filter parameter error.
func InvalidFilterSpec(err error) error {
	return &Error{Kind: KindInvalidFilterSpec, Err: err}
}

// InvalidFieldSpec wraps an include/exclude parameter error.
func InvalidFieldSpec(err error) error {
	return &Error{Kind: KindInvalidFieldSpec, Err: err}
}

// UnchangeableField reports an attempt to modify a field the caller owns no
// write access to.
func UnchangeableField(field string) error {
	return &Error{Kind: KindUnchangeableField, Field: field}
}

// Conflict wraps a constraint violation.
func Conflict(err error) error {
	return &Error{Kind: KindConflict, Err: err}
}

// DBValue reports a selected non-nullable column that came back NULL.
func DBValue(field string) error {
	return &Error{Kind: KindDBValue, Field: field}
}

// Internal wraps an unexpected failure.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}

// UnknownField reports a field name that does not exist on a resource.
func UnknownField(name string) error {
	return fmt.Errorf("unknown field %q", name)
}

// KindOf returns the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
