package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
)

// MaxBodyBytes caps request bodies read by DecodeBody.
const MaxBodyBytes = 1 << 20

// FormDecoder is implemented by generated body types.
type FormDecoder interface {
	DecodeForm(form url.Values) error
}

// DecodeBody decodes a JSON, urlencoded or multipart body into v.
// Any other content type is ErrUnsupportedMediaType.
func DecodeBody(w http.ResponseWriter, r *http.Request, v FormDecoder) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ErrUnsupportedMediaType
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return BadRequest(fmt.Errorf("decode json body: %w", err))
		}
		return nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return BadRequest(fmt.Errorf("parse form body: %w", err))
		}
		return v.DecodeForm(r.PostForm)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return BadRequest(fmt.Errorf("parse multipart body: %w", err))
		}
		return v.DecodeForm(r.PostForm)
	default:
		return ErrUnsupportedMediaType
	}
}

// FormField parses form[name] into dst when present.
func FormField[T any](form url.Values, name string, dst *T, parse func(string) (T, error)) error {
	raw, ok := formValue(form, name)
	if !ok {
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return formError(name, err)
	}
	*dst = v
	return nil
}

// FormNullable parses form[name] into a nullable dst; an empty value is nil.
func FormNullable[T any](form url.Values, name string, dst **T, parse func(string) (T, error)) error {
	raw, ok := formValue(form, name)
	if !ok {
		return nil
	}
	if raw == "" {
		*dst = nil
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return formError(name, err)
	}
	*dst = &v
	return nil
}

// FormOptional parses form[name] into an Optional when present.
func FormOptional[T any](form url.Values, name string, dst *Optional[T], parse func(string) (T, error)) error {
	raw, ok := formValue(form, name)
	if !ok {
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return formError(name, err)
	}
	*dst = Some(v)
	return nil
}

// FormOptionalNullable parses form[name] into a double option; an empty
// value is present and nil.
func FormOptionalNullable[T any](form url.Values, name string, dst *Optional[*T], parse func(string) (T, error)) error {
	raw, ok := formValue(form, name)
	if !ok {
		return nil
	}
	if raw == "" {
		*dst = Some[*T](nil)
		return nil
	}
	v, err := parse(raw)
	if err != nil {
		return formError(name, err)
	}
	*dst = Some(&v)
	return nil
}

func formValue(form url.Values, name string) (string, bool) {
	values, ok := form[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func formError(name string, err error) error {
	return BadRequest(fmt.Errorf("form field %s: %w", name, err))
}

// IsUnsupportedMediaType reports whether err is ErrUnsupportedMediaType.
func IsUnsupportedMediaType(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType)
}
