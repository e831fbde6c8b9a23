package query

import (
	"fmt"
	"net/url"
	"strconv"
)

// Page is a clamped offset/limit pair.
type Page struct {
	Offset int64
	Limit  int64
}

// NewPage clamps offset to >= 0 and limit to [1, maxLimit]. A nil limit
// means maxLimit.
func NewPage(offset, limit *int64, maxLimit int64) Page {
	p := Page{Limit: maxLimit}
	if offset != nil && *offset > 0 {
		p.Offset = *offset
	}
	if limit != nil {
		p.Limit = min(*limit, maxLimit)
	}
	p.Limit = max(p.Limit, 1)
	return p
}

// ParsePage reads the offset and limit query parameters.
func ParsePage(values url.Values, maxLimit int64) (Page, error) {
	offset, err := optionalInt(values, "offset")
	if err != nil {
		return Page{}, err
	}
	limit, err := optionalInt(values, "limit")
	if err != nil {
		return Page{}, err
	}
	return NewPage(offset, limit, maxLimit), nil
}

func optionalInt(values url.Values, key string) (*int64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &n, nil
}
