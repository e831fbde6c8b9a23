package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Filter is one parsed filter for a field of type T. Values holds a single
// element for every operator except OpIn.
type Filter[T any] struct {
	Op     Operator
	Values []T
}

// Condition renders the filter against column.
func (f Filter[T]) Condition(column string) Condition {
	if f.Op == OpIn {
		values := make([]any, len(f.Values))
		for i, v := range f.Values {
			values[i] = v
		}
		return In(column, values)
	}
	var value any
	if len(f.Values) > 0 {
		value = f.Values[0]
	}
	return Compare(column, f.Op, value)
}

// FilterParam is a raw filter taken from the query string.
type FilterParam struct {
	Field string
	Op    Operator
	Value string
}

// ParseFilterParams extracts every filter parameter from values. Accepted
// key forms are filter[field], filter[field]op, filter[field].op,
// filter.field and filter.field.op. Keys not starting with "filter[" or
// "filter." are ignored. Results are ordered by key.
func ParseFilterParams(values url.Values) ([]FilterParam, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasPrefix(key, "filter[") || strings.HasPrefix(key, "filter.") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var params []FilterParam
	for _, key := range keys {
		field, opName, err := splitFilterKey(key)
		if err != nil {
			return nil, err
		}
		op, err := ParseOperator(opName)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", key, err)
		}
		for _, v := range values[key] {
			params = append(params, FilterParam{Field: field, Op: op, Value: v})
		}
	}
	return params, nil
}

func splitFilterKey(key string) (field, op string, err error) {
	if rest, ok := strings.CutPrefix(key, "filter["); ok {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", "", fmt.Errorf("malformed filter key %q", key)
		}
		field = rest[:end]
		op = strings.TrimPrefix(rest[end+1:], ".")
	} else {
		rest := strings.TrimPrefix(key, "filter.")
		field, op, _ = strings.Cut(rest, ".")
	}
	if field == "" {
		return "", "", fmt.Errorf("malformed filter key %q: empty field", key)
	}
	return field, op, nil
}

// ParseFilter parses raw into a filter for a non-nullable field.
func ParseFilter[T any](op Operator, raw string, parse func(string) (T, error)) (Filter[T], error) {
	if op == OpIn {
		var values []T
		if raw != "" {
			for _, part := range strings.Split(raw, ",") {
				v, err := parse(part)
				if err != nil {
					return Filter[T]{}, err
				}
				values = append(values, v)
			}
		}
		return Filter[T]{Op: op, Values: values}, nil
	}
	v, err := parse(raw)
	if err != nil {
		return Filter[T]{}, err
	}
	return Filter[T]{Op: op, Values: []T{v}}, nil
}

// ParseNullableFilter parses raw into a filter for a nullable field. An empty
// value stands for NULL; for OpIn an empty value is the empty set and empty
// list items are NULL.
func ParseNullableFilter[T any](op Operator, raw string, parse func(string) (T, error)) (Filter[*T], error) {
	parseNullable := func(s string) (*T, error) {
		if s == "" {
			return nil, nil
		}
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	if op != OpIn && op != OpEqual && op != OpNotEqual && raw == "" {
		return Filter[*T]{}, fmt.Errorf("operator %s: %w", op, ErrNullComparison)
	}
	return ParseFilter(op, raw, parseNullable)
}

// AppendFilter parses p and appends the result to filters.
func AppendFilter[T any](filters []Filter[T], p FilterParam, parse func(string) (T, error)) ([]Filter[T], error) {
	f, err := ParseFilter(p.Op, p.Value, parse)
	if err != nil {
		return filters, fmt.Errorf("filter %s: %w", p.Field, err)
	}
	return append(filters, f), nil
}

// AppendNullableFilter parses p for a nullable field and appends the result.
func AppendNullableFilter[T any](filters []Filter[*T], p FilterParam, parse func(string) (T, error)) ([]Filter[*T], error) {
	f, err := ParseNullableFilter(p.Op, p.Value, parse)
	if err != nil {
		return filters, fmt.Errorf("filter %s: %w", p.Field, err)
	}
	return append(filters, f), nil
}

// Conditions renders every filter against column.
func Conditions[T any](column string, filters []Filter[T]) []Condition {
	conds := make([]Condition, 0, len(filters))
	for _, f := range filters {
		conds = append(conds, f.Condition(column))
	}
	return conds
}
