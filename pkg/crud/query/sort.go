package query

import (
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sort is one parsed sort term.
type Sort struct {
	Field     string
	Direction Direction
}

// String renders the term back into query syntax.
func (s Sort) String() string {
	if s.Direction == Descending {
		return "-" + s.Field
	}
	return s.Field
}

// ParseSort parses "field", "+field" or "-field". A "+" sent unescaped in a
// URL arrives as a space, so leading spaces are ascending as well.
func ParseSort(raw string) (Sort, error) {
	s := strings.TrimLeft(raw, " ")
	dir := Ascending
	switch {
	case strings.HasPrefix(s, "-"):
		dir = Descending
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}, fmt.Errorf("invalid sort term %q", raw)
	}
	return Sort{Field: s, Direction: dir}, nil
}

// ParseSorts parses repeated sort parameters, each of which may hold a
// comma separated list. Empty parameters are skipped.
func ParseSorts(values []string) ([]Sort, error) {
	var sorts []Sort
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		for _, part := range strings.Split(v, ",") {
			s, err := ParseSort(part)
			if err != nil {
				return nil, err
			}
			sorts = append(sorts, s)
		}
	}
	return sorts, nil
}
