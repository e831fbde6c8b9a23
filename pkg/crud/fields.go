package crud

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/conduit-lang/crudkit/pkg/crud/query"
)

// FieldInfo describes one field of a generated resource.
type FieldInfo[F ~string] struct {
	Name       F
	Column     string
	PrimaryKey bool
	Sortable   bool
}

// FieldSet is the field catalogue of a resource. Generated code declares one
// per resource and uses it to parse sort and field selection parameters.
type FieldSet[F ~string] struct {
	fields []FieldInfo[F]
	index  map[F]int
}

// NewFieldSet builds a catalogue in declaration order.
func NewFieldSet[F ~string](fields ...FieldInfo[F]) *FieldSet[F] {
	s := &FieldSet[F]{fields: fields, index: make(map[F]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// All returns every field name.
func (s *FieldSet[F]) All() []F {
	out := make([]F, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Columns returns every column in declaration order.
func (s *FieldSet[F]) Columns() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Column
	}
	return out
}

// Column returns the column of f, or "" for an unknown field.
func (s *FieldSet[F]) Column(f F) string {
	if i, ok := s.index[f]; ok {
		return s.fields[i].Column
	}
	return ""
}

// Parse validates an API field name.
func (s *FieldSet[F]) Parse(name string) (F, error) {
	f := F(name)
	if _, ok := s.index[f]; !ok {
		return "", UnknownField(name)
	}
	return f, nil
}

// Selection is the set of fields a list request asked for.
type Selection[F ~string] map[F]bool

// Has reports whether f is selected.
func (sel Selection[F]) Has(f F) bool {
	return sel[f]
}

// Select returns include minus exclude. An empty include selects every
// field.
func (s *FieldSet[F]) Select(include, exclude []F) Selection[F] {
	if len(include) == 0 {
		include = s.All()
	}
	sel := make(Selection[F], len(include))
	for _, f := range include {
		sel[f] = true
	}
	for _, f := range exclude {
		delete(sel, f)
	}
	return sel
}

// ParseSelection reads the include and exclude query parameters. Both may
// be repeated or hold comma separated names.
func (s *FieldSet[F]) ParseSelection(values url.Values) (Selection[F], error) {
	include, err := s.parseNames(values["include"])
	if err != nil {
		return nil, InvalidFieldSpec(fmt.Errorf("include: %w", err))
	}
	exclude, err := s.parseNames(values["exclude"])
	if err != nil {
		return nil, InvalidFieldSpec(fmt.Errorf("exclude: %w", err))
	}
	return s.Select(include, exclude), nil
}

func (s *FieldSet[F]) parseNames(values []string) ([]F, error) {
	var out []F
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f, err := s.Parse(name)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// Project adds every column to q, selecting NULL for unselected ones.
func (s *FieldSet[F]) Project(q *query.Select, sel Selection[F]) {
	for _, f := range s.fields {
		q.Project(f.Column, sel.Has(f.Name))
	}
}

// ApplySorts parses sort parameters and adds them to q. Without sort terms
// the primary key orders the result.
func (s *FieldSet[F]) ApplySorts(q *query.Select, raw []string) error {
	sorts, err := query.ParseSorts(raw)
	if err != nil {
		return InvalidSortSpec(err)
	}
	for _, sort := range sorts {
		i, ok := s.index[F(sort.Field)]
		if !ok {
			return InvalidSortSpec(UnknownField(sort.Field))
		}
		if !s.fields[i].Sortable {
			return InvalidSortSpec(fmt.Errorf("field %q is not sortable", sort.Field))
		}
		q.OrderBy(s.fields[i].Column, sort.Direction)
	}
	if !q.Ordered() {
		for _, f := range s.fields {
			if f.PrimaryKey {
				q.OrderBy(f.Column, query.Ascending)
			}
		}
	}
	return nil
}

// Pick turns a scanned nullable column into a partial field. A selected
// column read back as NULL is a DBValue error.
func Pick[T any](selected bool, v *T, field string) (Optional[T], error) {
	if !selected {
		return Optional[T]{}, nil
	}
	if v == nil {
		return Optional[T]{}, DBValue(field)
	}
	return Some(*v), nil
}

// PickNullable turns a scanned nullable column into a partial field.
func PickNullable[T any](selected bool, v *T) Optional[*T] {
	if !selected {
		return Optional[*T]{}
	}
	return Some(v)
}
