// Package schema extracts CRUD resource definitions from annotated Go
// structs.
package schema

import "go/token"

// Directive marks a struct as a CRUD resource.
const Directive = "//crudkit:resource"

// Defaults are option values applied when a directive does not set them.
type Defaults struct {
	MaxLimit int64
	Auth     bool
	Partials bool
}

// DefaultDefaults returns the built-in option defaults.
func DefaultDefaults() Defaults {
	return Defaults{MaxLimit: 100, Auth: true}
}

// Options are the per-resource generator switches.
type Options struct {
	Table    string
	Create   bool
	Read     bool
	Update   bool
	Delete   bool
	List     bool
	MaxLimit int64
	Auth     bool
	Partials bool
	File     string
}

// Field is one persisted struct field.
type Field struct {
	// Name is the Go field name.
	Name string
	// Column is the SQL column.
	Column string
	// APIName is used in JSON bodies and in sort, filter and field
	// selection parameters.
	APIName string
	// Type is the Go type expression as written, Elem the same without a
	// leading pointer.
	Type     string
	Elem     string
	Nullable bool
	// Packages lists the import names the type expression refers to.
	Packages []string

	PrimaryKey    bool
	Generated     bool
	NotSortable   bool
	NotFilterable bool

	// JSONOmitEmpty and Validate are carried over to generated types.
	JSONOmitEmpty bool
	Validate      string

	Pos token.Position
}

// UserSupplied reports whether clients provide the field on create.
func (f *Field) UserSupplied() bool {
	return !f.Generated && !f.PrimaryKey
}

// Sortable reports whether the field may appear in sort parameters.
func (f *Field) Sortable() bool {
	return !f.NotSortable
}

// Filterable reports whether the field may appear in filter parameters.
func (f *Field) Filterable() bool {
	return !f.NotFilterable
}

// Import is a package referenced by field types.
type Import struct {
	Name string
	Path string
}

// Resource is a struct marked with the resource directive.
type Resource struct {
	Name    string
	Options Options
	Fields  []*Field
	// Imports lists packages the field types refer to.
	Imports []Import
	Pos     token.Position
}

// Import returns the import for a package name used by a field type.
func (r *Resource) Import(name string) (Import, bool) {
	for _, imp := range r.Imports {
		if imp.Name == name || (imp.Name == "" && defaultImportName(imp.Path) == name) {
			return imp, true
		}
	}
	return Import{}, false
}

// PrimaryKey returns the primary key field.
func (r *Resource) PrimaryKey() *Field {
	for _, f := range r.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return nil
}

// UserSupplied returns the fields clients provide on create.
func (r *Resource) UserSupplied() []*Field {
	return r.filter((*Field).UserSupplied)
}

// Sortable returns the fields allowed in sort parameters.
func (r *Resource) Sortable() []*Field {
	return r.filter((*Field).Sortable)
}

// Filterable returns the fields allowed in filter parameters.
func (r *Resource) Filterable() []*Field {
	return r.filter((*Field).Filterable)
}

// Columns returns every column in field order.
func (r *Resource) Columns() []string {
	cols := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		cols[i] = f.Column
	}
	return cols
}

func (r *Resource) filter(keep func(*Field) bool) []*Field {
	var out []*Field
	for _, f := range r.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// File is the result of parsing one Go source file.
type File struct {
	Path      string
	Package   string
	Resources []*Resource
}
