// Package codegen emits the CRUD layer for schema resources: derived body
// types, filter specs, partial views, permission aliases and chi handlers.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/conduit-lang/crudkit/internal/schema"
)

const (
	crudPkg  = "github.com/conduit-lang/crudkit/pkg/crud"
	queryPkg = "github.com/conduit-lang/crudkit/pkg/crud/query"
	storePkg = "github.com/conduit-lang/crudkit/pkg/crud/store"
	chiPkg   = "github.com/go-chi/chi/v5"
)

// Header starts every generated file.
const Header = "// Code generated by crudkit. DO NOT EDIT."

// Generator writes Go source for one resource at a time
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]string
	res     *schema.Resource
	n       names
}

// NewGenerator creates a new code generator
func NewGenerator() *Generator {
	return &Generator{
		buf:     &bytes.Buffer{},
		imports: make(map[string]string),
	}
}

// FileName returns the name of the generated file for res.
func FileName(res *schema.Resource) string {
	return res.Options.File + "_crud.go"
}

// Generate renders the formatted source of res in package pkg.
func (g *Generator) Generate(res *schema.Resource, pkg string) ([]byte, error) {
	if res.PrimaryKey() == nil {
		return nil, fmt.Errorf("resource %s has no primary key", res.Name)
	}
	g.reset()
	g.res = res
	g.n = namesFor(res)

	g.generateFieldSet()
	g.generateScan()
	if res.Options.Create {
		g.generateNew()
	}
	if res.Options.Update {
		g.generatePatch()
		g.generatePut()
	}
	if res.Options.List {
		g.generateFilterSpec()
		if res.Options.Partials {
			g.generatePartial()
		}
	}
	if res.Options.Auth {
		g.generatePermissions()
	}
	g.generateResource()

	var out bytes.Buffer
	out.WriteString(Header + "\n\n")
	fmt.Fprintf(&out, "package %s\n\n", pkg)
	g.writeImports(&out)
	out.Write(g.buf.Bytes())

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", res.Name, err)
	}
	return formatted, nil
}

func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]string)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// block writes an opening line, runs body one level deeper and closes it.
func (g *Generator) block(open, end string, body func()) {
	g.writeLine("%s", open)
	g.indent++
	body()
	g.indent--
	g.writeLine("%s", end)
}

func (g *Generator) use(path string) {
	if _, ok := g.imports[path]; !ok {
		g.imports[path] = ""
	}
}

// typeOf returns the Go type of f and records the imports it needs.
func (g *Generator) typeOf(f *schema.Field) string {
	for _, pkg := range f.Packages {
		if imp, ok := g.res.Import(pkg); ok {
			g.imports[imp.Path] = imp.Name
		}
	}
	return f.Type
}

// elemOf is typeOf without the nullable pointer.
func (g *Generator) elemOf(f *schema.Field) string {
	g.typeOf(f)
	return f.Elem
}

// writeImports emits stdlib imports first, then external ones
func (g *Generator) writeImports(out *bytes.Buffer) {
	var stdlib, external []string
	for path, name := range g.imports {
		spec := fmt.Sprintf("%q", path)
		if name != "" {
			spec = name + " " + spec
		}
		if strings.Contains(strings.SplitN(path, "/", 2)[0], ".") {
			external = append(external, spec)
		} else {
			stdlib = append(stdlib, spec)
		}
	}
	sort.Slice(stdlib, func(i, j int) bool { return importPath(stdlib[i]) < importPath(stdlib[j]) })
	sort.Slice(external, func(i, j int) bool { return importPath(external[i]) < importPath(external[j]) })

	out.WriteString("import (\n")
	for _, s := range stdlib {
		out.WriteString("\t" + s + "\n")
	}
	if len(stdlib) > 0 && len(external) > 0 {
		out.WriteString("\n")
	}
	for _, s := range external {
		out.WriteString("\t" + s + "\n")
	}
	out.WriteString(")\n\n")
}

func importPath(spec string) string {
	if i := strings.IndexByte(spec, '"'); i >= 0 {
		return spec[i:]
	}
	return spec
}

// jsonTag renders the struct tag of f on generated body types.
func jsonTag(f *schema.Field, validate bool) string {
	name := f.APIName
	if f.JSONOmitEmpty {
		name += ",omitempty"
	}
	tag := fmt.Sprintf("json:%q", name)
	if validate && f.Validate != "" {
		tag += fmt.Sprintf(" validate:%q", f.Validate)
	}
	return "`" + tag + "`"
}
