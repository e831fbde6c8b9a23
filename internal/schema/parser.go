package schema

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Parser extracts resources from Go source.
type Parser struct {
	defaults Defaults
	fset     *token.FileSet
}

// NewParser creates a parser applying defaults to every resource.
func NewParser(defaults Defaults) *Parser {
	return &Parser{defaults: defaults, fset: token.NewFileSet()}
}

// ParseFile parses a single Go source file.
func (p *Parser) ParseFile(filename string) (*File, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return p.ParseSource(filename, src)
}

// ParseDir parses every non-test, non-generated Go file in dir. Files
// without resources are omitted from the result.
func (p *Parser) ParseDir(dir string) ([]*File, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var (
		files []*File
		errs  ErrorList
	)
	for _, m := range matches {
		if strings.HasSuffix(m, "_test.go") {
			continue
		}
		f, err := p.ParseFile(m)
		if err != nil {
			if list, ok := err.(ErrorList); ok {
				errs = append(errs, list...)
				continue
			}
			return nil, err
		}
		if f != nil && len(f.Resources) > 0 {
			files = append(files, f)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// ParseSource parses src as the contents of filename. Generated files yield
// an empty File.
func (p *Parser) ParseSource(filename string, src []byte) (*File, error) {
	astFile, err := parser.ParseFile(p.fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	file := &File{Path: filename, Package: astFile.Name.Name}
	if ast.IsGenerated(astFile) {
		return file, nil
	}

	imports := importNames(astFile)
	var errs ErrorList
	for _, decl := range astFile.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			args, found := directiveArgs(doc)
			if !found {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				errs.add(p.pos(ts), "%s: resource directive on non-struct type", ts.Name.Name)
				continue
			}
			if ts.TypeParams != nil {
				errs.add(p.pos(ts), "%s: generic resources are not supported", ts.Name.Name)
				continue
			}
			if res := p.resource(ts, st, args, imports, &errs); res != nil {
				file.Resources = append(file.Resources, res)
			}
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return file, nil
}

func (p *Parser) pos(n ast.Node) token.Position {
	return p.fset.Position(n.Pos())
}

func directiveArgs(doc *ast.CommentGroup) ([]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return strings.Fields(rest), true
	}
	return nil, false
}

func (p *Parser) resource(ts *ast.TypeSpec, st *ast.StructType, args []string, imports map[string]string, errs *ErrorList) *Resource {
	name := ts.Name.Name
	pos := p.pos(ts)
	res := &Resource{
		Name: name,
		Pos:  pos,
		Options: Options{
			Table:    SnakeCase(name),
			Create:   true,
			Read:     true,
			Update:   true,
			Delete:   true,
			List:     true,
			MaxLimit: p.defaults.MaxLimit,
			Auth:     p.defaults.Auth,
			Partials: p.defaults.Partials,
			File:     SnakeCase(name),
		},
	}

	before := len(*errs)
	for _, arg := range args {
		if err := applyOption(&res.Options, arg); err != nil {
			errs.add(pos, "%s: %v", name, err)
		}
	}

	if o := res.Options; !o.Create && !o.Read && !o.Update && !o.Delete && !o.List {
		errs.add(pos, "%s: every operation is disabled", name)
	}

	used := map[string]bool{}
	apiNames := map[string]string{}
	columns := map[string]string{}
	for _, astField := range st.Fields.List {
		if len(astField.Names) == 0 {
			errs.add(p.pos(astField), "%s: embedded field %s is not supported", name, types.ExprString(astField.Type))
			continue
		}
		tag := fieldTag(astField)
		if tag.Get("crud") == "-" {
			continue
		}
		for _, ident := range astField.Names {
			f, ok := p.field(name, ident, astField, tag, errs)
			if !ok {
				continue
			}
			if prev, dup := apiNames[f.APIName]; dup {
				errs.add(f.Pos, "%s.%s: API name %q already used by %s", name, f.Name, f.APIName, prev)
				continue
			}
			if prev, dup := columns[f.Column]; dup {
				errs.add(f.Pos, "%s.%s: column %q already used by %s", name, f.Name, f.Column, prev)
				continue
			}
			apiNames[f.APIName] = f.Name
			columns[f.Column] = f.Name
			f.Packages = packagesOf(astField.Type)
			for _, pkg := range f.Packages {
				used[pkg] = true
			}
			res.Fields = append(res.Fields, f)
		}
	}

	var keys []*Field
	for _, f := range res.Fields {
		if f.PrimaryKey {
			keys = append(keys, f)
		}
	}
	switch {
	case len(keys) == 0:
		errs.add(pos, "%s: no field is marked primary_key", name)
	case len(keys) > 1:
		errs.add(keys[1].Pos, "%s: aggregate primary keys are not supported", name)
	}

	res.Imports = resolveImports(used, imports)
	if len(*errs) > before {
		return nil
	}
	return res
}

func applyOption(opts *Options, arg string) error {
	key, value, hasValue := strings.Cut(arg, "=")
	boolValue := func() (bool, error) {
		if !hasValue {
			return true, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("option %s: %q is not a boolean", key, value)
		}
		return b, nil
	}
	stringValue := func() (string, error) {
		if !hasValue || value == "" {
			return "", fmt.Errorf("option %s requires a value", key)
		}
		return value, nil
	}

	var err error
	switch key {
	case "table":
		opts.Table, err = stringValue()
	case "file":
		opts.File, err = stringValue()
	case "create":
		opts.Create, err = boolValue()
	case "read":
		opts.Read, err = boolValue()
	case "update":
		opts.Update, err = boolValue()
	case "delete":
		opts.Delete, err = boolValue()
	case "list":
		opts.List, err = boolValue()
	case "auth":
		opts.Auth, err = boolValue()
	case "partials":
		opts.Partials, err = boolValue()
	case "max_limit":
		if !hasValue {
			return fmt.Errorf("option max_limit requires a value")
		}
		n, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil || n <= 0 {
			return fmt.Errorf("option max_limit: %q is not a positive integer", value)
		}
		opts.MaxLimit = n
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return err
}

func fieldTag(f *ast.Field) reflect.StructTag {
	if f.Tag == nil {
		return ""
	}
	raw, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw)
}

func (p *Parser) field(resName string, ident *ast.Ident, astField *ast.Field, tag reflect.StructTag, errs *ErrorList) (*Field, bool) {
	pos := p.pos(ident)
	if !ident.IsExported() {
		errs.add(pos, "%s.%s: unexported fields cannot be bound; tag it crud:\"-\" to skip it", resName, ident.Name)
		return nil, false
	}
	if err := checkFieldType(astField.Type); err != nil {
		errs.add(pos, "%s.%s: %v", resName, ident.Name, err)
		return nil, false
	}

	f := &Field{
		Name:     ident.Name,
		Column:   SnakeCase(ident.Name),
		Type:     types.ExprString(astField.Type),
		Validate: tag.Get("validate"),
		Pos:      pos,
	}
	f.Elem = f.Type
	if star, ok := astField.Type.(*ast.StarExpr); ok {
		f.Nullable = true
		f.Elem = types.ExprString(star.X)
	}

	if db, _, _ := strings.Cut(tag.Get("db"), ","); db != "" && db != "-" {
		f.Column = db
	}
	if tag.Get("json") == "-" {
		errs.add(pos, "%s.%s: field is hidden from JSON with json:\"-\"; tag it crud:\"-\" to skip it", resName, ident.Name)
		return nil, false
	}
	f.APIName = f.Column
	jsonName, jsonOpts, _ := strings.Cut(tag.Get("json"), ",")
	if jsonName != "" {
		f.APIName = jsonName
	}
	f.JSONOmitEmpty = strings.Contains(jsonOpts, "omitempty")

	if markers := tag.Get("crud"); markers != "" {
		for _, m := range strings.Split(markers, ",") {
			switch strings.TrimSpace(m) {
			case "primary_key":
				f.PrimaryKey = true
			case "generated":
				f.Generated = true
			case "not_sortable":
				f.NotSortable = true
			case "not_filterable":
				f.NotFilterable = true
			case "":
			default:
				errs.add(pos, "%s.%s: unknown field marker %q", resName, ident.Name, m)
				return nil, false
			}
		}
	}
	if f.PrimaryKey && f.Nullable {
		errs.add(pos, "%s.%s: primary key cannot be nullable", resName, ident.Name)
		return nil, false
	}
	return f, true
}

func checkFieldType(expr ast.Expr) error {
	if star, ok := expr.(*ast.StarExpr); ok {
		if _, nested := star.X.(*ast.StarExpr); nested {
			return fmt.Errorf("pointer to pointer types are not supported")
		}
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		return nil
	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && ident.Name == "byte" && t.Len == nil {
			return nil
		}
	}
	return fmt.Errorf("unsupported field type %s", types.ExprString(expr))
}

// packagesOf returns the package qualifiers used in a type expression.
func packagesOf(expr ast.Expr) []string {
	var pkgs []string
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if x, ok := sel.X.(*ast.Ident); ok {
				pkgs = append(pkgs, x.Name)
			}
			return false
		}
		return true
	})
	return pkgs
}

func importNames(f *ast.File) map[string]string {
	names := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := defaultImportName(importPath)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		names[name] = importPath
	}
	return names
}

func defaultImportName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			base = path.Base(path.Dir(importPath))
		}
	}
	return strings.ReplaceAll(base, "-", "_")
}

func resolveImports(used map[string]bool, imports map[string]string) []Import {
	out := make([]Import, 0, len(used))
	for name := range used {
		importPath, ok := imports[name]
		if !ok {
			continue
		}
		imp := Import{Path: importPath}
		if defaultImportName(importPath) != name {
			imp.Name = name
		}
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
