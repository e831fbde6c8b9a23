package codegen

import (
	"fmt"

	"github.com/conduit-lang/crudkit/internal/schema"
)

func (g *Generator) generateFieldSet() {
	n := g.n
	g.use(crudPkg)

	g.writeLine("// %s names a field of %s in sort, filter and field selection", n.Field, n.Type)
	g.writeLine("// parameters.")
	g.writeLine("type %s string", n.Field)
	g.writeLine("")
	g.block("const (", ")", func() {
		for _, f := range g.res.Fields {
			g.writeLine("%s %s = %q", n.fieldConst(f), n.Field, f.APIName)
		}
	})
	g.writeLine("")
	g.writeLine("// %s is the field catalogue of %s.", n.Fields, n.Type)
	g.block(fmt.Sprintf("var %s = crud.NewFieldSet(", n.Fields), ")", func() {
		for _, f := range g.res.Fields {
			g.writeLine("crud.FieldInfo[%s]{Name: %s, Column: %q, PrimaryKey: %t, Sortable: %t},",
				n.Field, n.fieldConst(f), f.Column, f.PrimaryKey, f.Sortable())
		}
	})
	g.writeLine("")
}

func (g *Generator) generateScan() {
	g.writeLine("func %s(v *%s) []any {", g.n.scan, g.n.Type)
	g.indent++
	g.writeLine("return []any{%s}", fieldRefs(g.res.Fields, "v"))
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

func fieldRefs(fields []*schema.Field, recv string) string {
	s := ""
	for i, f := range fields {
		if i > 0 {
			s += ", "
		}
		s += "&" + recv + "." + f.Name
	}
	return s
}

func (g *Generator) generateNew() {
	n := g.n
	g.writeLine("// %s is the request body for creating a %s.", n.New, n.Type)
	g.block(fmt.Sprintf("type %s struct {", n.New), "}", func() {
		for _, f := range g.res.UserSupplied() {
			g.writeLine("%s %s %s", f.Name, g.typeOf(f), jsonTag(f, true))
		}
	})
	g.writeLine("")
	g.generateDecodeForm(n.New, g.res.UserSupplied(), false)
}

func (g *Generator) generatePatch() {
	n := g.n
	g.writeLine("// %s is the request body for partially updating a %s. Absent", n.Patch, n.Type)
	g.writeLine("// fields keep their stored value.")
	g.block(fmt.Sprintf("type %s struct {", n.Patch), "}", func() {
		for _, f := range g.res.UserSupplied() {
			g.writeLine("%s crud.Optional[%s] `json:%q`", f.Name, g.typeOf(f), f.APIName+",omitzero")
		}
	})
	g.writeLine("")
	g.generateDecodeForm(n.Patch, g.res.UserSupplied(), true)
}

func (g *Generator) generatePut() {
	n := g.n
	g.writeLine("// %s is the request body for replacing a %s. Fields that are not", n.Put, n.Type)
	g.writeLine("// user supplied must match the stored row.")
	g.block(fmt.Sprintf("type %s struct {", n.Put), "}", func() {
		for _, f := range g.res.Fields {
			g.writeLine("%s %s %s", f.Name, g.typeOf(f), jsonTag(f, true))
		}
	})
	g.writeLine("")
	g.generateDecodeForm(n.Put, g.res.Fields, false)

	g.writeLine("// %s applies patch to row.", n.NewPut)
	g.block(fmt.Sprintf("func %s(row *%s, patch *%s) %s {", n.NewPut, n.Type, n.Patch, n.Put), "}", func() {
		g.block(fmt.Sprintf("return %s{", n.Put), "}", func() {
			for _, f := range g.res.Fields {
				if f.UserSupplied() {
					g.writeLine("%s: patch.%s.OrElse(row.%s),", f.Name, f.Name, f.Name)
				} else {
					g.writeLine("%s: row.%s,", f.Name, f.Name)
				}
			}
		})
	})
	g.writeLine("")

	g.writeLine("// ValidateUpdate rejects changes to fields that are not user supplied.")
	g.block(fmt.Sprintf("func (v *%s) ValidateUpdate(row *%s) error {", n.Put, n.Type), "}", func() {
		for _, f := range g.res.Fields {
			if f.UserSupplied() {
				continue
			}
			g.block(fmt.Sprintf("if !crud.Equal(v.%s, row.%s) {", f.Name, f.Name), "}", func() {
				g.writeLine("return crud.UnchangeableField(%q)", f.APIName)
			})
		}
		g.writeLine("return nil")
	})
	g.writeLine("")

	g.writeLine("// Patch converts v into a patch setting every user supplied field.")
	g.block(fmt.Sprintf("func (v *%s) Patch() %s {", n.Put, n.Patch), "}", func() {
		g.block(fmt.Sprintf("return %s{", n.Patch), "}", func() {
			for _, f := range g.res.UserSupplied() {
				g.writeLine("%s: crud.Some(v.%s),", f.Name, f.Name)
			}
		})
	})
	g.writeLine("")
}

// generateDecodeForm writes the crud.FormDecoder implementation of typ.
func (g *Generator) generateDecodeForm(typ string, fields []*schema.Field, optional bool) {
	g.use("net/url")
	g.writeLine("// DecodeForm implements crud.FormDecoder.")
	g.block(fmt.Sprintf("func (v *%s) DecodeForm(form url.Values) error {", typ), "}", func() {
		for _, f := range fields {
			helper := "FormField"
			switch {
			case optional && f.Nullable:
				helper = "FormOptionalNullable"
			case optional:
				helper = "FormOptional"
			case f.Nullable:
				helper = "FormNullable"
			}
			g.block(fmt.Sprintf("if err := crud.%s(form, %q, &v.%s, crud.ParseValue[%s]); err != nil {",
				helper, f.APIName, f.Name, g.elemOf(f)), "}", func() {
				g.writeLine("return err")
			})
		}
		g.writeLine("return nil")
	})
	g.writeLine("")
}

func (g *Generator) generateFilterSpec() {
	n := g.n
	g.use(queryPkg)
	g.use("net/url")
	filterable := g.res.Filterable()

	g.writeLine("// %s holds the filter parameters of a list request.", n.FilterSpec)
	g.block(fmt.Sprintf("type %s struct {", n.FilterSpec), "}", func() {
		for _, f := range filterable {
			g.writeLine("%s []query.Filter[%s]", f.Name, g.typeOf(f))
		}
	})
	g.writeLine("")

	g.writeLine("// %s parses the filter parameters of a query string.", n.ParseFilterSpec)
	g.block(fmt.Sprintf("func %s(values url.Values) (%s, error) {", n.ParseFilterSpec, n.FilterSpec), "}", func() {
		g.writeLine("var spec %s", n.FilterSpec)
		g.writeLine("params, err := query.ParseFilterParams(values)")
		g.block("if err != nil {", "}", func() {
			g.writeLine("return spec, crud.InvalidFilterSpec(err)")
		})
		g.block("for _, p := range params {", "}", func() {
			g.writeLine("switch %s(p.Field) {", n.Field)
			for _, f := range filterable {
				g.writeLine("case %s:", n.fieldConst(f))
				g.indent++
				appendFn := "AppendFilter"
				if f.Nullable {
					appendFn = "AppendNullableFilter"
				}
				g.writeLine("spec.%s, err = query.%s(spec.%s, p, crud.ParseValue[%s])", f.Name, appendFn, f.Name, g.elemOf(f))
				g.indent--
			}
			g.writeLine("default:")
			g.indent++
			g.writeLine("err = crud.UnknownField(p.Field)")
			g.indent--
			g.writeLine("}")
			g.block("if err != nil {", "}", func() {
				g.writeLine("return spec, crud.InvalidFilterSpec(err)")
			})
		})
		g.writeLine("return spec, nil")
	})
	g.writeLine("")

	g.writeLine("// Conditions renders the filters as WHERE conditions.")
	g.block(fmt.Sprintf("func (s *%s) Conditions() []query.Condition {", n.FilterSpec), "}", func() {
		g.writeLine("var conds []query.Condition")
		for _, f := range filterable {
			g.writeLine("conds = append(conds, query.Conditions(%q, s.%s)...)", f.Column, f.Name)
		}
		g.writeLine("return conds")
	})
	g.writeLine("")
}

func (g *Generator) generatePartial() {
	n := g.n
	g.writeLine("// %s is a %s restricted to the selected fields.", n.Partial, n.Type)
	g.block(fmt.Sprintf("type %s struct {", n.Partial), "}", func() {
		for _, f := range g.res.Fields {
			g.writeLine("%s crud.Optional[%s] `json:%q`", f.Name, g.typeOf(f), f.APIName+",omitzero")
		}
	})
	g.writeLine("")

	g.writeLine("// %s receives a row where unselected columns are NULL.", n.nullable)
	g.block(fmt.Sprintf("type %s struct {", n.nullable), "}", func() {
		for _, f := range g.res.Fields {
			g.writeLine("%s *%s", f.Name, g.elemOf(f))
		}
	})
	g.writeLine("")

	g.block(fmt.Sprintf("func %s(v *%s) []any {", n.scanNullable, n.nullable), "}", func() {
		g.writeLine("return []any{%s}", fieldRefs(g.res.Fields, "v"))
	})
	g.writeLine("")

	g.block(fmt.Sprintf("func %s(v *%s, sel crud.Selection[%s]) (%s, error) {", n.newPartial, n.nullable, n.Field, n.Partial), "}", func() {
		g.writeLine("var (")
		g.indent++
		g.writeLine("p   %s", n.Partial)
		g.writeLine("err error")
		g.indent--
		g.writeLine(")")
		for _, f := range g.res.Fields {
			if f.Nullable {
				g.writeLine("p.%s = crud.PickNullable(sel.Has(%s), v.%s)", f.Name, n.fieldConst(f), f.Name)
				continue
			}
			g.block(fmt.Sprintf("if p.%s, err = crud.Pick(sel.Has(%s), v.%s, %q); err != nil {",
				f.Name, n.fieldConst(f), f.Name, f.APIName), "}", func() {
				g.writeLine("return p, err")
			})
		}
		g.writeLine("return p, nil")
	})
	g.writeLine("")
}

func (g *Generator) generatePermissions() {
	n := g.n
	create, put := n.createType(g.res), n.putType(g.res)
	g.writeLine("// %s decides which subjects may access %s records.", n.Permissions, n.Type)
	g.writeLine("type %s = crud.Permissions[%s, %s, %s]", n.Permissions, n.Type, create, put)
	g.writeLine("")
	g.writeLine("// %s grants every operation on %s. Embed it to override single", n.AllowAll, n.Type)
	g.writeLine("// methods.")
	g.writeLine("type %s = crud.AllowAll[%s, %s, %s]", n.AllowAll, n.Type, create, put)
	g.writeLine("")
}
