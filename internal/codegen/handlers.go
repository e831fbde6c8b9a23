package codegen

import (
	"fmt"
	"strings"
)

func (g *Generator) generateResource() {
	n := g.n
	opts := g.res.Options
	pk := g.res.PrimaryKey()
	g.use("net/http")
	g.use(chiPkg)
	g.use(storePkg)
	g.use(queryPkg)

	g.writeLine("// %s serves the CRUD endpoints of %s.", n.Resource, n.Type)
	g.block(fmt.Sprintf("type %s struct {", n.Resource), "}", func() {
		g.writeLine("store *store.Store")
		if opts.Auth {
			g.writeLine("perms %s", n.Permissions)
		}
	})
	g.writeLine("")

	if opts.Auth {
		g.writeLine("// %s creates the %s endpoints. A nil perms allows every", n.NewResource, n.Type)
		g.writeLine("// operation.")
		g.block(fmt.Sprintf("func %s(s *store.Store, perms %s) *%s {", n.NewResource, n.Permissions, n.Resource), "}", func() {
			g.block("if perms == nil {", "}", func() {
				g.writeLine("perms = %s{}", n.AllowAll)
			})
			g.writeLine("return &%s{store: s, perms: perms}", n.Resource)
		})
	} else {
		g.writeLine("// %s creates the %s endpoints.", n.NewResource, n.Type)
		g.block(fmt.Sprintf("func %s(s *store.Store) *%s {", n.NewResource, n.Resource), "}", func() {
			g.writeLine("return &%s{store: s}", n.Resource)
		})
	}
	g.writeLine("")

	g.writeLine("// Routes returns a router serving the enabled operations.")
	g.block(fmt.Sprintf("func (res *%s) Routes() chi.Router {", n.Resource), "}", func() {
		g.writeLine("r := chi.NewRouter()")
		for _, rt := range Routes(g.res) {
			g.writeLine("r.%s(%q, res.%s)", chiMethod(rt.Method), rt.Pattern, rt.Handler)
		}
		g.writeLine("return r")
	})
	g.writeLine("")

	if opts.Read || opts.Update || opts.Delete {
		g.use("context")
		pkType := g.typeOf(pk)
		g.block(fmt.Sprintf("func %s(r *http.Request) (%s, error) {", n.parseID, pkType), "}", func() {
			g.writeLine("id, err := crud.ParseValue[%s](chi.URLParam(r, \"id\"))", pkType)
			g.block("if err != nil {", "}", func() {
				g.writeLine("return id, crud.ErrNotFound")
			})
			g.writeLine("return id, nil")
		})
		g.writeLine("")

		g.block(fmt.Sprintf("func (res *%s) load(ctx context.Context, s *store.Store, id %s, lock bool) (*%s, error) {", n.Resource, pkType, n.Type), "}", func() {
			g.writeLine("q := query.NewSelect(%q).Columns(%s.Columns()...).Where(query.Eq(%q, id)).ForUpdate(lock)", opts.Table, n.Fields, pk.Column)
			g.writeLine("return store.Get(ctx, s, q, %s)", n.scan)
		})
		g.writeLine("")
	}

	if opts.Create {
		g.generateCreate()
	}
	if opts.Read {
		g.generateRead()
	}
	if opts.Update {
		g.generatePatchHandler()
		g.generatePutHandler()
	}
	if opts.Delete {
		g.generateDelete()
	}
	if opts.List {
		g.generateList()
	}
}

func chiMethod(method string) string {
	return method[:1] + strings.ToLower(method[1:])
}

// handler writes the exported http.HandlerFunc delegating to inner and
// rendering its result.
func (g *Generator) handler(name, route, inner, result, status string) {
	g.writeLine("// %s handles %s.", name, route)
	g.block(fmt.Sprintf("func (res *%s) %s(w http.ResponseWriter, r *http.Request) {", g.n.Resource, name), "}", func() {
		g.writeLine("%s, err := %s", result, inner)
		g.block("if err != nil {", "}", func() {
			g.writeLine("crud.WriteError(w, r, err)")
			g.writeLine("return")
		})
		g.writeLine("crud.WriteJSON(w, http.StatusOK, %s)", status)
	})
	g.writeLine("")
}

func (g *Generator) requireSubject(zero string) {
	if !g.res.Options.Auth {
		return
	}
	g.writeLine("subject, err := crud.RequireSubject(ctx)")
	g.block("if err != nil {", "}", func() {
		g.writeLine("return %s, err", zero)
	})
}

func (g *Generator) parseID(zero string) {
	g.writeLine("id, err := %s(r)", g.n.parseID)
	g.block("if err != nil {", "}", func() {
		g.writeLine("return %s, err", zero)
	})
}

// inTx wraps body in a transaction producing result. Handlers that load a
// row before writing it run both statements in one transaction with the
// row locked.
func (g *Generator) inTx(result string, body func()) {
	g.block(fmt.Sprintf("return store.InTx(ctx, res.store, func(tx *store.Store) (%s, error) {", result), "})", body)
}

func (g *Generator) loadForUpdate(zero string) {
	g.writeLine("row, err := res.load(ctx, tx, id, true)")
	g.block("if err != nil {", "}", func() {
		g.writeLine("return %s, err", zero)
	})
}

func (g *Generator) generateCreate() {
	n := g.n
	opts := g.res.Options
	g.handler("Create", "POST /", "res.create(w, r)", "row", "row")

	g.block(fmt.Sprintf("func (res *%s) create(w http.ResponseWriter, r *http.Request) (*%s, error) {", n.Resource, n.Type), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("nil")
		g.writeLine("var value %s", n.New)
		g.block("if err := crud.DecodeBody(w, r, &value); err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		if opts.Auth {
			g.block("if !res.perms.AllowCreate(ctx, subject, &value) {", "}", func() {
				g.writeLine("return nil, crud.ErrForbidden")
			})
		}
		g.block("if err := crud.Validate(&value); err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		g.writeLine("q := query.NewInsert(%q).", opts.Table)
		g.indent++
		for _, f := range g.res.UserSupplied() {
			g.writeLine("Set(%q, value.%s).", f.Column, f.Name)
		}
		g.writeLine("Returning(%s.Columns()...)", n.Fields)
		g.indent--
		g.writeLine("return store.Get(ctx, res.store, q, %s)", n.scan)
	})
	g.writeLine("")
}

func (g *Generator) generateRead() {
	n := g.n
	g.handler("Read", "GET /{id}", "res.read(r)", "row", "row")

	g.block(fmt.Sprintf("func (res *%s) read(r *http.Request) (*%s, error) {", n.Resource, n.Type), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("nil")
		g.parseID("nil")
		g.writeLine("row, err := res.load(ctx, res.store, id, false)")
		g.block("if err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		if g.res.Options.Auth {
			g.block("if !res.perms.AllowRead(ctx, subject, row) {", "}", func() {
				g.writeLine("return nil, crud.ErrNotFound")
			})
		}
		g.writeLine("return row, nil")
	})
	g.writeLine("")
}

func (g *Generator) generatePatchHandler() {
	n := g.n
	opts := g.res.Options
	pk := g.res.PrimaryKey()
	g.handler("Patch", "PATCH /{id}", "res.patch(w, r)", "row", "row")

	g.block(fmt.Sprintf("func (res *%s) patch(w http.ResponseWriter, r *http.Request) (*%s, error) {", n.Resource, n.Type), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("nil")
		g.parseID("nil")
		g.writeLine("var patch %s", n.Patch)
		g.block("if err := crud.DecodeBody(w, r, &patch); err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		g.inTx("*"+n.Type, func() {
			g.loadForUpdate("nil")
			g.writeLine("put := %s(row, &patch)", n.NewPut)
			if opts.Auth {
				g.block("if !res.perms.AllowUpdate(ctx, subject, row, &put) {", "}", func() {
					g.writeLine("return nil, crud.ErrNotFound")
				})
			}
			g.block("if err := crud.Validate(&put); err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
			g.writeLine("q := query.NewUpdate(%q).Where(query.Eq(%q, id)).Returning(%s.Columns()...)", opts.Table, pk.Column, n.Fields)
			for _, f := range g.res.UserSupplied() {
				g.block(fmt.Sprintf("if v, ok := patch.%s.Get(); ok {", f.Name), "}", func() {
					g.writeLine("q.Set(%q, v)", f.Column)
				})
			}
			g.block("if q.Empty() {", "}", func() {
				g.writeLine("return row, nil")
			})
			g.writeLine("return store.Get(ctx, tx, q, %s)", n.scan)
		})
	})
	g.writeLine("")
}

func (g *Generator) generatePutHandler() {
	n := g.n
	opts := g.res.Options
	pk := g.res.PrimaryKey()
	g.handler("Put", "PUT /{id}", "res.put(w, r)", "row", "row")

	g.block(fmt.Sprintf("func (res *%s) put(w http.ResponseWriter, r *http.Request) (*%s, error) {", n.Resource, n.Type), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("nil")
		g.parseID("nil")
		g.writeLine("var value %s", n.Put)
		g.block("if err := crud.DecodeBody(w, r, &value); err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		g.inTx("*"+n.Type, func() {
			g.loadForUpdate("nil")
			if opts.Auth {
				g.block("if !res.perms.AllowUpdate(ctx, subject, row, &value) {", "}", func() {
					g.writeLine("return nil, crud.ErrNotFound")
				})
			}
			g.block("if err := value.ValidateUpdate(row); err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
			g.block("if err := crud.Validate(&value); err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
			fields := g.res.UserSupplied()
			if len(fields) == 0 {
				g.writeLine("return row, nil")
				return
			}
			g.writeLine("q := query.NewUpdate(%q).", opts.Table)
			g.indent++
			for _, f := range fields {
				g.writeLine("Set(%q, value.%s).", f.Column, f.Name)
			}
			g.writeLine("Where(query.Eq(%q, id)).", pk.Column)
			g.writeLine("Returning(%s.Columns()...)", n.Fields)
			g.indent--
			g.writeLine("return store.Get(ctx, tx, q, %s)", n.scan)
		})
	})
	g.writeLine("")
}

func (g *Generator) generateDelete() {
	n := g.n
	opts := g.res.Options
	pk := g.res.PrimaryKey()
	g.handler("Delete", "DELETE /{id}", "res.delete(r)", "deleted", "crud.DeleteResponse{Deleted: deleted}")

	g.block(fmt.Sprintf("func (res *%s) delete(r *http.Request) (int64, error) {", n.Resource), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("0")
		g.parseID("0")
		del := fmt.Sprintf("query.NewDelete(%q).Where(query.Eq(%q, id))", opts.Table, pk.Column)
		if !opts.Auth {
			g.writeLine("return store.Exec(ctx, res.store, %s)", del)
			return
		}
		g.inTx("int64", func() {
			g.loadForUpdate("0")
			g.block("if !res.perms.AllowDelete(ctx, subject, row) {", "}", func() {
				g.writeLine("return 0, crud.ErrNotFound")
			})
			g.writeLine("return store.Exec(ctx, tx, %s)", del)
		})
	})
	g.writeLine("")
}

func (g *Generator) generateList() {
	n := g.n
	opts := g.res.Options
	result := "[]" + n.Type
	if opts.Partials {
		result = "[]" + n.Partial
	}
	g.handler("List", "GET /", "res.list(r)", "rows", "rows")

	g.block(fmt.Sprintf("func (res *%s) list(r *http.Request) (%s, error) {", n.Resource, result), "}", func() {
		g.writeLine("ctx := r.Context()")
		g.requireSubject("nil")
		g.writeLine("values := r.URL.Query()")
		g.writeLine("page, err := query.ParsePage(values, %d)", opts.MaxLimit)
		g.block("if err != nil {", "}", func() {
			g.writeLine("return nil, crud.BadRequest(err)")
		})
		g.writeLine("filters, err := %s(values)", n.ParseFilterSpec)
		g.block("if err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		if opts.Partials {
			g.writeLine("sel, err := %s.ParseSelection(values)", n.Fields)
			g.block("if err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
			g.writeLine("q := query.NewSelect(%q).Where(filters.Conditions()...).Page(page)", opts.Table)
			g.writeLine("%s.Project(q, sel)", n.Fields)
		} else {
			g.writeLine("q := query.NewSelect(%q).Columns(%s.Columns()...).Where(filters.Conditions()...).Page(page)", opts.Table, n.Fields)
		}
		g.block(fmt.Sprintf("if err := %s.ApplySorts(q, values[\"sort\"]); err != nil {", n.Fields), "}", func() {
			g.writeLine("return nil, err")
		})
		if opts.Auth {
			g.block("if err := res.perms.FilterList(ctx, subject).Apply(q); err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
		}
		if !opts.Partials {
			g.writeLine("return store.List(ctx, res.store, q, %s)", n.scan)
			return
		}
		g.writeLine("rows, err := store.List(ctx, res.store, q, %s)", n.scanNullable)
		g.block("if err != nil {", "}", func() {
			g.writeLine("return nil, err")
		})
		g.writeLine("out := make(%s, 0, len(rows))", result)
		g.block("for i := range rows {", "}", func() {
			g.writeLine("p, err := %s(&rows[i], sel)", n.newPartial)
			g.block("if err != nil {", "}", func() {
				g.writeLine("return nil, err")
			})
			g.writeLine("out = append(out, p)")
		})
		g.writeLine("return out, nil")
	})
	g.writeLine("")
}
