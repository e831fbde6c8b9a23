package query

import "errors"

// ErrNoAssignments is returned by an UPDATE without SET columns.
var ErrNoAssignments = errors.New("update has no assignments")

type assignment struct {
	column string
	value  any
}

// Insert builds an INSERT ... RETURNING statement.
type Insert struct {
	table     string
	values    []assignment
	returning []string
}

// NewInsert creates an insert into table.
func NewInsert(table string) *Insert {
	return &Insert{table: table}
}

// Set adds a column value.
func (i *Insert) Set(column string, value any) *Insert {
	i.values = append(i.values, assignment{column: column, value: value})
	return i
}

// Returning sets the RETURNING columns.
func (i *Insert) Returning(columns ...string) *Insert {
	i.returning = columns
	return i
}

// Build renders the statement. Without values it inserts DEFAULT VALUES.
func (i *Insert) Build(d Dialect) (string, []any, error) {
	w := newWriter(d)
	w.write("INSERT INTO ")
	w.ident(i.table)
	if len(i.values) == 0 {
		w.write(" DEFAULT VALUES")
	} else {
		w.write(" (")
		for n, a := range i.values {
			if n > 0 {
				w.write(", ")
			}
			w.ident(a.column)
		}
		w.write(") VALUES (")
		for n, a := range i.values {
			if n > 0 {
				w.write(", ")
			}
			w.bind(normalize(a.value))
		}
		w.write(")")
	}
	renderReturning(w, i.returning)
	return w.String(), w.args, nil
}

// Update builds an UPDATE ... RETURNING statement.
type Update struct {
	table     string
	sets      []assignment
	where     []Condition
	returning []string
}

// NewUpdate creates an update of table.
func NewUpdate(table string) *Update {
	return &Update{table: table}
}

// Set adds a SET assignment.
func (u *Update) Set(column string, value any) *Update {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// Empty reports whether no assignments were added.
func (u *Update) Empty() bool {
	return len(u.sets) == 0
}

// Where adds conditions joined with AND.
func (u *Update) Where(conds ...Condition) *Update {
	u.where = append(u.where, conds...)
	return u
}

// Returning sets the RETURNING columns.
func (u *Update) Returning(columns ...string) *Update {
	u.returning = columns
	return u
}

// Build renders the statement.
func (u *Update) Build(d Dialect) (string, []any, error) {
	if len(u.sets) == 0 {
		return "", nil, ErrNoAssignments
	}
	w := newWriter(d)
	w.write("UPDATE ")
	w.ident(u.table)
	w.write(" SET ")
	for n, a := range u.sets {
		if n > 0 {
			w.write(", ")
		}
		w.ident(a.column)
		w.write(" = ")
		w.bind(normalize(a.value))
	}
	if err := renderWhere(w, u.where); err != nil {
		return "", nil, err
	}
	renderReturning(w, u.returning)
	return w.String(), w.args, nil
}

// Delete builds a DELETE statement.
type Delete struct {
	table string
	where []Condition
}

// NewDelete creates a delete from table.
func NewDelete(table string) *Delete {
	return &Delete{table: table}
}

// Where adds conditions joined with AND.
func (del *Delete) Where(conds ...Condition) *Delete {
	del.where = append(del.where, conds...)
	return del
}

// Build renders the statement.
func (del *Delete) Build(d Dialect) (string, []any, error) {
	w := newWriter(d)
	w.write("DELETE FROM ")
	w.ident(del.table)
	if err := renderWhere(w, del.where); err != nil {
		return "", nil, err
	}
	return w.String(), w.args, nil
}

func renderReturning(w *writer, columns []string) {
	for n, c := range columns {
		if n == 0 {
			w.write(" RETURNING ")
		} else {
			w.write(", ")
		}
		w.ident(c)
	}
}
