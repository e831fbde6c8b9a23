package query

import (
	"errors"
	"strconv"
)

// ErrNoColumns is returned when a statement has nothing to project.
var ErrNoColumns = errors.New("query has no columns")

type projection struct {
	name string
	null bool
}

type orderTerm struct {
	column    string
	direction Direction
}

// Select builds a SELECT statement over a single table.
type Select struct {
	table   string
	columns []projection
	where   []Condition
	orders  []orderTerm
	limit   *int64
	offset  *int64
	locking bool
}

// NewSelect creates a select over table.
func NewSelect(table string) *Select {
	return &Select{table: table}
}

// Columns adds projected columns.
func (s *Select) Columns(names ...string) *Select {
	for _, n := range names {
		s.columns = append(s.columns, projection{name: n})
	}
	return s
}

// NullColumn projects NULL under the name of column, keeping the result
// shape stable when a column is not selected.
func (s *Select) NullColumn(name string) *Select {
	s.columns = append(s.columns, projection{name: name, null: true})
	return s
}

// Project adds column as-is when selected, or as NULL otherwise.
func (s *Select) Project(name string, selected bool) *Select {
	if selected {
		return s.Columns(name)
	}
	return s.NullColumn(name)
}

// Where adds conditions joined with AND.
func (s *Select) Where(conds ...Condition) *Select {
	s.where = append(s.where, conds...)
	return s
}

// OrderBy appends an ORDER BY term on a table column.
func (s *Select) OrderBy(column string, dir Direction) *Select {
	s.orders = append(s.orders, orderTerm{column: column, direction: dir})
	return s
}

// Ordered reports whether any ORDER BY term was added.
func (s *Select) Ordered() bool {
	return len(s.orders) > 0
}

// Limit sets LIMIT.
func (s *Select) Limit(n int64) *Select {
	s.limit = &n
	return s
}

// Offset sets OFFSET.
func (s *Select) Offset(n int64) *Select {
	s.offset = &n
	return s
}

// Page applies p as LIMIT and OFFSET.
func (s *Select) Page(p Page) *Select {
	return s.Limit(p.Limit).Offset(p.Offset)
}

// ForUpdate locks the selected rows until the enclosing transaction ends.
// SQLite locks the whole database on write and renders no clause.
func (s *Select) ForUpdate(lock bool) *Select {
	s.locking = lock
	return s
}

// Build renders the statement and its arguments.
func (s *Select) Build(d Dialect) (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, ErrNoColumns
	}
	w := newWriter(d)
	w.write("SELECT ")
	for i, c := range s.columns {
		if i > 0 {
			w.write(", ")
		}
		if c.null {
			w.write("NULL AS ")
		}
		w.ident(c.name)
	}
	w.write(" FROM ")
	w.ident(s.table)
	if err := renderWhere(w, s.where); err != nil {
		return "", nil, err
	}
	for i, o := range s.orders {
		if i == 0 {
			w.write(" ORDER BY ")
		} else {
			w.write(", ")
		}
		// qualified so that a NULL AS alias cannot shadow the column
		w.ident(s.table)
		w.write(".")
		w.ident(o.column)
		if o.direction == Descending {
			w.write(" DESC")
		} else {
			w.write(" ASC")
		}
	}
	if s.limit != nil {
		w.write(" LIMIT " + strconv.FormatInt(*s.limit, 10))
	}
	if s.offset != nil {
		w.write(" OFFSET " + strconv.FormatInt(*s.offset, 10))
	}
	if s.locking && d == Postgres {
		w.write(" FOR UPDATE")
	}
	return w.String(), w.args, nil
}

func renderWhere(w *writer, conds []Condition) error {
	for i, c := range conds {
		if i == 0 {
			w.write(" WHERE ")
		} else {
			w.write(" AND ")
		}
		if err := c.render(w); err != nil {
			return err
		}
	}
	return nil
}
