package query

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNullComparison is returned when an ordering operator is applied to NULL.
var ErrNullComparison = errors.New("ordering comparison against null")

// Operator is a filter comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpIn
)

var operatorNames = map[string]Operator{
	"eq": OpEqual,
	"ne": OpNotEqual,
	"gt": OpGreaterThan,
	"ge": OpGreaterThanOrEqual,
	"lt": OpLessThan,
	"le": OpLessThanOrEqual,
	"in": OpIn,
}

// ParseOperator parses the short operator names used in filter keys.
// An empty name is equality.
func ParseOperator(name string) (Operator, error) {
	if name == "" {
		return OpEqual, nil
	}
	op, ok := operatorNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown filter operator %q", name)
	}
	return op, nil
}

// String returns the short operator name
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpNotEqual:
		return "ne"
	case OpGreaterThan:
		return "gt"
	case OpGreaterThanOrEqual:
		return "ge"
	case OpLessThan:
		return "lt"
	case OpLessThanOrEqual:
		return "le"
	case OpIn:
		return "in"
	default:
		return "unknown"
	}
}

func (o Operator) sql() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	default:
		return ""
	}
}

// Condition is a boolean SQL expression usable in WHERE clauses.
type Condition interface {
	render(w *writer) error
}

type compare struct {
	column string
	op     Operator
	value  any
}

// Compare builds "column <op> value". A nil value (or nil pointer) turns
// equality into IS NULL and inequality into IS NOT NULL.
func Compare(column string, op Operator, value any) Condition {
	return compare{column: column, op: op, value: value}
}

// Eq is shorthand for Compare(column, OpEqual, value).
func Eq(column string, value any) Condition {
	return Compare(column, OpEqual, value)
}

func (c compare) render(w *writer) error {
	if c.op == OpIn {
		return fmt.Errorf("column %s: use In for set membership", c.column)
	}
	value := normalize(c.value)
	w.ident(c.column)
	if value == nil {
		switch c.op {
		case OpEqual:
			w.write(" IS NULL")
			return nil
		case OpNotEqual:
			w.write(" IS NOT NULL")
			return nil
		default:
			return fmt.Errorf("column %s: %w", c.column, ErrNullComparison)
		}
	}
	w.write(" " + c.op.sql() + " ")
	w.bind(value)
	return nil
}

type in struct {
	column string
	values []any
}

// In builds "column IN (...)". An empty set matches nothing.
func In(column string, values []any) Condition {
	return in{column: column, values: values}
}

func (c in) render(w *writer) error {
	if len(c.values) == 0 {
		w.write("1 = 0")
		return nil
	}
	w.ident(c.column)
	w.write(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.write(", ")
		}
		w.bind(normalize(v))
	}
	w.write(")")
	return nil
}

type nullCheck struct {
	column string
	not    bool
}

// IsNull builds "column IS NULL".
func IsNull(column string) Condition {
	return nullCheck{column: column}
}

// IsNotNull builds "column IS NOT NULL".
func IsNotNull(column string) Condition {
	return nullCheck{column: column, not: true}
}

func (c nullCheck) render(w *writer) error {
	w.ident(c.column)
	if c.not {
		w.write(" IS NOT NULL")
	} else {
		w.write(" IS NULL")
	}
	return nil
}

type group struct {
	conds []Condition
	or    bool
}

// And joins conditions with AND. An empty And is always true.
func And(conds ...Condition) Condition {
	return group{conds: conds}
}

// Or joins conditions with OR. An empty Or is always false.
func Or(conds ...Condition) Condition {
	return group{conds: conds, or: true}
}

func (g group) render(w *writer) error {
	if len(g.conds) == 0 {
		if g.or {
			w.write("1 = 0")
		} else {
			w.write("1 = 1")
		}
		return nil
	}
	sep := " AND "
	if g.or {
		sep = " OR "
	}
	w.write("(")
	for i, c := range g.conds {
		if i > 0 {
			w.write(sep)
		}
		if err := c.render(w); err != nil {
			return err
		}
	}
	w.write(")")
	return nil
}

// normalize turns typed nil pointers into an untyped nil.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	return v
}
