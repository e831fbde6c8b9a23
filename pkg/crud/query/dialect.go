// Package query implements the list protocol shared by generated resources:
// sort and filter parameter parsing, pagination, and a small SQL builder
// that renders parameterized statements for the supported dialects.
package query

import (
	"strconv"
	"strings"
)

// Dialect selects placeholder and identifier quoting rules.
type Dialect int

const (
	// Postgres renders $1, $2, ... placeholders.
	Postgres Dialect = iota
	// SQLite renders ? placeholders.
	SQLite
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Quote quotes an identifier. Both dialects accept double quotes.
func (d Dialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// writer accumulates SQL text and bind arguments for one statement.
type writer struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func newWriter(d Dialect) *writer {
	return &writer{dialect: d}
}

func (w *writer) write(s string) {
	w.sb.WriteString(s)
}

func (w *writer) ident(name string) {
	w.sb.WriteString(w.dialect.Quote(name))
}

func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.sb.WriteString(w.dialect.Placeholder(len(w.args)))
}

func (w *writer) String() string {
	return w.sb.String()
}
