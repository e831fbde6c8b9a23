// Package store executes query builders against a database/sql handle and
// scans the results into generated record types.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/pkg/crud/query"
)

// DB is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Builder renders a statement for a dialect.
type Builder interface {
	Build(d query.Dialect) (string, []any, error)
}

// Store binds a database handle to its SQL dialect.
type Store struct {
	db      DB
	dialect query.Dialect
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every statement at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store over db.
func New(db DB, dialect query.Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() query.Dialect {
	return s.dialect
}

// Tx runs fn against a store bound to a new transaction. The transaction
// commits when fn returns nil and rolls back otherwise. A store whose handle
// cannot begin transactions, such as one bound to *sql.Tx, runs fn on
// itself.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	b, ok := s.db.(beginner)
	if !ok {
		return fn(s)
	}
	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Store{db: tx, dialect: s.dialect, logger: s.logger}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InTx is Tx for a function producing a result. The result is only
// returned once the transaction has committed.
func InTx[T any](ctx context.Context, s *Store, fn func(tx *Store) (T, error)) (T, error) {
	var out T
	err := s.Tx(ctx, func(tx *Store) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (s *Store) build(q Builder) (string, []any, error) {
	stmt, args, err := q.Build(s.dialect)
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	s.logger.Debug("sql", zap.String("statement", stmt), zap.Int("args", len(args)))
	return stmt, args, nil
}

// Get runs q and scans its single row. No row is crud.ErrNotFound.
func Get[T any](ctx context.Context, s *Store, q Builder, dest func(*T) []any) (*T, error) {
	stmt, args, err := s.build(q)
	if err != nil {
		return nil, err
	}
	var v T
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(dest(&v)...); err != nil {
		return nil, ConvertDBError(err)
	}
	return &v, nil
}

// List runs q and scans every row. The result is never nil.
func List[T any](ctx context.Context, s *Store, q Builder, dest func(*T) []any) ([]T, error) {
	stmt, args, err := s.build(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ConvertDBError(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := rows.Scan(dest(&v)...); err != nil {
			return nil, ConvertDBError(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, ConvertDBError(err)
	}
	return out, nil
}

// Exec runs q and returns the number of affected rows.
func Exec(ctx context.Context, s *Store, q Builder) (int64, error) {
	stmt, args, err := s.build(q)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, ConvertDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ConvertDBError(err)
	}
	return n, nil
}

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (query.Dialect, error) {
	switch driver {
	case "pgx", "pgx/v5", "postgres":
		return query.Postgres, nil
	case "sqlite3", "sqlite":
		return query.SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported driver %q", driver)
	}
}
