package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// Postgres SQLSTATE codes mapped to client errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// ConvertDBError converts driver errors to *crud.Error values.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	var ce *crud.Error
	if errors.As(err, &ce) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &crud.Error{Kind: crud.KindNotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if converted := convertCode(pgErr.Code, pgErr.Detail, err); converted != nil {
			return converted
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if converted := convertCode(string(pqErr.Code), pqErr.Detail, err); converted != nil {
			return converted
		}
	}

	return crud.Internal(err)
}

func convertCode(code, detail string, err error) error {
	switch code {
	case codeUniqueViolation:
		return crud.Conflict(fmt.Errorf("unique constraint violation: %s: %w", detail, err))
	case codeForeignKeyViolation:
		return crud.Conflict(fmt.Errorf("foreign key constraint violation: %s: %w", detail, err))
	case codeCheckViolation:
		return crud.BadRequest(fmt.Errorf("check constraint violation: %w", err))
	case codeNotNullViolation:
		return crud.BadRequest(fmt.Errorf("not null constraint violation: %w", err))
	default:
		return nil
	}
}
