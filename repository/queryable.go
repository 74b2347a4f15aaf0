package repository

import (
	"context"
	"errors"

	"marketbot/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a connection pool and a transaction so
// repositories can run in either context
type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres error codes the stores treat as invariant breaches
const (
	pgCheckViolation  = "23514"
	pgUniqueViolation = "23505"
)

// mapConstraintError converts a check or unique constraint failure into
// an IntegrityViolation. Constraints are the store's last-resort
// invariant; tripping one means validation upstream has a bug.
func mapConstraintError(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgCheckViolation || pgErr.Code == pgUniqueViolation {
			return apperrors.IntegrityViolation(err, message)
		}
	}
	return err
}
