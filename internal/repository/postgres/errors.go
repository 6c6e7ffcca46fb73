package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE class 23 integrity violations.
const (
	uniqueViolationCode = "23505"
)

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// isNoRows reports whether err indicates an empty result set.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
