package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isCheckViolation reports whether err is a Postgres CHECK constraint
// violation (SQLSTATE 23514), the signal this system uses for quota
// exhaustion.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
