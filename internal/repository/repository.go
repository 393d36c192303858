package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
