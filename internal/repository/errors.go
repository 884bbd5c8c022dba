package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// DuplicateError reports a storage-level uniqueness violation. Field names
// the column whose constraint was hit.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// AsDuplicate unwraps a Postgres unique-violation error into a
// DuplicateError, resolving the offending field from the constraint name.
// Concurrent writers can both pass an existence check; the database
// constraint is the final arbiter and its violation surfaces here.
func AsDuplicate(err error) (*DuplicateError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil, false
	}

	field := "record"
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		field = "username"
	case strings.Contains(pgErr.ConstraintName, "email"):
		field = "email"
	case strings.Contains(pgErr.ConstraintName, "name"):
		field = "name"
	}
	return &DuplicateError{Field: field}, true
}
