package errors

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the config store can raise.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNotNullViolation    = "23502"
)

// FromStore translates a repository failure on entity into a typed error.
// A foreign key violation always means the referenced dimension is missing,
// the only foreign key in the config schema.
func FromStore(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Clone(ErrNotFound, fmt.Sprintf("%s not found", entity))
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return With(ErrConflict, err, fmt.Sprintf("%s already exists", entity))
		case pqForeignKeyViolation:
			return With(ErrValidation, err, "dimension not found")
		case pqCheckViolation, pqNotNullViolation:
			return With(ErrValidation, err, fmt.Sprintf("invalid %s", entity))
		}
	}
	return With(ErrInternal, err, fmt.Sprintf("failed to persist %s", entity))
}
