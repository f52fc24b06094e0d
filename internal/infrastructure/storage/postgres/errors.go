package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"stockroom/internal/core/apperror"
)

// PostgreSQL error codes mapped to the application error taxonomy.
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeForeignKeyViolation  = "23503"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// MapError translates a pgx error into an AppError where a standard
// mapping exists. Serialization failures, deadlocks and lock timeouts
// become retryable CONCURRENCY_CONFLICT errors; constraint violations
// become conflicts. Other errors pass through unchanged.
func MapError(err error, entity string, entityID any) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return apperror.NewConcurrencyConflict(entity, entityID).WithCause(err)
	case pgCodeUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
	case pgCodeForeignKeyViolation:
		return apperror.NewConflict("record is referenced by other data").
			WithDetail("entity", entity).
			WithDetail("id", entityID).
			WithCause(err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}
