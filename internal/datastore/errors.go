package datastore

import (
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wildwatch/sightings/internal/errors"
)

// Sentinel errors for repository operations. Callers match them with
// errors.Is; the returned errors carry extra context.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.NewStd("record not found")

	// ErrLocationWriteFailed indicates the location update touched no rows.
	// The surrounding transaction is rolled back.
	ErrLocationWriteFailed = errors.NewStd("failed to write sighting location")

	// ErrSpeciesReference indicates the species_id foreign key was rejected.
	ErrSpeciesReference = errors.NewStd("species reference is not valid")

	// ErrConstraintViolation indicates a check constraint rejected a value.
	ErrConstraintViolation = errors.NewStd("value violates a database constraint")

	// ErrNotConnected is returned when the store has no open connection.
	ErrNotConnected = errors.NewStd("database connection is not initialized")
)

// PostgreSQL SQLSTATE codes
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// dbError creates a categorized database error with context pairs
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// translatePgError maps PostgreSQL constraint failures onto sentinels.
// Other errors are returned unchanged.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgForeignKeyViolation:
		return errors.New(errors.Join(ErrSpeciesReference, err)).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("constraint", pgErr.ConstraintName).
			Build()
	case pgCheckViolation:
		return errors.New(errors.Join(ErrConstraintViolation, err)).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("constraint", pgErr.ConstraintName).
			Build()
	default:
		return err
	}
}
