package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repository layer recognizes.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// Code returns the SQLSTATE of a PostgreSQL error, or "" for anything else.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// MapError translates database errors to domain errors. pgx.ErrNoRows
// becomes notFoundErr and a unique violation becomes duplicateErr; both
// keep the driver error in the chain. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: %w", notFoundErr, err)
	case Code(err) == UniqueViolation:
		return fmt.Errorf("%w: %w", duplicateErr, err)
	}
	return err
}

// Transient reports whether err is a concurrency abort that succeeds when
// the transaction is retried.
func Transient(err error) bool {
	switch Code(err) {
	case SerializationFailure, DeadlockDetected:
		return true
	}
	return false
}
