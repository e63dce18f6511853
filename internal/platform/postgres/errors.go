package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"projecthub/pkg/platform/sentinel"
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

// UniqueConstraint returns the violated constraint name when err is a
// unique constraint failure.
func UniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// ForeignKeyConstraint returns the violated constraint name when err is a
// foreign key failure.
func ForeignKeyConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// MapError translates driver errors into store sentinels. op prefixes the
// wrapped message.
func MapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	if constraint, ok := UniqueConstraint(err); ok {
		return fmt.Errorf("%s: %w", op, &sentinel.DuplicateKeyError{Constraint: constraint})
	}
	if constraint, ok := ForeignKeyConstraint(err); ok {
		return fmt.Errorf("%s: %w", op, &sentinel.MissingReferenceError{Constraint: constraint})
	}
	return fmt.Errorf("%s: %w", op, err)
}
