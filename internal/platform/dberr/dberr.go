// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inmobix/backend/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violation mapping via the Postgres SQLSTATE
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.DuplicateIdentity(constraintField(pgErr.ConstraintName))
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// constraintField maps a unique constraint name to the user-facing field it guards.
func constraintField(constraint string) string {
	switch constraint {
	case "users_email_key", "uq_users_email":
		return "email"
	case "users_username_key", "uq_users_username":
		return "username"
	case "users_document_key", "uq_users_document":
		return "document"
	case "properties_slug_key", "uq_properties_slug":
		return "slug"
	default:
		return "resource"
	}
}
