// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

// PostgreSQL implementation of the account repository.
//
// # Architecture
//
// The repository is strictly separated from domain logic. It implements the
// domain-defined [UserRepository] interface using the [pgxpool.Pool]
// connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/dberr"
	"github.com/inmobix/backend/pkg/pagination"
)

// userColumns is the canonical column list shared by every account query.
const userColumns = `
	id, username, email, passwordhash, document, phone, birthdate, role, verified,
	verificationcode, verificationtoken, verificationexpiry,
	resetcode, resettoken, resetexpiry,
	edittoken, editexpiry,
	deletetoken, deleteexpiry,
	createdat, updatedat`

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new account record into the users.account table.

Description: Deep-persists account metadata including the already-armed
verification secret, ensuring timestamps are initialized if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, document, phone, birthdate, role, verified,
			verificationcode, verificationtoken, verificationexpiry,
			resetcode, resettoken, resetexpiry,
			edittoken, editexpiry,
			deletetoken, deleteexpiry,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullString(user.Document),
		nullString(user.Phone),
		nullTime(user.BirthDate),
		user.Role,
		user.Verified,
		nullString(user.VerificationCode),
		nullString(user.VerificationToken),
		nullTime(user.VerificationExpiry),
		nullString(user.ResetCode),
		nullString(user.ResetToken),
		nullTime(user.ResetExpiry),
		nullString(user.EditToken),
		nullTime(user.EditExpiry),
		nullString(user.DeleteToken),
		nullTime(user.DeleteExpiry),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_create_failed")
	}

	return nil
}

/*
Update persists the full mutable state of the account in a single statement.

Description: Workflow secret issuance and consumption travel in the same
UPDATE as the state change they guard, keeping the transition atomic at the
row level.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account SET
			username = $2, email = $3, passwordhash = $4, document = $5, phone = $6,
			birthdate = $7, role = $8, verified = $9,
			verificationcode = $10, verificationtoken = $11, verificationexpiry = $12,
			resetcode = $13, resettoken = $14, resetexpiry = $15,
			edittoken = $16, editexpiry = $17,
			deletetoken = $18, deleteexpiry = $19,
			updatedat = $20
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullString(user.Document),
		nullString(user.Phone),
		nullTime(user.BirthDate),
		user.Role,
		user.Verified,
		nullString(user.VerificationCode),
		nullString(user.VerificationToken),
		nullTime(user.VerificationExpiry),
		nullString(user.ResetCode),
		nullString(user.ResetToken),
		nullTime(user.ResetExpiry),
		nullString(user.EditToken),
		nullTime(user.EditExpiry),
		nullString(user.DeleteToken),
		nullTime(user.DeleteExpiry),
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_update_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
Delete permanently removes the account row. No soft-delete, no undo.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - error: apperr.NotFound if no row matched, or connectivity errors
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM users.account WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_repo_delete_failed")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

// FindByID retrieves an account by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findBy(context, "id = $1", id)
}

// FindByEmail retrieves an account by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findBy(context, "email = $1", email)
}

// FindByUsername retrieves an account by its unique username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findBy(context, "username = $1", username)
}

// FindByDocument retrieves an account by its unique national ID document.
func (repository *PostgresUserRepository) FindByDocument(context context.Context, document string) (*User, error) {
	return repository.findBy(context, "document = $1", document)
}

// FindByVerificationToken matches the stored verification token regardless
// of expiry, so the service can distinguish Expired from InvalidToken.
func (repository *PostgresUserRepository) FindByVerificationToken(context context.Context, token string) (*User, error) {
	return repository.findBy(context, "verificationtoken = $1", token)
}

// FindByResetToken matches the stored password reset token regardless of expiry.
func (repository *PostgresUserRepository) FindByResetToken(context context.Context, token string) (*User, error) {
	return repository.findBy(context, "resettoken = $1", token)
}

// FindByEditToken matches the stored edit confirmation token regardless of expiry.
func (repository *PostgresUserRepository) FindByEditToken(context context.Context, token string) (*User, error) {
	return repository.findBy(context, "edittoken = $1", token)
}

// FindByDeleteToken matches the stored delete confirmation token regardless of expiry.
func (repository *PostgresUserRepository) FindByDeleteToken(context context.Context, token string) (*User, error) {
	return repository.findBy(context, "deletetoken = $1", token)
}

/*
FindAll returns a page of accounts ordered by creation time (newest first).

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Hydrated entities
  - int: Total account count before paging
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) FindAll(context context.Context, params pagination.Params) ([]*User, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users.account`

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`, userColumns)

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_find_all_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

// findBy runs the canonical single-row account lookup with the given predicate.
func (repository *PostgresUserRepository) findBy(context context.Context, predicate string, arg any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users.account WHERE %s`, userColumns, predicate)

	user, err := scanUser(repository.pool.QueryRow(context, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

// scanUser hydrates one account row, converting NULL columns to zero values.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}

	var (
		document, phone                     *string
		birthDate                           *time.Time
		verificationCode, verificationToken *string
		verificationExpiry                  *time.Time
		resetCode, resetToken               *string
		resetExpiry                         *time.Time
		editToken, deleteToken              *string
		editExpiry, deleteExpiry            *time.Time
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&document,
		&phone,
		&birthDate,
		&user.Role,
		&user.Verified,
		&verificationCode,
		&verificationToken,
		&verificationExpiry,
		&resetCode,
		&resetToken,
		&resetExpiry,
		&editToken,
		&editExpiry,
		&deleteToken,
		&deleteExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Document = fromNullString(document)
	user.Phone = fromNullString(phone)
	user.BirthDate = fromNullTime(birthDate)
	user.VerificationCode = fromNullString(verificationCode)
	user.VerificationToken = fromNullString(verificationToken)
	user.VerificationExpiry = fromNullTime(verificationExpiry)
	user.ResetCode = fromNullString(resetCode)
	user.ResetToken = fromNullString(resetToken)
	user.ResetExpiry = fromNullTime(resetExpiry)
	user.EditToken = fromNullString(editToken)
	user.EditExpiry = fromNullTime(editExpiry)
	user.DeleteToken = fromNullString(deleteToken)
	user.DeleteExpiry = fromNullTime(deleteExpiry)

	return user, nil
}

// # NULL Conversion Helpers

func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nullTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}

func fromNullString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func fromNullTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
