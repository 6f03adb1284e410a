// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle

import (
	"context"

	"github.com/inmobix/backend/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Token lookups match on the stored token value regardless of expiry: the
// service layer needs to distinguish an expired secret from an unknown one.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByDocument returns the account with the given national ID document.

		Parameters:
		  - context: context.Context
		  - document: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByDocument(context context.Context, document string) (*User, error)

	/*
		FindByVerificationToken returns the account holding the given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByVerificationToken(context context.Context, token string) (*User, error)

	/*
		FindByResetToken returns the account holding the given password reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByResetToken(context context.Context, token string) (*User, error)

	/*
		FindByEditToken returns the account holding the given edit confirmation token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEditToken(context context.Context, token string) (*User, error)

	/*
		FindByDeleteToken returns the account holding the given delete confirmation token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByDeleteToken(context context.Context, token string) (*User, error)

	/*
		FindAll returns a page of accounts ordered by creation time.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*User: Hydrated entities
		  - int: Total account count
		  - error: Database retrieval failures
	*/
	FindAll(context context.Context, params pagination.Params) ([]*User, int, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists the full mutable state of the account, including
		workflow secrets. Issuance and consumption of a secret must travel
		in the same Update call as the state change it guards.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		Delete permanently removes the account row. No soft-delete, no undo.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}
