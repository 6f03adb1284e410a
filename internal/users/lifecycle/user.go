// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

// Package lifecycle implements the account lifecycle of the Inmobix platform.
//
// # Architecture
//
// The package owns the token-based verification state machine: registration
// with email confirmation, login gating on verification status, password
// recovery, and token-gated profile-edit and account-deletion confirmation.
// Entities here represent the "Truth" of the system. They have no dependencies
// on outer layers (like databases, APIs, or libraries).
package lifecycle

import (
	"time"

	"github.com/inmobix/backend/internal/platform/sec"
)

// User represents a registered account of the Inmobix platform.
//
// # Rules
//   - Email, username, and document are unique across all accounts.
//   - PasswordHash is generated via Bcrypt exclusively by the [Service].
//   - Verified gates login: an unverified account cannot authenticate.
//   - Each workflow (verification / reset / edit / delete) owns at most one
//     active secret at a time; issuing a new one overwrites the previous.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Document     string       `json:"document,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	BirthDate    time.Time    `json:"birth_date,omitempty"`
	Role         sec.UserRole `json:"role"`
	Verified     bool         `json:"verified"`

	// Verification workflow secret. Code and token travel on separate
	// channels: the code by email, the token in the API response.
	VerificationCode   string    `json:"-"`
	VerificationToken  string    `json:"-"`
	VerificationExpiry time.Time `json:"-"`

	// Password reset workflow secret.
	ResetCode   string    `json:"-"`
	ResetToken  string    `json:"-"`
	ResetExpiry time.Time `json:"-"`

	// Profile edit confirmation secret. Token-only: the edit request itself
	// already carries the authenticated requester identity.
	EditToken  string    `json:"-"`
	EditExpiry time.Time `json:"-"`

	// Account deletion confirmation secret. Token-only, same as edit.
	DeleteToken  string    `json:"-"`
	DeleteExpiry time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Workflow Secret Helpers

// VerificationLive reports whether an unexpired verification secret is issued.
func (user *User) VerificationLive(now time.Time) bool {
	return user.VerificationToken != "" && now.Before(user.VerificationExpiry)
}

// ResetLive reports whether an unexpired reset secret is issued.
func (user *User) ResetLive(now time.Time) bool {
	return user.ResetToken != "" && now.Before(user.ResetExpiry)
}

// ArmVerification installs a fresh verification secret, invalidating any previous one.
func (user *User) ArmVerification(code, token string, expiry time.Time) {
	user.VerificationCode = code
	user.VerificationToken = token
	user.VerificationExpiry = expiry
}

// ClearVerification removes the verification secret after consumption.
func (user *User) ClearVerification() {
	user.VerificationCode = ""
	user.VerificationToken = ""
	user.VerificationExpiry = time.Time{}
}

// ArmReset installs a fresh password reset secret, invalidating any previous one.
func (user *User) ArmReset(code, token string, expiry time.Time) {
	user.ResetCode = code
	user.ResetToken = token
	user.ResetExpiry = expiry
}

// ClearReset removes the reset secret after consumption.
func (user *User) ClearReset() {
	user.ResetCode = ""
	user.ResetToken = ""
	user.ResetExpiry = time.Time{}
}

// ArmEdit installs a fresh edit confirmation token.
func (user *User) ArmEdit(token string, expiry time.Time) {
	user.EditToken = token
	user.EditExpiry = expiry
}

// ClearEdit removes the edit confirmation token after consumption.
func (user *User) ClearEdit() {
	user.EditToken = ""
	user.EditExpiry = time.Time{}
}

// ArmDelete installs a fresh delete confirmation token.
func (user *User) ArmDelete(token string, expiry time.Time) {
	user.DeleteToken = token
	user.DeleteExpiry = expiry
}

// ClearDelete removes the delete confirmation token after consumption.
func (user *User) ClearDelete() {
	user.DeleteToken = ""
	user.DeleteExpiry = time.Time{}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the account domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewPassword = "new_password"
	FieldDocument    = "document"
	FieldPhone       = "phone"
	FieldBirthDate   = "birth_date"
	FieldToken       = "token"
	FieldCode        = "code"
	FieldMessage     = "message"
)
