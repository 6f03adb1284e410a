// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle

import (
	"time"

	"github.com/inmobix/backend/internal/platform/sec"
)

// # Response Mapping

// UserView is the external representation of an account.
//
// # Security
//
// The mapper strips the password hash always, and strips every workflow
// secret except the single token the triggering operation hands back to the
// client. Each operation returns exactly the secret the client needs next
// and nothing else.
type UserView struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Document  string       `json:"document,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	BirthDate string       `json:"birth_date,omitempty"`
	Role      sec.UserRole `json:"role"`
	Verified  bool         `json:"verified"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// VerificationToken is populated only by register and resend-verification
	// responses, where the client must pair it with the emailed code.
	VerificationToken string `json:"verification_token,omitempty"`
}

// ResetIssued is the response of a successful password recovery request.
type ResetIssued struct {
	// ResetToken pairs with the code delivered by email.
	ResetToken string `json:"reset_token"`
	Message    string `json:"message"`
}

// NewView maps an account to its external representation with every
// workflow secret stripped.
func NewView(user *User) UserView {
	view := UserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Document:  user.Document,
		Phone:     user.Phone,
		Role:      user.Role,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if !user.BirthDate.IsZero() {
		view.BirthDate = user.BirthDate.Format(time.DateOnly)
	}

	return view
}

// NewViewWithVerificationToken maps an account and additionally exposes the
// live verification token. Used by register and resend-verification only.
func NewViewWithVerificationToken(user *User) UserView {
	view := NewView(user)
	view.VerificationToken = user.VerificationToken
	return view
}

// NewViews maps a slice of accounts, stripping all secrets.
func NewViews(users []*User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, NewView(user))
	}
	return views
}
