// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle

import "context"

// # Outbound Notifications

// MessageKind selects the template for an outbound notification.
type MessageKind string

const (
	// KindVerifyAccount carries the 6-digit verification code after
	// registration, resend, or an email change.
	KindVerifyAccount MessageKind = "verify_account"

	// KindAccountVerified confirms a successful email verification.
	KindAccountVerified MessageKind = "account_verified"

	// KindResetPassword carries the 6-digit password recovery code.
	KindResetPassword MessageKind = "reset_password"

	// KindPasswordChanged is the security notice sent after a password reset.
	// Informational even if unsolicited: it doubles as a compromise alert.
	KindPasswordChanged MessageKind = "password_changed"

	// KindConfirmEdit carries the profile edit confirmation link.
	KindConfirmEdit MessageKind = "confirm_edit"

	// KindConfirmDelete carries the account deletion confirmation link and
	// warns that the action is irreversible.
	KindConfirmDelete MessageKind = "confirm_delete"

	// KindAccountDeleted is the farewell notice after a confirmed deletion.
	KindAccountDeleted MessageKind = "account_deleted"
)

// Notifier delivers a templated message to an address.
//
// # Contract
//
// Delivery is best-effort. The service layer logs and swallows Notifier
// errors: a failed email must never roll back an already-committed state
// transition.
type Notifier interface {

	/*
		Send renders the template identified by kind and delivers it.

		Parameters:
		  - context: context.Context
		  - to: string (Recipient email address)
		  - kind: MessageKind (Template selector)
		  - params: map[string]string (Template variables: username, code, link, ...)

		Returns:
		  - error: Delivery failures (non-fatal to the caller)
	*/
	Send(context context.Context, to string, kind MessageKind, params map[string]string) error
}
