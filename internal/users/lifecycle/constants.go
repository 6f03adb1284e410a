// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle

import "time"

// # Workflow Secret Lifetimes

const (
	// VerificationTTL is the duration an email verification code+token pair
	// remains valid. Short-lived (5m): the user is at the keyboard right
	// after registering.
	VerificationTTL = 5 * time.Minute

	// ResetTTL is the duration a password reset code+token pair remains valid.
	// Matches VerificationTTL: reissue is cheap and gated by the cooldown.
	ResetTTL = 5 * time.Minute

	// EditTTL is the duration a profile edit confirmation token remains valid.
	// Longer (15m) because the user may still be filling in the edit form.
	EditTTL = 15 * time.Minute

	// DeleteTTL is the duration an account deletion confirmation token remains valid.
	DeleteTTL = 15 * time.Minute
)
