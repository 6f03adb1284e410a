// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
Package sec groups the security primitives of the platform.

It covers password hashing (bcrypt), the closed role enumeration, and the
generation of the short-lived secrets that drive the account lifecycle:

  - Codes: 6-digit values the user types in from an email.
  - Tokens: opaque high-entropy strings used as lookup keys, never typed.

Code entropy alone is deliberately small; security comes from pairing every
code with an unguessable token and a 5-minute expiry.
*/
package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/inmobix/backend/pkg/uuid"
)

// codeSpan is the size of the 6-digit code space [100000, 999999].
const codeSpan = 900000

// SixDigitCode returns a uniformly random fixed-width 6-digit decimal code.
func SixDigitCode() string {

	// crypto/rand keeps the draw uniform over the whole span
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("sec: failed to generate code: " + err.Error())
	}

	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// OpaqueToken returns a high-entropy unguessable token string.
//
// A UUIDv7 is paired with a unix-millisecond suffix as a uniqueness
// disambiguator. Tokens are lookup keys only and are never displayed as a
// "type this in" value.
func OpaqueToken() string {
	return fmt.Sprintf("%s_%d", uuid.New(), time.Now().UnixMilli())
}
