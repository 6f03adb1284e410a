// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package sec_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobix/backend/internal/platform/sec"
)

/*
TestSixDigitCode verifies the code is always six decimal digits in range.
*/
func TestSixDigitCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code := sec.SixDigitCode()

		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

/*
TestOpaqueToken verifies tokens are non-empty and unique across draws.
*/
func TestOpaqueToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token := sec.OpaqueToken()

		require.NotEmpty(t, token)
		assert.False(t, seen[token], "token %q generated twice", token)
		seen[token] = true
	}
}

/*
TestBcryptHasher verifies the hash round-trip and rejection of bad passwords.
*/
func TestBcryptHasher(t *testing.T) {
	hasher := sec.BcryptHasher{}

	digest, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "s3cret-password", digest)

	assert.True(t, hasher.Verify("s3cret-password", digest))
	assert.False(t, hasher.Verify("wrong-password", digest))
}

/*
TestParseRole checks the closed role enumeration.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		role    sec.UserRole
		isValid bool
	}{
		{"ADMIN", sec.RoleAdmin, true},
		{"USER", sec.RoleUser, true},
		{"admin", "", false},
		{"moderator", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			role, ok := sec.ParseRole(tt.raw)
			assert.Equal(t, tt.isValid, ok)
			assert.Equal(t, tt.role, role)
		})
	}

	assert.True(t, sec.RoleAdmin.IsAdmin())
	assert.False(t, sec.RoleUser.IsAdmin())
}
