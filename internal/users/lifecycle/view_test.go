// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobix/backend/internal/platform/sec"
	"github.com/inmobix/backend/internal/users/lifecycle"
)

func secretiveUser() *lifecycle.User {
	return &lifecycle.User{
		ID:                 "user-1",
		Username:           "ana",
		Email:              "ana@example.com",
		PasswordHash:       "$2a$10$secret",
		Document:           "CC-1234",
		BirthDate:          time.Date(1994, 6, 1, 0, 0, 0, 0, time.UTC),
		Role:               sec.RoleUser,
		VerificationCode:   "123456",
		VerificationToken:  "verification-token",
		VerificationExpiry: time.Now().Add(5 * time.Minute),
		ResetCode:          "654321",
		ResetToken:         "reset-token",
		EditToken:          "edit-token",
		DeleteToken:        "delete-token",
	}
}

/*
TestNewView_StripsAllSecrets serializes the mapped view and asserts that no
workflow secret or password material survives the mapping.
*/
func TestNewView_StripsAllSecrets(t *testing.T) {
	view := lifecycle.NewView(secretiveUser())

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	serialized := string(raw)

	assert.NotContains(t, serialized, "$2a$10$secret")
	assert.NotContains(t, serialized, "123456")
	assert.NotContains(t, serialized, "verification-token")
	assert.NotContains(t, serialized, "reset-token")
	assert.NotContains(t, serialized, "edit-token")
	assert.NotContains(t, serialized, "delete-token")

	assert.Equal(t, "1994-06-01", view.BirthDate)
}

/*
TestNewViewWithVerificationToken exposes exactly one secret: the
verification token the client needs to pair with the emailed code.
*/
func TestNewViewWithVerificationToken(t *testing.T) {
	view := lifecycle.NewViewWithVerificationToken(secretiveUser())

	assert.Equal(t, "verification-token", view.VerificationToken)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	serialized := string(raw)

	assert.Contains(t, serialized, "verification-token")
	assert.NotContains(t, serialized, "reset-token")
	assert.NotContains(t, serialized, "123456")
}
