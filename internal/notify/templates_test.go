// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobix/backend/internal/users/lifecycle"
)

/*
TestRenderer_AllKinds renders every registered message kind and checks the
output carries the variables it is supposed to carry.
*/
func TestRenderer_AllKinds(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	data := templateData{
		Username: "Ana",
		Code:     "123456",
		Link:     "https://app.inmobix.com/profile/edit/confirm?token=abc",
	}

	tests := []struct {
		kind       lifecycle.MessageKind
		wantCode   bool
		wantLink   bool
		wantInSubj string
	}{
		{lifecycle.KindVerifyAccount, true, false, "Verify"},
		{lifecycle.KindAccountVerified, false, false, "verified"},
		{lifecycle.KindResetPassword, true, false, "recovery"},
		{lifecycle.KindPasswordChanged, false, false, "password"},
		{lifecycle.KindConfirmEdit, false, true, "profile"},
		{lifecycle.KindConfirmDelete, false, true, "deletion"},
		{lifecycle.KindAccountDeleted, false, false, "deleted"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			subject, html, err := r.Render(tt.kind, data)
			require.NoError(t, err)

			assert.Contains(t, subject, tt.wantInSubj)
			assert.Contains(t, html, "Ana")
			assert.Contains(t, html, "Inmobix")

			if tt.wantCode {
				assert.Contains(t, html, "123456")
			} else {
				assert.NotContains(t, html, "123456")
			}

			if tt.wantLink {
				assert.Contains(t, html, data.Link)
			}
		})
	}
}

/*
TestRenderer_UnknownKind fails loudly instead of sending an empty email.
*/
func TestRenderer_UnknownKind(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	_, _, err = r.Render(lifecycle.MessageKind("no_such_kind"), templateData{})
	assert.Error(t, err)
}

/*
TestRenderer_EscapesUserContent guards against HTML injection through the
username, which is user-controlled.
*/
func TestRenderer_EscapesUserContent(t *testing.T) {
	r, err := newRenderer()
	require.NoError(t, err)

	_, html, err := r.Render(lifecycle.KindAccountVerified, templateData{
		Username: `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
