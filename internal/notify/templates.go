// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/inmobix/backend/internal/users/lifecycle"
)

// templateData is the variable set available to every message template.
type templateData struct {
	Username string
	Code     string
	Link     string
}

// subjects maps each message kind to its email subject line.
var subjects = map[lifecycle.MessageKind]string{
	lifecycle.KindVerifyAccount:   "Verify your Inmobix account",
	lifecycle.KindAccountVerified: "Your Inmobix account is verified",
	lifecycle.KindResetPassword:   "Your Inmobix password recovery code",
	lifecycle.KindPasswordChanged: "Your Inmobix password was changed",
	lifecycle.KindConfirmEdit:     "Confirm your Inmobix profile changes",
	lifecycle.KindConfirmDelete:   "Confirm your Inmobix account deletion",
	lifecycle.KindAccountDeleted:  "Your Inmobix account has been deleted",
}

// bodies maps each message kind to its HTML body template.
//
// Codes are rendered big and central: the user types them in by hand.
// Tokens never appear as text, only inside confirmation links.
var bodies = map[lifecycle.MessageKind]string{
	lifecycle.KindVerifyAccount: `
		<p>Hi {{.Username}},</p>
		<p>Use this code to verify your account. It expires in 5 minutes.</p>
		<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{.Code}}</p>
		<p>If you did not create an Inmobix account, you can ignore this email.</p>`,

	lifecycle.KindAccountVerified: `
		<p>Hi {{.Username}},</p>
		<p>Your email has been verified. Welcome to Inmobix!</p>
		<p>You can now log in and start browsing properties.</p>`,

	lifecycle.KindResetPassword: `
		<p>Hi {{.Username}},</p>
		<p>Use this code to reset your password. It expires in 5 minutes.</p>
		<p style="font-size:28px;letter-spacing:6px;font-weight:bold">{{.Code}}</p>
		<p>If you did not request a password reset, you can ignore this email.</p>`,

	lifecycle.KindPasswordChanged: `
		<p>Hi {{.Username}},</p>
		<p>Your Inmobix password was just changed.</p>
		<p>If this was not you, your account may be compromised — contact
		<a href="mailto:support@inmobix.com">support@inmobix.com</a> immediately.</p>`,

	lifecycle.KindConfirmEdit: `
		<p>Hi {{.Username}},</p>
		<p>A change to your profile was requested. Confirm it within 15 minutes:</p>
		<p><a href="{{.Link}}">Confirm profile changes</a></p>
		<p>If you did not request this, you can ignore this email.</p>`,

	lifecycle.KindConfirmDelete: `
		<p>Hi {{.Username}},</p>
		<p>The deletion of your Inmobix account was requested. Confirm it within 15 minutes:</p>
		<p><a href="{{.Link}}">Permanently delete my account</a></p>
		<p><strong>This action is irreversible.</strong> All your data will be removed.</p>
		<p>If you did not request this, you can ignore this email.</p>`,

	lifecycle.KindAccountDeleted: `
		<p>Hi {{.Username}},</p>
		<p>Your Inmobix account has been permanently deleted. We are sorry to see you go.</p>`,
}

// layout wraps every body in the shared branded frame.
const layout = `<!DOCTYPE html>
<html>
<body style="font-family:Helvetica,Arial,sans-serif;color:#1f2933;max-width:520px;margin:0 auto">
	<h2 style="color:#0b7285">Inmobix</h2>
	{{.Body}}
	<hr style="border:none;border-top:1px solid #e1e4e8">
	<p style="font-size:12px;color:#6b7280">Inmobix — find your next home.</p>
</body>
</html>`

// renderer parses and caches the message templates once at startup.
type renderer struct {
	layout    *template.Template
	templates map[lifecycle.MessageKind]*template.Template
}

// newRenderer compiles every known template. A broken template is a
// programming error and fails startup rather than a request.
func newRenderer() (*renderer, error) {
	layoutTemplate, err := template.New("layout").Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("notify: invalid layout template: %w", err)
	}

	templates := make(map[lifecycle.MessageKind]*template.Template, len(bodies))
	for kind, body := range bodies {
		parsed, err := template.New(string(kind)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("notify: invalid template %q: %w", kind, err)
		}
		templates[kind] = parsed
	}

	return &renderer{layout: layoutTemplate, templates: templates}, nil
}

// Render produces the subject and HTML body for a message kind.
func (r *renderer) Render(kind lifecycle.MessageKind, data templateData) (subject, html string, err error) {
	subject, ok := subjects[kind]
	if !ok {
		return "", "", fmt.Errorf("notify: unknown message kind %q", kind)
	}

	var body bytes.Buffer
	if err := r.templates[kind].Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("notify: render %q failed: %w", kind, err)
	}

	var full bytes.Buffer
	err = r.layout.Execute(&full, struct{ Body template.HTML }{Body: template.HTML(body.String())})
	if err != nil {
		return "", "", fmt.Errorf("notify: layout render failed: %w", err)
	}

	return subject, full.String(), nil
}
