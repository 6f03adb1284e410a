// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
Package notify delivers transactional lifecycle emails through Postmark.

# Architecture

The [Mailer] is the concrete implementation of the [lifecycle.Notifier]
contract. It renders a branded HTML template per message kind and POSTs it
to the Postmark REST API.

Delivery is best-effort by contract: callers log and swallow errors, so this
package never retries and never blocks longer than its request timeout.

Base URLs for confirmation links come from explicit configuration, never
from process-wide state.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/inmobix/backend/internal/platform/config"
	"github.com/inmobix/backend/internal/users/lifecycle"
)

const (
	// postmarkEndpoint is the single-message delivery endpoint.
	postmarkEndpoint = "https://api.postmarkapp.com/email"

	// sendTimeout caps a delivery attempt. Short: the caller treats the
	// email as fire-and-forget and must not be held up by a slow gateway.
	sendTimeout = 10 * time.Second
)

// Mailer sends lifecycle notifications through the Postmark HTTP API.
type Mailer struct {
	httpClient  *http.Client
	renderer    *renderer
	logger      *slog.Logger
	serverToken string
	from        string
	fromName    string
	frontendURL string
}

// NewMailer constructs a [Mailer] and compiles all message templates.
func NewMailer(cfg *config.Config, logger *slog.Logger) (*Mailer, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}

	return &Mailer{
		httpClient:  &http.Client{Timeout: sendTimeout},
		renderer:    r,
		logger:      logger,
		serverToken: cfg.PostmarkToken,
		from:        cfg.EmailFrom,
		fromName:    cfg.EmailFromName,
		frontendURL: cfg.FrontendURL,
	}, nil
}

// postmarkRequest is the JSON payload of the Postmark single-send API.
type postmarkRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HTMLBody      string `json:"HtmlBody"`
	MessageStream string `json:"MessageStream"`
}

// postmarkResponse is the subset of the Postmark reply we care about.
type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

/*
Send renders the template identified by kind and delivers it via Postmark.

Parameters:
  - context: context.Context
  - to: string (Recipient email address)
  - kind: lifecycle.MessageKind (Template selector)
  - params: map[string]string (Template variables)

Returns:
  - error: Rendering or delivery failures (non-fatal to the caller)
*/
func (mailer *Mailer) Send(context context.Context, to string, kind lifecycle.MessageKind, params map[string]string) error {
	subject, html, err := mailer.renderer.Render(kind, templateData{
		Username: params["username"],
		Code:     params["code"],
		Link:     mailer.confirmationLink(kind, params["token"]),
	})
	if err != nil {
		return err
	}

	payload, err := json.Marshal(postmarkRequest{
		From:          fmt.Sprintf("%s <%s>", mailer.fromName, mailer.from),
		To:            to,
		Subject:       subject,
		HTMLBody:      html,
		MessageStream: "outbound",
	})
	if err != nil {
		return fmt.Errorf("notify: marshal payload failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, postmarkEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request failed: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Postmark-Server-Token", mailer.serverToken)

	response, err := mailer.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("notify: delivery failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	var reply postmarkResponse
	if err := json.NewDecoder(response.Body).Decode(&reply); err != nil {
		return fmt.Errorf("notify: decode response failed: %w", err)
	}

	if response.StatusCode != http.StatusOK || reply.ErrorCode != 0 {
		return fmt.Errorf("notify: postmark rejected message (status %d, code %d): %s",
			response.StatusCode, reply.ErrorCode, reply.Message)
	}

	mailer.logger.DebugContext(context, "notification_sent",
		slog.String("kind", string(kind)),
		slog.String("message_id", reply.MessageID),
	)

	return nil
}

// confirmationLink builds the frontend URL the user must open to complete a
// token-gated flow. Kinds that carry only a code return an empty link.
func (mailer *Mailer) confirmationLink(kind lifecycle.MessageKind, token string) string {
	if token == "" {
		return ""
	}

	var path string
	switch kind {
	case lifecycle.KindConfirmEdit:
		path = "/profile/edit/confirm"
	case lifecycle.KindConfirmDelete:
		path = "/profile/delete/confirm"
	default:
		return ""
	}

	return fmt.Sprintf("%s%s?token=%s", mailer.frontendURL, path, url.QueryEscape(token))
}
