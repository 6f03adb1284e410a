// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/ctxutil"
	"github.com/inmobix/backend/internal/platform/sec"
	"github.com/inmobix/backend/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Identity extracts the requester identity from the request context.

Returns nil if the edge gateway did not attach identity headers.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request carries a requester identity and returns it.

Returns:
  - *sec.Identity: The requester identity
  - error: apperr.Unauthorized if no identity is present
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {

	// Get the requester identity
	identity := ctxutil.GetIdentity(request.Context())

	// If the request carries no identity, return an error
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return identity, nil
}

/*
RequiredAdmin ensures the request carries an ADMIN identity.

Returns:
  - *sec.Identity: The requester identity
  - error: apperr.Unauthorized / apperr.Forbidden
*/
func RequiredAdmin(request *http.Request) (*sec.Identity, error) {

	identity, err := RequiredIdentity(request)
	if err != nil {
		return nil, err
	}

	if !identity.Role.IsAdmin() {
		return nil, apperr.Forbidden("Administrator privileges required")
	}

	return identity, nil
}
