// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
HTTP delivery layer for the account lifecycle.

It implements the gateway for the whole account state machine — from
registration to verified login, password recovery, and the token-gated
edit/delete confirmation flows.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Identity: Trusts the gateway-injected requester headers for protected routes.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/

package lifecycle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inmobix/backend/internal/platform/apperr"
	requestutil "github.com/inmobix/backend/internal/platform/request"
	"github.com/inmobix/backend/internal/platform/respond"
	"github.com/inmobix/backend/internal/platform/validate"
	"github.com/inmobix/backend/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements account-lifecycle HTTP endpoints.
type Handler struct {
	userService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{userService: service}
}

// Routes returns a [chi.Router] configured with account lifecycle routes.
//
// # Endpoints
//   - POST /register            : Creates a new unverified account.
//   - POST /login               : Authenticates against the verification gate.
//   - POST /verify-email        : Consumes the verification code+token pair.
//   - POST /resend-verification : Reissues the verification secret.
//   - POST /forgot-password     : Issues the password recovery secret.
//   - POST /reset-password      : Consumes the recovery secret.
//   - POST /edit-token          : (auth) Issues the profile edit token.
//   - PUT  /edit                : (auth) Applies profile changes.
//   - POST /delete-token        : (auth) Issues the deletion token.
//   - POST /confirm-delete      : (auth) Permanently removes the account.
//   - GET  /document/{document} : (admin) Looks up an account by national ID.
//   - GET  /                    : (admin) Lists all accounts.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/resend-verification", handler.resendVerification)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Account-holder endpoints
	router.Post("/edit-token", handler.requestEditToken)
	router.Put("/edit", handler.confirmEdit)
	router.Post("/delete-token", handler.requestDeleteToken)
	router.Post("/confirm-delete", handler.confirmDelete)

	// Administrative endpoints
	router.Get("/document/{document}", handler.getByDocument)
	router.Get("/", handler.listAll)

	return router
}

// # Request Payloads

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Document  string `json:"document"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type confirmEditRequest struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Document    string `json:"document"`
	Phone       string `json:"phone"`
	BirthDate   string `json:"birth_date"`
	NewPassword string `json:"new_password"`
}

type confirmDeleteRequest struct {
	Token string `json:"token"`
}

/*
Register handles the creation of a new account.

POST /api/v1/users/register

Description: Validates input, checks for identity conflicts, and persists a
new unverified account with a verification secret already issued.

Request:
  - Body: registerRequest (Username, Email, Password, Document, Phone, BirthDate)

Response:
  - 201: UserView: Created account including the verification token
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: DuplicateIdentity: Email, username, or document already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	birthDate, ok := parseBirthDate(input.BirthDate, validator)
	if !ok || validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	view, err := handler.userService.Register(request.Context(), RegisterInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		Document:  input.Document,
		Phone:     input.Phone,
		BirthDate: birthDate,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view)
}

/*
Login authenticates an account against the verification gate.

POST /api/v1/users/login

Description: Verifies credentials and the verified flag. The error for an
unknown email and a wrong password is identical.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: UserView: Account profile
  - 401: InvalidCredentials / NotVerified
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.userService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
VerifyEmail confirms email ownership via the code+token pair.

POST /api/v1/users/verify-email

Request:
  - Body: verifyEmailRequest (Token, Code)

Response:
  - 200: Success: Email verified
  - 400: InvalidToken / InvalidCode / Expired
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.VerifyEmail(request.Context(), input.Token, input.Code); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email verified successfully",
	})
}

/*
ResendVerification reissues the verification secret.

POST /api/v1/users/resend-verification

Request:
  - Body: emailRequest (Email)

Response:
  - 200: UserView: Account including the new verification token
  - 400: AlreadyVerified
  - 404: NotFound
  - 429: RateLimited: A previous secret is still live
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.userService.ResendVerification(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/users/forgot-password

Request:
  - Body: emailRequest (Email)

Response:
  - 200: ResetIssued: Reset token paired with the emailed code
  - 404: NotFound
  - 429: RateLimited: A previous secret is still live
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.userService.ForgotPassword(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, issued)
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/users/reset-password

Request:
  - Body: resetPasswordRequest (Token, Code, Password)

Response:
  - 200: Success: Password updated
  - 400: InvalidToken / InvalidCode / Expired / weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldCode, input.Code).
		Digits(FieldCode, input.Code, 6).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.ResetPassword(request.Context(), input.Token, input.Code, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
RequestEditToken issues a profile edit confirmation token for the requester.

POST /api/v1/users/edit-token

Response:
  - 200: Success: Token issued and emailed
  - 401: Unauthorized: Missing requester identity
*/
func (handler *Handler) requestEditToken(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.RequestEditToken(request.Context(), identity.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "An edit confirmation link has been sent to your email",
	})
}

/*
ConfirmEdit applies profile changes guarded by the edit token.

PUT /api/v1/users/edit

Request:
  - Body: confirmEditRequest (Token plus any subset of profile fields)

Response:
  - 200: UserView: Updated profile
  - 400: InvalidToken / Expired
  - 409: DuplicateIdentity: New email, username, or document already taken
*/
func (handler *Handler) confirmEdit(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredIdentity(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input confirmEditRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token)

	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}
	if input.Username != "" {
		validator.MinLen(FieldUsername, input.Username, 3)
	}
	if input.NewPassword != "" {
		validator.MinLen(FieldNewPassword, input.NewPassword, 8)
	}

	birthDate, ok := parseBirthDate(input.BirthDate, validator)
	if !ok || validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	view, err := handler.userService.ConfirmEdit(request.Context(), input.Token, EditInput{
		Username:    input.Username,
		Email:       input.Email,
		Document:    input.Document,
		Phone:       input.Phone,
		BirthDate:   birthDate,
		NewPassword: input.NewPassword,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
RequestDeleteToken issues an account deletion confirmation token.

POST /api/v1/users/delete-token

Response:
  - 200: Success: Token issued and emailed with an irreversibility warning
  - 401: Unauthorized: Missing requester identity
*/
func (handler *Handler) requestDeleteToken(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.userService.RequestDeleteToken(request.Context(), identity.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "A deletion confirmation link has been sent to your email. This action is irreversible.",
	})
}

/*
ConfirmDelete permanently removes the account guarded by the delete token.

POST /api/v1/users/confirm-delete

Request:
  - Body: confirmDeleteRequest (Token)

Response:
  - 204: No Content: Account removed
  - 400: InvalidToken / Expired
*/
func (handler *Handler) confirmDelete(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredIdentity(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input confirmDeleteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	if err := handler.userService.ConfirmDelete(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GetByDocument looks up an account by its national ID document.

GET /api/v1/users/document/{document}

Description: Self-or-admin — a regular user may only resolve their own document.

Response:
  - 200: UserView
  - 403: Forbidden: Requester is neither the owner nor an administrator
  - 404: NotFound
*/
func (handler *Handler) getByDocument(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	document := requestutil.Param(request, "document")

	view, err := handler.userService.GetByDocument(request.Context(), document)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !identity.Role.IsAdmin() && view.ID != identity.UserID {
		respond.Error(writer, request, apperr.Forbidden("You may only look up your own document"))
		return
	}

	respond.OK(writer, view)
}

/*
ListAll returns a page of accounts.

GET /api/v1/users?page=&limit=

Response:
  - 200: []UserView with pagination metadata
  - 403: Forbidden: Requester is not an administrator
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	if _, err := requestutil.RequiredAdmin(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	views, meta, err := handler.userService.ListAll(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, views, meta)
}

// parseBirthDate parses an optional YYYY-MM-DD date, recording a validation
// failure instead of returning an error.
func parseBirthDate(raw string, validator *validate.Validator) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}

	birthDate, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		validator.Custom(FieldBirthDate, true, "Must be a valid date (YYYY-MM-DD)")
		return time.Time{}, false
	}

	return birthDate, true
}
