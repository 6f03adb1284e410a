// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/sec"
	"github.com/inmobix/backend/pkg/pagination"
	"github.com/inmobix/backend/pkg/uuid"
)

// PasswordHasher defines the contract for credential hashing.
type PasswordHasher interface {
	// Hash derives a storable digest from a raw password.
	Hash(raw string) (string, error)
	// Verify reports whether raw matches the stored digest in constant time.
	Verify(raw, digest string) bool
}

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to secret issuance,
// expiry checks, or the login gate must be reviewed by the security team.
//
// # Concurrency
//
// Each operation is a read-modify-write sequence over a single account row.
// The repository serializes concurrent writes per account; operations on
// different accounts are fully independent.
type Service struct {
	userRepository UserRepository
	notifier       Notifier
	hasher         PasswordHasher
	logger         *slog.Logger

	// now is injectable so expiry behavior can be tested with a simulated clock.
	now func() time.Time
}

// Option customizes a [Service] at construction time.
type Option func(*Service)

// WithClock overrides the wall-clock source used for expiry evaluation.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	notifier Notifier,
	hasher PasswordHasher,
	logger *slog.Logger,
	options ...Option,
) *Service {
	service := &Service{
		userRepository: userRepo,
		notifier:       notifier,
		hasher:         hasher,
		logger:         logger,
		now:            time.Now,
	}

	for _, option := range options {
		option(service)
	}

	return service
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Document  string
	Phone     string
	BirthDate time.Time
}

// Register validates, hashes, and persists a brand new account.
//
// # Parameters
//   - context: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - The account view, including the verification token the client must
//     pair with the emailed code.
//   - Returns [apperr.DuplicateIdentity] naming the conflicting field.
//
// # Business Rules
//   - Email, username, and document must each be unique.
//   - New accounts start unverified with a verification secret already issued.
//   - Default role is always USER.
func (service *Service) Register(context context.Context, input RegisterInput) (UserView, error) {
	// ── 1. Uniqueness Checks ──────────────────────────────────────────────

	// Each identity field is checked independently so the error can name
	// the exact conflicting field.
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return UserView{}, apperr.DuplicateIdentity(FieldEmail)
	}

	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return UserView{}, apperr.DuplicateIdentity(FieldUsername)
	}

	if input.Document != "" {
		if _, err := service.userRepository.FindByDocument(context, input.Document); err == nil {
			return UserView{}, apperr.DuplicateIdentity(FieldDocument)
		}
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("user_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuid.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Document:     input.Document,
		Phone:        input.Phone,
		BirthDate:    input.BirthDate,
		Role:         sec.RoleUser, // Rule: default role is always USER
		Verified:     false,
	}

	user.ArmVerification(sec.SixDigitCode(), sec.OpaqueToken(), service.now().Add(VerificationTTL))

	// ── 4. Persistence ────────────────────────────────────────────────────

	if err := service.userRepository.Create(context, user); err != nil {
		return UserView{}, fmt.Errorf("user_service_register_failed: %w", err)
	}

	// ── 5. Notification (best-effort) ─────────────────────────────────────

	service.notify(context, user.Email, KindVerifyAccount, map[string]string{
		"username": user.Username,
		"code":     user.VerificationCode,
	})

	return NewViewWithVerificationToken(user), nil
}

// Login validates credentials and the verification gate.
//
// # Parameters
//   - context: Context for the database operation.
//   - email: The account email.
//   - password: The plain-text password.
//
// # Returns
//   - The account view on success.
//   - Returns [apperr.InvalidCredentials] for an unknown email or a wrong
//     password. The two cases are indistinguishable to the caller so the
//     endpoint cannot enumerate registered accounts.
//   - Returns [apperr.NotVerified] if credentials match but the email has
//     not been confirmed yet.
func (service *Service) Login(context context.Context, email, password string) (UserView, error) {
	// ── 1. Credential Check ───────────────────────────────────────────────

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return UserView{}, apperr.InvalidCredentials()
	}

	// Bcrypt comparison is constant-time, preventing timing attacks.
	if !service.hasher.Verify(password, user.PasswordHash) {
		return UserView{}, apperr.InvalidCredentials()
	}

	// ── 2. Verification Gate ──────────────────────────────────────────────

	if !user.Verified {
		return UserView{}, apperr.NotVerified()
	}

	return NewView(user), nil
}

// VerifyEmail consumes a verification secret and marks the account verified.
//
// # Validation Order
//
// Token lookup, then code comparison, then expiry. The order is observable
// through the error taxonomy and must not change:
//   - unknown token          -> [apperr.InvalidToken]
//   - code mismatch          -> [apperr.InvalidCode]
//   - past expiry            -> [apperr.Expired]
//
// Consumption is exactly-once: the secret is cleared atomically with the
// verified flag, so replaying the same token fails with InvalidToken.
func (service *Service) VerifyEmail(context context.Context, token, code string) error {
	user, err := service.userRepository.FindByVerificationToken(context, token)
	if err != nil {
		return apperr.InvalidToken("verification")
	}

	if user.VerificationCode != code {
		return apperr.InvalidCode("verification")
	}

	if !service.now().Before(user.VerificationExpiry) {
		return apperr.Expired()
	}

	// ── Consume ───────────────────────────────────────────────────────────

	user.Verified = true
	user.ClearVerification()

	if err := service.userRepository.Update(context, user); err != nil {
		return fmt.Errorf("user_service_verify_failed: %w", err)
	}

	service.notify(context, user.Email, KindAccountVerified, map[string]string{
		"username": user.Username,
	})

	return nil
}

// ForgotPassword issues a password recovery secret for the account.
//
// # Rate Limiting
//
// While a reset secret is already issued and unexpired, reissue is rejected
// with [apperr.RateLimited] reporting the remaining wait (m:ss) computed
// from the stored expiry. A fresh secret is issued only once the previous
// one has expired or been consumed.
func (service *Service) ForgotPassword(context context.Context, email string) (ResetIssued, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return ResetIssued{}, apperr.NotFound("Account")
	}

	now := service.now()
	if user.ResetLive(now) {
		return ResetIssued{}, apperr.RateLimited(user.ResetExpiry.Sub(now))
	}

	// ── Issue ─────────────────────────────────────────────────────────────

	user.ArmReset(sec.SixDigitCode(), sec.OpaqueToken(), now.Add(ResetTTL))

	if err := service.userRepository.Update(context, user); err != nil {
		return ResetIssued{}, fmt.Errorf("user_service_forgot_password_failed: %w", err)
	}

	service.notify(context, user.Email, KindResetPassword, map[string]string{
		"username": user.Username,
		"code":     user.ResetCode,
	})

	return ResetIssued{
		ResetToken: user.ResetToken,
		Message:    "A recovery code has been sent to your email",
	}, nil
}

// ResetPassword consumes a reset secret and replaces the account password.
//
// Follows the same token -> code -> expiry validation order as [Service.VerifyEmail],
// scoped to the reset secret. The confirmation email doubles as a compromise
// alert for owners who never requested a reset.
func (service *Service) ResetPassword(context context.Context, token, code, newPassword string) error {
	user, err := service.userRepository.FindByResetToken(context, token)
	if err != nil {
		return apperr.InvalidToken("reset")
	}

	if user.ResetCode != code {
		return apperr.InvalidCode("reset")
	}

	if !service.now().Before(user.ResetExpiry) {
		return apperr.Expired()
	}

	// ── Consume ───────────────────────────────────────────────────────────

	hashedPassword, err := service.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("user_service_hash_failed: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.ClearReset()

	if err := service.userRepository.Update(context, user); err != nil {
		return fmt.Errorf("user_service_reset_password_failed: %w", err)
	}

	service.notify(context, user.Email, KindPasswordChanged, map[string]string{
		"username": user.Username,
	})

	return nil
}

// ResendVerification reissues the verification secret for an unverified account.
//
// # Returns
//   - The account view including the new verification token.
//   - Returns [apperr.AlreadyVerified] if the account needs no verification.
//   - Returns [apperr.RateLimited] while the previous secret is still live.
func (service *Service) ResendVerification(context context.Context, email string) (UserView, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return UserView{}, apperr.NotFound("Account")
	}

	if user.Verified {
		return UserView{}, apperr.AlreadyVerified()
	}

	now := service.now()
	if user.VerificationLive(now) {
		return UserView{}, apperr.RateLimited(user.VerificationExpiry.Sub(now))
	}

	// ── Reissue ───────────────────────────────────────────────────────────

	user.ArmVerification(sec.SixDigitCode(), sec.OpaqueToken(), now.Add(VerificationTTL))

	if err := service.userRepository.Update(context, user); err != nil {
		return UserView{}, fmt.Errorf("user_service_resend_verification_failed: %w", err)
	}

	service.notify(context, user.Email, KindVerifyAccount, map[string]string{
		"username": user.Username,
		"code":     user.VerificationCode,
	})

	return NewViewWithVerificationToken(user), nil
}

// RequestEditToken issues a profile edit confirmation token.
//
// Issuance is unconditional: requesting again simply overwrites the previous
// token, which is thereby invalidated.
func (service *Service) RequestEditToken(context context.Context, accountID string) error {
	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return apperr.NotFound("Account")
	}

	user.ArmEdit(sec.OpaqueToken(), service.now().Add(EditTTL))

	if err := service.userRepository.Update(context, user); err != nil {
		return fmt.Errorf("user_service_request_edit_failed: %w", err)
	}

	service.notify(context, user.Email, KindConfirmEdit, map[string]string{
		"username": user.Username,
		"token":    user.EditToken,
	})

	return nil
}

// EditInput holds the profile changes to apply on confirmation.
// Empty fields mean "no change".
type EditInput struct {
	Username    string
	Email       string
	Document    string
	Phone       string
	BirthDate   time.Time
	NewPassword string
}

// ConfirmEdit consumes an edit token and applies the profile changes.
//
// # Business Rules
//   - Changing email or document re-checks uniqueness against other accounts
//     and fails with [apperr.DuplicateIdentity] before anything is written,
//     leaving the profile untouched (no partial update).
//   - Changing email re-arms verification: the account drops back to
//     unverified with a fresh verification secret and a notification.
//   - The password is replaced only when a non-empty new password is given.
//   - The edit token is cleared on success regardless of which fields changed.
func (service *Service) ConfirmEdit(context context.Context, token string, input EditInput) (UserView, error) {
	user, err := service.userRepository.FindByEditToken(context, token)
	if err != nil {
		return UserView{}, apperr.InvalidToken("edit")
	}

	now := service.now()
	if !now.Before(user.EditExpiry) {
		return UserView{}, apperr.Expired()
	}

	// ── 1. Uniqueness Re-checks ───────────────────────────────────────────

	emailChanging := input.Email != "" && input.Email != user.Email
	if emailChanging {
		if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
			return UserView{}, apperr.DuplicateIdentity(FieldEmail)
		}
	}

	if input.Username != "" && input.Username != user.Username {
		if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
			return UserView{}, apperr.DuplicateIdentity(FieldUsername)
		}
	}

	if input.Document != "" && input.Document != user.Document {
		if _, err := service.userRepository.FindByDocument(context, input.Document); err == nil {
			return UserView{}, apperr.DuplicateIdentity(FieldDocument)
		}
	}

	// ── 2. Apply Changes ──────────────────────────────────────────────────

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Document != "" {
		user.Document = input.Document
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if !input.BirthDate.IsZero() {
		user.BirthDate = input.BirthDate
	}

	if input.NewPassword != "" {
		hashedPassword, err := service.hasher.Hash(input.NewPassword)
		if err != nil {
			return UserView{}, fmt.Errorf("user_service_hash_failed: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	// Rearm: a changed email must be proven before the account can log in again.
	if emailChanging {
		user.Email = input.Email
		user.Verified = false
		user.ArmVerification(sec.SixDigitCode(), sec.OpaqueToken(), now.Add(VerificationTTL))
	}

	// ── 3. Consume & Persist ──────────────────────────────────────────────

	user.ClearEdit()

	if err := service.userRepository.Update(context, user); err != nil {
		return UserView{}, fmt.Errorf("user_service_confirm_edit_failed: %w", err)
	}

	if emailChanging {
		service.notify(context, user.Email, KindVerifyAccount, map[string]string{
			"username": user.Username,
			"code":     user.VerificationCode,
		})
	}

	return NewView(user), nil
}

// RequestDeleteToken issues an account deletion confirmation token.
// The notification warns that the action is irreversible.
func (service *Service) RequestDeleteToken(context context.Context, accountID string) error {
	user, err := service.userRepository.FindByID(context, accountID)
	if err != nil {
		return apperr.NotFound("Account")
	}

	user.ArmDelete(sec.OpaqueToken(), service.now().Add(DeleteTTL))

	if err := service.userRepository.Update(context, user); err != nil {
		return fmt.Errorf("user_service_request_delete_failed: %w", err)
	}

	service.notify(context, user.Email, KindConfirmDelete, map[string]string{
		"username": user.Username,
		"token":    user.DeleteToken,
	})

	return nil
}

// ConfirmDelete consumes a delete token and permanently removes the account.
// There is no undo path and no soft-delete.
func (service *Service) ConfirmDelete(context context.Context, token string) error {
	user, err := service.userRepository.FindByDeleteToken(context, token)
	if err != nil {
		return apperr.InvalidToken("delete")
	}

	if !service.now().Before(user.DeleteExpiry) {
		return apperr.Expired()
	}

	if err := service.userRepository.Delete(context, user.ID); err != nil {
		return fmt.Errorf("user_service_confirm_delete_failed: %w", err)
	}

	service.notify(context, user.Email, KindAccountDeleted, map[string]string{
		"username": user.Username,
	})

	return nil
}

// GetByDocument returns the account registered under a national ID document.
// The transport layer restricts this to the account owner or an administrator.
func (service *Service) GetByDocument(context context.Context, document string) (UserView, error) {
	user, err := service.userRepository.FindByDocument(context, document)
	if err != nil {
		return UserView{}, apperr.NotFound("Account")
	}

	return NewView(user), nil
}

// ListAll returns a page of accounts. Admin-only at the transport layer.
func (service *Service) ListAll(context context.Context, params pagination.Params) ([]UserView, pagination.Meta, error) {
	users, total, err := service.userRepository.FindAll(context, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("user_service_list_failed: %w", err)
	}

	return NewViews(users), pagination.NewMeta(params.Page, params.Limit, total), nil
}

// notify delivers a lifecycle notification without letting a delivery
// failure surface to the caller. The state transition has already been
// committed; the email is best-effort.
func (service *Service) notify(context context.Context, to string, kind MessageKind, params map[string]string) {
	if err := service.notifier.Send(context, to, kind, params); err != nil {
		service.logger.WarnContext(context, "lifecycle_notification_failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}
