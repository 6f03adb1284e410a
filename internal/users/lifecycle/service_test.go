// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package lifecycle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/pkg/pagination"

	"github.com/inmobix/backend/internal/users/lifecycle"
)

// # Test Doubles

// memoryStore is an in-memory [lifecycle.UserRepository] with copy semantics:
// reads return clones so that service-side mutations only become visible
// through an explicit Update, exactly like a real database.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]*lifecycle.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*lifecycle.User)}
}

func clone(user *lifecycle.User) *lifecycle.User {
	copied := *user
	return &copied
}

func (store *memoryStore) findWhere(match func(*lifecycle.User) bool) (*lifecycle.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, user := range store.users {
		if match(user) {
			return clone(user), nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (store *memoryStore) FindByID(_ context.Context, id string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.ID == id })
}

func (store *memoryStore) FindByEmail(_ context.Context, email string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.Email == email })
}

func (store *memoryStore) FindByUsername(_ context.Context, username string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.Username == username })
}

func (store *memoryStore) FindByDocument(_ context.Context, document string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.Document != "" && u.Document == document })
}

func (store *memoryStore) FindByVerificationToken(_ context.Context, token string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.VerificationToken != "" && u.VerificationToken == token })
}

func (store *memoryStore) FindByResetToken(_ context.Context, token string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.ResetToken != "" && u.ResetToken == token })
}

func (store *memoryStore) FindByEditToken(_ context.Context, token string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.EditToken != "" && u.EditToken == token })
}

func (store *memoryStore) FindByDeleteToken(_ context.Context, token string) (*lifecycle.User, error) {
	return store.findWhere(func(u *lifecycle.User) bool { return u.DeleteToken != "" && u.DeleteToken == token })
}

func (store *memoryStore) FindAll(_ context.Context, params pagination.Params) ([]*lifecycle.User, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	all := make([]*lifecycle.User, 0, len(store.users))
	for _, user := range store.users {
		all = append(all, clone(user))
	}
	return all, len(all), nil
}

func (store *memoryStore) Create(_ context.Context, user *lifecycle.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.users[user.ID] = clone(user)
	return nil
}

func (store *memoryStore) Update(_ context.Context, user *lifecycle.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.users[user.ID]; !exists {
		return apperr.NotFound("Account")
	}
	store.users[user.ID] = clone(user)
	return nil
}

func (store *memoryStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.users[id]; !exists {
		return apperr.NotFound("Account")
	}
	delete(store.users, id)
	return nil
}

// recordingNotifier captures every outbound message so tests can read the
// emailed codes and tokens, and can simulate delivery failures.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	fail     bool
}

type sentMessage struct {
	to     string
	kind   lifecycle.MessageKind
	params map[string]string
}

func (notifier *recordingNotifier) Send(_ context.Context, to string, kind lifecycle.MessageKind, params map[string]string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	if notifier.fail {
		return errors.New("smtp gateway unreachable")
	}
	notifier.messages = append(notifier.messages, sentMessage{to: to, kind: kind, params: params})
	return nil
}

func (notifier *recordingNotifier) last() sentMessage {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	if len(notifier.messages) == 0 {
		return sentMessage{}
	}
	return notifier.messages[len(notifier.messages)-1]
}

// plainHasher is a deterministic stand-in for bcrypt to keep tests fast.
type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "hashed:" + raw, nil }

func (plainHasher) Verify(raw, digest string) bool { return "hashed:"+raw == digest }

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// # Fixture

type fixture struct {
	service  *lifecycle.Service
	store    *memoryStore
	notifier *recordingNotifier
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemoryStore()
	notifier := &recordingNotifier{}
	clock := &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := lifecycle.NewService(store, notifier, plainHasher{}, logger,
		lifecycle.WithClock(clock.Now),
	)

	return &fixture{service: service, store: store, notifier: notifier, clock: clock}
}

func (f *fixture) register(t *testing.T, email string) lifecycle.UserView {
	t.Helper()

	view, err := f.service.Register(context.Background(), lifecycle.RegisterInput{
		Username: "user-" + email,
		Email:    email,
		Password: "correct-horse-battery",
		Document: "doc-" + email,
	})
	require.NoError(t, err)
	return view
}

// registerVerified creates an account and walks it through email verification.
func (f *fixture) registerVerified(t *testing.T, email string) lifecycle.UserView {
	t.Helper()

	view := f.register(t, email)
	code := f.notifier.last().params["code"]
	require.NoError(t, f.service.VerifyEmail(context.Background(), view.VerificationToken, code))
	return view
}

// # Registration

/*
TestRegister_IssuesVerificationSecret checks that a fresh account starts
unverified, hands back a verification token, and emails the paired code.
*/
func TestRegister_IssuesVerificationSecret(t *testing.T) {
	f := newFixture(t)

	view := f.register(t, "ana@example.com")

	assert.NotEmpty(t, view.ID)
	assert.NotEmpty(t, view.VerificationToken)
	assert.False(t, view.Verified)
	assert.Equal(t, "USER", string(view.Role))

	message := f.notifier.last()
	assert.Equal(t, "ana@example.com", message.to)
	assert.Equal(t, lifecycle.KindVerifyAccount, message.kind)
	assert.Len(t, message.params["code"], 6)
}

/*
TestRegister_DuplicateIdentity checks that each identity field conflict is
reported by name and that the first account is unaffected.
*/
func TestRegister_DuplicateIdentity(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")

	tests := []struct {
		name  string
		input lifecycle.RegisterInput
		field string
	}{
		{
			"same_email",
			lifecycle.RegisterInput{Username: "other", Email: "ana@example.com", Password: "password123"},
			"email",
		},
		{
			"same_username",
			lifecycle.RegisterInput{Username: "user-ana@example.com", Email: "other@example.com", Password: "password123"},
			"username",
		},
		{
			"same_document",
			lifecycle.RegisterInput{Username: "third", Email: "third@example.com", Password: "password123", Document: "doc-ana@example.com"},
			"document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "DUPLICATE_IDENTITY", ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}

	// First account is still there and still unverified.
	original, err := f.store.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.False(t, original.Verified)
}

/*
TestRegister_NotifierFailureIsNonFatal checks that a broken email gateway
does not abort registration.
*/
func TestRegister_NotifierFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true

	view, err := f.service.Register(context.Background(), lifecycle.RegisterInput{
		Username: "ana",
		Email:    "ana@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, view.VerificationToken)

	_, err = f.store.FindByEmail(context.Background(), "ana@example.com")
	assert.NoError(t, err)
}

// # Email Verification

/*
TestVerifyEmail_ValidationOrder walks the token -> code -> expiry sequence
and checks each failure mode surfaces the right error code.
*/
func TestVerifyEmail_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	view := f.register(t, "ana@example.com")
	code := f.notifier.last().params["code"]

	// Unknown token
	err := f.service.VerifyEmail(context.Background(), "no-such-token", code)
	assert.Equal(t, "INVALID_TOKEN", apperr.CodeOf(err))

	// Right token, wrong code
	err = f.service.VerifyEmail(context.Background(), view.VerificationToken, "000000")
	assert.Equal(t, "INVALID_CODE", apperr.CodeOf(err))

	// Right token, right code, but expired
	f.clock.Advance(6 * time.Minute)
	err = f.service.VerifyEmail(context.Background(), view.VerificationToken, code)
	assert.Equal(t, "EXPIRED", apperr.CodeOf(err))

	// Account must still be unverified after all failed attempts.
	user, err := f.store.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.False(t, user.Verified)
}

/*
TestVerifyEmail_ConsumptionIsExactlyOnce checks that a consumed token can
never be replayed.
*/
func TestVerifyEmail_ConsumptionIsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	view := f.register(t, "ana@example.com")
	code := f.notifier.last().params["code"]

	require.NoError(t, f.service.VerifyEmail(context.Background(), view.VerificationToken, code))

	user, err := f.store.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Empty(t, user.VerificationToken)
	assert.Empty(t, user.VerificationCode)

	// Replay: the secret was cleared together with the verified flag.
	err = f.service.VerifyEmail(context.Background(), view.VerificationToken, code)
	assert.Equal(t, "INVALID_TOKEN", apperr.CodeOf(err))
}

/*
TestVerifyEmail_ExpiredThenResend is the end-to-end recovery scenario:
the first code expires, a resend issues a fresh one, and verification
succeeds with the new pair.
*/
func TestVerifyEmail_ExpiredThenResend(t *testing.T) {
	f := newFixture(t)
	view := f.register(t, "a@x.com")
	firstCode := f.notifier.last().params["code"]

	f.clock.Advance(6 * time.Minute)

	err := f.service.VerifyEmail(context.Background(), view.VerificationToken, firstCode)
	assert.Equal(t, "EXPIRED", apperr.CodeOf(err))

	reissued, err := f.service.ResendVerification(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, reissued.VerificationToken)
	assert.NotEqual(t, view.VerificationToken, reissued.VerificationToken)

	secondCode := f.notifier.last().params["code"]

	require.NoError(t, f.service.VerifyEmail(context.Background(), reissued.VerificationToken, secondCode))

	user, err := f.store.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

/*
TestResendVerification_Guards covers the already-verified rejection and the
reissue cooldown.
*/
func TestResendVerification_Guards(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ResendVerification(context.Background(), "ghost@example.com")
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))

	f.registerVerified(t, "done@example.com")
	_, err = f.service.ResendVerification(context.Background(), "done@example.com")
	assert.Equal(t, "ALREADY_VERIFIED", apperr.CodeOf(err))

	// A freshly registered account still holds a live secret: resend is throttled.
	f.register(t, "pending@example.com")
	_, err = f.service.ResendVerification(context.Background(), "pending@example.com")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "RATE_LIMITED", ae.Code)
	assert.Greater(t, ae.RetryAfter, time.Duration(0))
}

// # Login Gate

/*
TestLogin_Gate covers the two-stage check: uniform credential failure, then
the verification gate.
*/
func TestLogin_Gate(t *testing.T) {
	f := newFixture(t)
	view := f.register(t, "ana@example.com")

	// Unknown email and wrong password must be indistinguishable.
	_, unknownErr := f.service.Login(context.Background(), "ghost@example.com", "whatever")
	_, wrongErr := f.service.Login(context.Background(), "ana@example.com", "wrong-password")

	assert.Equal(t, "INVALID_CREDENTIALS", apperr.CodeOf(unknownErr))
	assert.Equal(t, "INVALID_CREDENTIALS", apperr.CodeOf(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	// Correct credentials are still blocked before verification.
	_, err := f.service.Login(context.Background(), "ana@example.com", "correct-horse-battery")
	assert.Equal(t, "NOT_VERIFIED", apperr.CodeOf(err))

	// After verification the same credentials succeed.
	code := f.notifier.last().params["code"]
	require.NoError(t, f.service.VerifyEmail(context.Background(), view.VerificationToken, code))

	logged, err := f.service.Login(context.Background(), "ana@example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.True(t, logged.Verified)
	assert.Empty(t, logged.VerificationToken, "login must not leak workflow secrets")
}

// # Password Recovery

/*
TestForgotPassword_Cooldown checks the one-live-secret rule: a second request
inside the window is throttled with the remaining wait, and a request after
expiry issues a distinct token.
*/
func TestForgotPassword_Cooldown(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ana@example.com")

	_, err := f.service.ForgotPassword(context.Background(), "ghost@example.com")
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))

	first, err := f.service.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ResetToken)

	// Second request two minutes in: remaining wait must be 3:00.
	f.clock.Advance(2 * time.Minute)
	_, err = f.service.ForgotPassword(context.Background(), "ana@example.com")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "RATE_LIMITED", ae.Code)
	assert.Equal(t, 3*time.Minute, ae.RetryAfter)
	assert.Contains(t, ae.Message, "3:00")

	// Past expiry the request succeeds and issues a fresh token.
	f.clock.Advance(4 * time.Minute)
	second, err := f.service.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.ResetToken, second.ResetToken)
}

/*
TestResetPassword_Flow covers the full recovery round trip plus the
consumption and failure modes of the reset secret.
*/
func TestResetPassword_Flow(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ana@example.com")

	issued, err := f.service.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	code := f.notifier.last().params["code"]

	// Wrong code first.
	err = f.service.ResetPassword(context.Background(), issued.ResetToken, "000000", "new-password-123")
	assert.Equal(t, "INVALID_CODE", apperr.CodeOf(err))

	// Successful consumption replaces the password and clears the secret.
	require.NoError(t, f.service.ResetPassword(context.Background(), issued.ResetToken, code, "new-password-123"))

	message := f.notifier.last()
	assert.Equal(t, lifecycle.KindPasswordChanged, message.kind)

	_, err = f.service.Login(context.Background(), "ana@example.com", "correct-horse-battery")
	assert.Equal(t, "INVALID_CREDENTIALS", apperr.CodeOf(err))

	_, err = f.service.Login(context.Background(), "ana@example.com", "new-password-123")
	assert.NoError(t, err)

	// Replay of the consumed token.
	err = f.service.ResetPassword(context.Background(), issued.ResetToken, code, "another-password")
	assert.Equal(t, "INVALID_TOKEN", apperr.CodeOf(err))
}

// # Profile Edit

/*
TestConfirmEdit_Flow covers token issuance, overwrite-on-reissue, field
updates, and the cleared token after consumption.
*/
func TestConfirmEdit_Flow(t *testing.T) {
	f := newFixture(t)
	view := f.registerVerified(t, "ana@example.com")

	require.NoError(t, f.service.RequestEditToken(context.Background(), view.ID))
	staleToken := f.notifier.last().params["token"]

	// Reissue overwrites: the first token is dead.
	require.NoError(t, f.service.RequestEditToken(context.Background(), view.ID))
	liveToken := f.notifier.last().params["token"]
	require.NotEqual(t, staleToken, liveToken)

	_, err := f.service.ConfirmEdit(context.Background(), staleToken, lifecycle.EditInput{Phone: "+57 300 000"})
	assert.Equal(t, "INVALID_TOKEN", apperr.CodeOf(err))

	updated, err := f.service.ConfirmEdit(context.Background(), liveToken, lifecycle.EditInput{
		Phone:       "+57 300 123 4567",
		NewPassword: "brand-new-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "+57 300 123 4567", updated.Phone)
	assert.True(t, updated.Verified, "email unchanged: verification must survive the edit")

	_, err = f.service.Login(context.Background(), "ana@example.com", "brand-new-password")
	assert.NoError(t, err)

	// Consumed: the same token cannot confirm a second edit.
	_, err = f.service.ConfirmEdit(context.Background(), liveToken, lifecycle.EditInput{Phone: "+57 1"})
	assert.Equal(t, "INVALID_TOKEN", apperr.CodeOf(err))
}

/*
TestConfirmEdit_DuplicateEmailIsAtomic checks that an email conflict aborts
the whole edit with no partial update.
*/
func TestConfirmEdit_DuplicateEmailIsAtomic(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "taken@example.com")
	view := f.registerVerified(t, "ana@example.com")

	require.NoError(t, f.service.RequestEditToken(context.Background(), view.ID))
	token := f.notifier.last().params["token"]

	_, err := f.service.ConfirmEdit(context.Background(), token, lifecycle.EditInput{
		Email: "taken@example.com",
		Phone: "+57 300 999",
	})

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "DUPLICATE_IDENTITY", ae.Code)
	assert.Equal(t, "email", ae.Details[0].Field)

	// No partial update: neither email nor phone changed.
	user, err := f.store.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Empty(t, user.Phone)
}

/*
TestConfirmEdit_EmailChangeRearmsVerification checks the rearm side effect:
a changed email drops the account back to unverified with a fresh secret
and a new verification notification.
*/
func TestConfirmEdit_EmailChangeRearmsVerification(t *testing.T) {
	f := newFixture(t)
	view := f.registerVerified(t, "old@example.com")

	require.NoError(t, f.service.RequestEditToken(context.Background(), view.ID))
	token := f.notifier.last().params["token"]

	updated, err := f.service.ConfirmEdit(context.Background(), token, lifecycle.EditInput{
		Email: "new@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.False(t, updated.Verified)

	// The verification notice goes to the NEW address.
	message := f.notifier.last()
	assert.Equal(t, lifecycle.KindVerifyAccount, message.kind)
	assert.Equal(t, "new@example.com", message.to)

	// Login is gated again until the new address is proven.
	_, err = f.service.Login(context.Background(), "new@example.com", "correct-horse-battery")
	assert.Equal(t, "NOT_VERIFIED", apperr.CodeOf(err))

	user, err := f.store.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.NoError(t, f.service.VerifyEmail(context.Background(), user.VerificationToken, message.params["code"]))

	_, err = f.service.Login(context.Background(), "new@example.com", "correct-horse-battery")
	assert.NoError(t, err)
}

// # Account Deletion

/*
TestConfirmDelete_Flow covers expiry protection and the irreversible removal.
*/
func TestConfirmDelete_Flow(t *testing.T) {
	f := newFixture(t)
	view := f.registerVerified(t, "ana@example.com")

	require.NoError(t, f.service.RequestDeleteToken(context.Background(), view.ID))
	token := f.notifier.last().params["token"]
	assert.Equal(t, lifecycle.KindConfirmDelete, f.notifier.last().kind)

	// Expired token: the account survives.
	f.clock.Advance(16 * time.Minute)
	err := f.service.ConfirmDelete(context.Background(), token)
	assert.Equal(t, "EXPIRED", apperr.CodeOf(err))

	_, err = f.store.FindByID(context.Background(), view.ID)
	assert.NoError(t, err)

	// Fresh token: the account is permanently removed.
	require.NoError(t, f.service.RequestDeleteToken(context.Background(), view.ID))
	freshToken := f.notifier.last().params["token"]

	require.NoError(t, f.service.ConfirmDelete(context.Background(), freshToken))

	_, err = f.store.FindByID(context.Background(), view.ID)
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))
}

// # Administrative Lookups

/*
TestAdminLookups covers document lookup and the paginated account list.
*/
func TestAdminLookups(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ana@example.com")
	f.register(t, "bob@example.com")

	view, err := f.service.GetByDocument(context.Background(), "doc-ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", view.Email)
	assert.Empty(t, view.VerificationToken)

	_, err = f.service.GetByDocument(context.Background(), "no-such-document")
	assert.Equal(t, "NOT_FOUND", apperr.CodeOf(err))

	views, meta, err := f.service.ListAll(context.Background(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, 2, meta.Total)
}
