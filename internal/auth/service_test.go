package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelstock/hotel-stock-api/internal/logging"
)

type serviceFixture struct {
	service *Service
	users   *memUserStore
	tokens  *memTokenStore
	issuer  *Issuer
	resets  *memResetBroker
	sender  *chanSender
}

func newServiceFixture() *serviceFixture {
	logger := logging.NewLogger(true)
	users := newMemUserStore()
	tokens := newMemTokenStore()
	issuer := NewIssuer(tokens, users, logger, testAuthConfig())
	resets := newMemResetBroker()
	sender := newChanSender()
	return &serviceFixture{
		service: NewService(users, issuer, resets, sender, logger),
		users:   users,
		tokens:  tokens,
		issuer:  issuer,
		resets:  resets,
		sender:  sender,
	}
}

func (f *serviceFixture) register(t *testing.T, name, email, password string) string {
	t.Helper()
	_, secret, err := f.service.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	require.NotEmpty(t, secret)
	return secret
}

func (f *serviceFixture) awaitResetEmail(t *testing.T) string {
	t.Helper()
	select {
	case email := <-f.sender.sent:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reset email dispatch")
		return ""
	}
}

func TestService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	created, secret, err := f.service.Register(ctx, "Jamie", "jamie@example.com", "super-secret-1")
	require.NoError(t, err)
	assert.Equal(t, "Jamie", created.Name)
	assert.Equal(t, "jamie@example.com", created.Email)

	got, err := f.issuer.Verify(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	loggedIn, loginSecret, err := f.service.Login(ctx, "jamie@example.com", "super-secret-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loggedIn.ID)
	assert.NotEqual(t, secret, loginSecret, "each login must mint a fresh token")
}

func TestService_RegisterNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	created, _, err := f.service.Register(ctx, "Jamie", "Jamie@Example.COM", "super-secret-1")
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", created.Email)

	_, _, err = f.service.Login(ctx, "jamie@example.com", "super-secret-1")
	require.NoError(t, err)
}

func TestService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		field    string
	}{
		{"missing name", "", "a@example.com", "super-secret-1", "name"},
		{"missing email", "Jamie", "", "super-secret-1", "email"},
		{"malformed email", "Jamie", "not-an-email", "super-secret-1", "email"},
		{"short password", "Jamie", "a@example.com", "short", "password"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.service.Register(ctx, tc.userName, tc.email, tc.password)
			var v ValidationErrors
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v, tc.field)
		})
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	_, _, err := f.service.Register(ctx, "Imposter", "JAMIE@example.com", "other-secret-1")
	var v ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"The email has already been taken."}, v["email"])
}

func TestService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	_, _, err := f.service.Login(ctx, "jamie@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown account fails identically.
	_, _, unknownErr := f.service.Login(ctx, "nobody@example.com", "wrong-password")
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
}

func TestService_LogoutRevokesOnlyPresentedToken(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	_, laptop, err := f.service.Login(ctx, "jamie@example.com", "super-secret-1")
	require.NoError(t, err)
	_, phone, err := f.service.Login(ctx, "jamie@example.com", "super-secret-1")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, laptop))

	_, err = f.issuer.Verify(ctx, laptop)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.issuer.Verify(ctx, phone)
	assert.NoError(t, err, "other sessions must survive a logout")
}

func TestService_ForgotPasswordSendsEmail(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	require.NoError(t, f.service.ForgotPassword(ctx, "jamie@example.com"))
	assert.Equal(t, "jamie@example.com", f.awaitResetEmail(t))
	assert.NotEmpty(t, f.resets.lastToken("jamie@example.com"))
}

func TestService_ForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	require.NoError(t, f.service.ForgotPassword(ctx, "nobody@example.com"))

	select {
	case email := <-f.sender.sent:
		t.Fatalf("no email should be sent for unknown accounts, got %q", email)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestService_ForgotPasswordStoreFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	f.users.getByEmailErr = errors.New("connection refused")

	err := f.service.ForgotPassword(ctx, "jamie@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResetThrottled)
}

func TestService_ForgotPasswordBrokerFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	f.resets.requestErr = errors.New("broker unavailable")

	err := f.service.ForgotPassword(ctx, "jamie@example.com")
	require.Error(t, err)

	select {
	case email := <-f.sender.sent:
		t.Fatalf("no email should be sent when the broker fails, got %q", email)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestService_LoginOverlongEmail(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	long := strings.Repeat("a", 250) + "@example.com"
	_, _, err := f.service.Login(ctx, long, "super-secret-1")
	var v ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v, "email")
}

func TestService_ForgotPasswordThrottled(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")
	f.resets.throttled = true

	err := f.service.ForgotPassword(ctx, "jamie@example.com")
	assert.ErrorIs(t, err, ErrResetThrottled)
}

func TestService_ResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	first := f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	require.NoError(t, f.service.ForgotPassword(ctx, "jamie@example.com"))
	f.awaitResetEmail(t)
	token := f.resets.lastToken("jamie@example.com")
	require.NotEmpty(t, token)

	// A wrong token fails and leaves the real one usable.
	err := f.service.ResetPassword(ctx, "jamie@example.com", "bogus-token", "brand-new-pass")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	require.NoError(t, f.service.ResetPassword(ctx, "jamie@example.com", token, "brand-new-pass"))

	// The token is single use.
	err = f.service.ResetPassword(ctx, "jamie@example.com", token, "another-new-pass")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	// Only the new password logs in.
	_, _, err = f.service.Login(ctx, "jamie@example.com", "super-secret-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.service.Login(ctx, "jamie@example.com", "brand-new-pass")
	require.NoError(t, err)

	// Every pre-reset session is revoked.
	_, err = f.issuer.Verify(ctx, first)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ResetPasswordWeakPasswordKeepsToken(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.register(t, "Jamie", "jamie@example.com", "super-secret-1")

	require.NoError(t, f.service.ForgotPassword(ctx, "jamie@example.com"))
	f.awaitResetEmail(t)
	token := f.resets.lastToken("jamie@example.com")

	err := f.service.ResetPassword(ctx, "jamie@example.com", token, "short")
	var v ValidationErrors
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v, "password")

	// Failed validation must not consume the token.
	require.NoError(t, f.service.ResetPassword(ctx, "jamie@example.com", token, "brand-new-pass"))
}

func TestService_ResetPasswordUnknownEmail(t *testing.T) {
	f := newServiceFixture()

	err := f.service.ResetPassword(context.Background(), "nobody@example.com", "token", "brand-new-pass")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
