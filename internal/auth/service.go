package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/user"
)

const (
	maxNameLength     = 255
	maxEmailLength    = 255
	minPasswordLength = 8
)

// UserStore defines the credential-store interface the service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// TokenIssuer defines the bearer-token lifecycle interface.
type TokenIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, *Token, error)
	Verify(ctx context.Context, secret string) (*user.User, error)
	Revoke(ctx context.Context, secret string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// NotificationSender dispatches password reset links. Email delivery is
// an external collaborator; failures are logged, never surfaced.
type NotificationSender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// Service orchestrates registration, login, logout and the password
// reset flow.
type Service struct {
	users  UserStore
	tokens TokenIssuer
	resets ResetBroker
	sender NotificationSender
	logger *logging.Logger
}

func NewService(users UserStore, tokens TokenIssuer, resets ResetBroker, sender NotificationSender, logger *logging.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		resets: resets,
		sender: sender,
		logger: logger,
	}
}

// Register creates a user account and issues its first bearer token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	v := ValidationErrors{}
	if name == "" {
		v.Add("name", "The name field is required.")
	} else if len(name) > maxNameLength {
		v.Add("name", "The name may not be greater than 255 characters.")
	}
	validateEmail(v, email)
	validatePassword(v, password)
	if len(v) > 0 {
		return nil, "", v
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", ValidationErrors{"email": {"The email has already been taken."}}
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	secret, _, err := s.tokens.Issue(ctx, newUser.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return newUser, secret, nil
}

// Login verifies credentials and issues a fresh bearer token. Earlier
// tokens stay valid so the user can hold concurrent sessions.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	v := ValidationErrors{}
	validateEmail(v, email)
	if password == "" {
		v.Add("password", "The password field is required.")
	}
	if len(v) > 0 {
		return nil, "", v
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existing.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	secret, _, err := s.tokens.Issue(ctx, existing.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return existing, secret, nil
}

// Logout revokes exactly the presented token; the user's other
// sessions are untouched.
func (s *Service) Logout(ctx context.Context, presentedSecret string) error {
	return s.tokens.Revoke(ctx, presentedSecret)
}

// ForgotPassword creates or refreshes a reset request and dispatches
// the link. Unknown emails get the same success outcome as known ones
// to prevent account enumeration; storage failures still surface so
// an unreachable backend reads as an error, not a sent email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	v := ValidationErrors{}
	validateEmail(v, email)
	if len(v) > 0 {
		return v
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.resets.Request(ctx, existing.Email)
	if err != nil {
		if errors.Is(err, ErrResetThrottled) {
			return ErrResetThrottled
		}
		return fmt.Errorf("failed to store reset request: %w", err)
	}

	// Dispatch in a goroutine so SMTP latency never blocks the response.
	go func(toEmail, resetToken string) {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.sender.SendPasswordResetEmail(sendCtx, toEmail, resetToken); err != nil {
			s.logger.Warn("failed to send password reset email", "email", toEmail, "error", err)
		}
	}(existing.Email, token)

	return nil
}

// ResetPassword validates the reset token, updates the password and
// revokes all of the user's bearer tokens. The reset request is
// consumed only after the new password passes validation, so a failed
// attempt does not burn the token.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	v := ValidationErrors{}
	validateEmail(v, email)
	if token == "" {
		v.Add("token", "The token field is required.")
	}
	validatePassword(v, newPassword)
	if len(v) > 0 {
		return v
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Same failure as a bad token: do not reveal which.
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.resets.Consume(ctx, existing.Email, token)
	if err != nil {
		return fmt.Errorf("failed to consume reset request: %w", err)
	}
	if !ok {
		return ErrResetTokenInvalid
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Old sessions die with the old password.
	if err := s.tokens.RevokeAllForUser(ctx, existing.ID); err != nil {
		s.logger.Warn("failed to revoke user tokens after password reset", "error", err)
	}

	return nil
}

func validateEmail(v ValidationErrors, email string) {
	if email == "" {
		v.Add("email", "The email field is required.")
		return
	}
	if len(email) > maxEmailLength {
		v.Add("email", "The email may not be greater than 255 characters.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "The email must be a valid email address.")
	}
}

func validatePassword(v ValidationErrors, password string) {
	if password == "" {
		v.Add("password", "The password field is required.")
	} else if len(password) < minPasswordLength {
		v.Add("password", "The password must be at least 8 characters.")
	}
}
