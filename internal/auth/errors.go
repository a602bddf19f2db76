package auth

import (
	"errors"

	"github.com/hotelstock/hotel-stock-api/internal/validation"
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and bad
	// passwords so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers missing, unknown and malformed bearer tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a bearer token exists but has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrResetTokenInvalid covers unknown, expired and already-consumed
	// reset tokens without distinguishing between them.
	ErrResetTokenInvalid = errors.New("reset token is invalid or has expired")

	// ErrResetThrottled is returned when a reset was requested for the
	// same email within the resend interval.
	ErrResetThrottled = errors.New("a reset link was recently requested, please wait before retrying")
)

// ValidationErrors carries per-field validation messages.
type ValidationErrors = validation.Errors
