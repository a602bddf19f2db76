package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/config"
	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/user"
)

// Token is an opaque bearer token record. The plaintext secret is
// returned exactly once at issuance; only its digest is persisted.
type Token struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	Abilities  []string   `json:"abilities"`
	TokenHash  string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Expired reports whether the token has an expiry in the past.
func (t *Token) Expired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}

// TokenStore defines the persistence interface for bearer tokens.
type TokenStore interface {
	Insert(ctx context.Context, token *Token) error
	FindByHash(ctx context.Context, tokenHash string) (*Token, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

// UserLookup resolves token owners.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Issuer mints, verifies and revokes opaque bearer tokens.
type Issuer struct {
	tokens    TokenStore
	users     UserLookup
	logger    *logging.Logger
	name      string
	abilities []string
	expiry    time.Duration // zero means tokens never expire
}

func NewIssuer(tokens TokenStore, users UserLookup, logger *logging.Logger, cfg config.AuthConfig) *Issuer {
	return &Issuer{
		tokens:    tokens,
		users:     users,
		logger:    logger,
		name:      cfg.TokenName,
		abilities: cfg.TokenAbilities,
		expiry:    cfg.TokenExpiry,
	}
}

// Issue creates a token for the user and returns the plaintext secret.
// The secret is never persisted or logged.
func (i *Issuer) Issue(ctx context.Context, userID uuid.UUID) (string, *Token, error) {
	secret, err := generateSecret()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token secret: %w", err)
	}

	token := &Token{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      i.name,
		Abilities: i.abilities,
		TokenHash: hashToken(secret),
		CreatedAt: time.Now(),
	}
	if i.expiry > 0 {
		expiresAt := time.Now().Add(i.expiry)
		token.ExpiresAt = &expiresAt
	}

	if err := i.tokens.Insert(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to store token: %w", err)
	}

	return secret, token, nil
}

// Verify resolves a presented secret to its owning user. It fails
// closed: any lookup miss, expiry or storage error yields an error.
func (i *Issuer) Verify(ctx context.Context, secret string) (*user.User, error) {
	token, err := i.tokens.FindByHash(ctx, hashToken(secret))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if token.Expired() {
		return nil, ErrTokenExpired
	}

	owner, err := i.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Best-effort usage tracking; never blocks the caller's success path.
	go func(id uuid.UUID) {
		touchCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := i.tokens.TouchLastUsed(touchCtx, id); err != nil {
			i.logger.Warn("failed to update token last_used_at", "error", err)
		}
	}(token.ID)

	return owner, nil
}

// Revoke deletes the token matching the presented secret. Revoking a
// token that no longer exists is not an error.
func (i *Issuer) Revoke(ctx context.Context, secret string) error {
	if err := i.tokens.DeleteByHash(ctx, hashToken(secret)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllForUser deletes every token owned by the user.
func (i *Issuer) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := i.tokens.DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// generateSecret returns 32 bytes of entropy as a fixed-length
// URL-safe string.
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hashToken produces the stored digest of a plaintext secret.
func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
