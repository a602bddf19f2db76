package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hotelstock/hotel-stock-api/internal/database"
)

var errTokenNotFound = errors.New("token not found")

// TokenRepository persists bearer tokens in Postgres.
type TokenRepository struct {
	db *bun.DB
}

func NewTokenRepository(db *bun.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, token *Token) error {
	dbToken := &database.AccessToken{
		ID:         token.ID,
		UserID:     token.UserID,
		Name:       token.Name,
		TokenHash:  token.TokenHash,
		Abilities:  token.Abilities,
		CreatedAt:  token.CreatedAt,
		ExpiresAt:  token.ExpiresAt,
		LastUsedAt: token.LastUsedAt,
	}

	_, err := r.db.NewInsert().
		Model(dbToken).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

func (r *TokenRepository) FindByHash(ctx context.Context, tokenHash string) (*Token, error) {
	dbToken := new(database.AccessToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Where("token_hash = ?", tokenHash).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return mapDBTokenToModel(dbToken), nil
}

func (r *TokenRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*database.AccessToken)(nil)).
		Set("last_used_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}

	return nil
}

// DeleteByHash removes the token row. Deleting an absent row is not an
// error, which keeps revocation idempotent.
func (r *TokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.NewDelete().
		Model((*database.AccessToken)(nil)).
		Where("token_hash = ?", tokenHash).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}

func (r *TokenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.AccessToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}

	return nil
}

func mapDBTokenToModel(dbt *database.AccessToken) *Token {
	return &Token{
		ID:         dbt.ID,
		UserID:     dbt.UserID,
		Name:       dbt.Name,
		Abilities:  dbt.Abilities,
		TokenHash:  dbt.TokenHash,
		CreatedAt:  dbt.CreatedAt,
		ExpiresAt:  dbt.ExpiresAt,
		LastUsedAt: dbt.LastUsedAt,
	}
}
