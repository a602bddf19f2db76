package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User row. Emails are stored lowercased; the unique index enforces
// case-insensitive uniqueness.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsAdmin      bool      `bun:"is_admin,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AccessToken row. Only a sha256 digest of the secret is stored; the
// plaintext leaves the process exactly once, at issuance.
type AccessToken struct {
	bun.BaseModel `bun:"table:access_tokens,alias:at"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID     uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	Name       string     `bun:"name,notnull"`
	TokenHash  string     `bun:"token_hash,notnull,unique"`
	Abilities  []string   `bun:"abilities,array"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	ExpiresAt  *time.Time `bun:"expires_at"`
	LastUsedAt *time.Time `bun:"last_used_at"`
}

// Hotel row. user_id carries ON DELETE CASCADE from users.
type Hotel struct {
	bun.BaseModel `bun:"table:hotels,alias:h"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name          string    `bun:"name,notnull"`
	Email         string    `bun:"email"`
	PricePerNight float64   `bun:"price_per_night"`
	Address       string    `bun:"address,notnull"`
	PhoneNumber   string    `bun:"phone_number,notnull"`
	Currency      string    `bun:"currency,notnull,default:'EUR'"`
	Photo         *string   `bun:"photo"`
	IsActive      bool      `bun:"is_active,notnull,default:true"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
