package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetBroker manages short-lived single-use password reset tokens.
// At most one live request exists per email; requesting again
// overwrites the previous one.
type ResetBroker interface {
	// Request stores a fresh reset token for the email and returns its
	// plaintext. Returns ErrResetThrottled when the previous request is
	// younger than the resend interval.
	Request(ctx context.Context, email string) (string, error)
	// Consume atomically validates and deletes the stored request.
	// Returns false on any mismatch or expiry without revealing which.
	Consume(ctx context.Context, email, token string) (bool, error)
}

// consumeScript deletes the request only when the presented digest
// matches, so a token can be spent exactly once.
var consumeScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'token_hash')
if stored == false then
	return 0
end
if stored == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisResetBroker stores reset requests in Redis keyed by email, with
// the token digest and creation time as hash fields and the TTL on the key.
type RedisResetBroker struct {
	client         *redis.Client
	ttl            time.Duration
	resendInterval time.Duration
}

func NewRedisResetBroker(client *redis.Client, ttl, resendInterval time.Duration) *RedisResetBroker {
	return &RedisResetBroker{
		client:         client,
		ttl:            ttl,
		resendInterval: resendInterval,
	}
}

func (b *RedisResetBroker) Request(ctx context.Context, email string) (string, error) {
	key := resetKey(email)

	createdStr, err := b.client.HGet(ctx, key, "created_at").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to check pending reset request: %w", err)
	}
	if err == nil {
		createdUnix, parseErr := strconv.ParseInt(createdStr, 10, 64)
		if parseErr == nil && time.Since(time.Unix(createdUnix, 0)) < b.resendInterval {
			return "", ErrResetThrottled
		}
	}

	token, err := generateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	// Last writer wins: the previous request for this email is replaced.
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"token_hash": hashToken(token),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, b.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store reset request: %w", err)
	}

	return token, nil
}

func (b *RedisResetBroker) Consume(ctx context.Context, email, token string) (bool, error) {
	key := resetKey(email)

	ok, err := consumeScript.Run(ctx, b.client, []string{key}, hashToken(token)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume reset request: %w", err)
	}

	return ok == 1, nil
}

func resetKey(email string) string {
	return fmt.Sprintf("password_reset:%s", email)
}
