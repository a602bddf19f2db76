package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/user"
)

// memTokenStore is an in-memory TokenStore keyed by token hash.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]*Token{}}
}

func (s *memTokenStore) Insert(_ context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[token.TokenHash] = &cp
	return nil
}

func (s *memTokenStore) FindByHash(_ context.Context, tokenHash string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[tokenHash]
	if !ok {
		return nil, errTokenNotFound
	}
	cp := *token
	return &cp, nil
}

func (s *memTokenStore) TouchLastUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.tokens {
		if token.ID == id {
			now := time.Now()
			token.LastUsedAt = &now
		}
	}
	return nil
}

func (s *memTokenStore) DeleteByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}

func (s *memTokenStore) DeleteForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, hash)
		}
	}
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// memUserStore is an in-memory UserStore with case-insensitive emails.
type memUserStore struct {
	mu            sync.Mutex
	byEmail       map[string]*user.User
	getByEmailErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: map[string]*user.User{}}
}

func (s *memUserStore) Create(_ context.Context, name, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := user.NormalizeEmail(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.byEmail[key] = u
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getByEmailErr != nil {
		return nil, s.getByEmailErr
	}
	u, ok := s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUserStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return user.ErrNotFound
}

// memResetBroker is an in-memory ResetBroker.
type memResetBroker struct {
	mu         sync.Mutex
	tokens     map[string]string // email -> plaintext token
	requests   int
	throttled  bool
	requestErr error
}

func newMemResetBroker() *memResetBroker {
	return &memResetBroker{tokens: map[string]string{}}
}

func (b *memResetBroker) Request(_ context.Context, email string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.throttled {
		return "", ErrResetThrottled
	}
	if b.requestErr != nil {
		return "", b.requestErr
	}
	b.requests++
	token := fmt.Sprintf("reset-token-%d", b.requests)
	b.tokens[email] = token
	return token, nil
}

func (b *memResetBroker) Consume(_ context.Context, email, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.tokens[email]
	if !ok || stored != token {
		return false, nil
	}
	delete(b.tokens, email)
	return true, nil
}

func (b *memResetBroker) lastToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[email]
}

// chanSender records reset emails on a channel so tests can wait for
// the dispatch goroutine.
type chanSender struct {
	sent chan string
}

func newChanSender() *chanSender {
	return &chanSender{sent: make(chan string, 8)}
}

func (s *chanSender) SendPasswordResetEmail(_ context.Context, toEmail, _ string) error {
	s.sent <- toEmail
	return nil
}
