package hotel

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/validation"
)

// memStore is an in-memory Store.
type memStore struct {
	mu     sync.Mutex
	hotels map[uuid.UUID]*Hotel
}

func newMemStore() *memStore {
	return &memStore{hotels: map[uuid.UUID]*Hotel{}}
}

func (s *memStore) Create(_ context.Context, h *Hotel) (*Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.hotels[h.ID] = &cp
	out := cp
	return &out, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, h *Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return ErrNotFound
	}
	cp := *h
	s.hotels[h.ID] = &cp
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return ErrNotFound
	}
	delete(s.hotels, id)
	return nil
}

func (s *memStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Hotel
	for _, h := range s.hotels {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s *memStore) ListAll(_ context.Context) ([]Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Hotel
	for _, h := range s.hotels {
		out = append(out, *h)
	}
	return out, nil
}

// memPhotoStore records uploads and deletions.
type memPhotoStore struct {
	mu      sync.Mutex
	next    int
	stored  map[string]bool
	deleted []string
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{stored: map[string]bool{}}
}

func (p *memPhotoStore) Upload(_ context.Context, body io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	key := fmt.Sprintf("hotels/test/%d", p.next)
	p.stored[key] = true
	return key, nil
}

func (p *memPhotoStore) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stored, key)
	p.deleted = append(p.deleted, key)
	return nil
}

func newTestService() (*Service, *memStore, *memPhotoStore) {
	store := newMemStore()
	photos := newMemPhotoStore()
	return NewService(store, photos, logging.NewLogger(true)), store, photos
}

func f64(v float64) *float64 {
	return &v
}

func validInput() Input {
	return Input{
		Name:          "Grand Plaza",
		Email:         "stay@grandplaza.com",
		PricePerNight: f64(120),
		Address:       "1 Seaside Ave",
		PhoneNumber:   "+420123456789",
	}
}

func testPhoto() *PhotoUpload {
	return &PhotoUpload{Body: strings.NewReader("jpeg-bytes"), ContentType: "image/jpeg"}
}

func TestService_CreateDefaults(t *testing.T) {
	svc, _, _ := newTestService()
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, validInput(), nil)
	require.NoError(t, err)

	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, DefaultCurrency, created.Currency)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.Photo)
}

func TestService_CreateExplicitFields(t *testing.T) {
	svc, _, photos := newTestService()
	in := validInput()
	in.Currency = "USD"
	inactive := false
	in.IsActive = &inactive

	created, err := svc.Create(context.Background(), uuid.New(), in, testPhoto())
	require.NoError(t, err)

	assert.Equal(t, "USD", created.Currency)
	assert.False(t, created.IsActive)
	require.NotNil(t, created.Photo)
	assert.True(t, photos.stored[*created.Photo])
}

func TestService_CreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing name", func(in *Input) { in.Name = "" }, "name"},
		{"malformed email", func(in *Input) { in.Email = "not-an-email" }, "email"},
		{"missing price", func(in *Input) { in.PricePerNight = nil }, "price_per_night"},
		{"negative price", func(in *Input) { in.PricePerNight = f64(-1) }, "price_per_night"},
		{"missing address", func(in *Input) { in.Address = "" }, "address"},
		{"missing phone", func(in *Input) { in.PhoneNumber = "" }, "phone_number"},
		{"bad currency", func(in *Input) { in.Currency = "EURO" }, "currency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(ctx, uuid.New(), in, nil)
			var v validation.Errors
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v, tc.field)
		})
	}
}

func TestService_GetOwnershipGate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput(), nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListOwnIsScoped(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.Create(ctx, alice, validInput(), nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, validInput(), nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, validInput(), nil)
	require.NoError(t, err)

	own, err := svc.ListOwn(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, h := range own {
		assert.Equal(t, alice, h.UserID)
	}

	all, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_UpdateOwnershipGate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput(), nil)
	require.NoError(t, err)

	in := validInput()
	in.Name = "Renamed Plaza"

	_, err = svc.Update(ctx, uuid.New(), created.ID, in, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, owner, created.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Plaza", updated.Name)
}

func TestService_UpdateReplacesPhoto(t *testing.T) {
	svc, _, photos := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput(), testPhoto())
	require.NoError(t, err)
	require.NotNil(t, created.Photo)
	oldKey := *created.Photo

	updated, err := svc.Update(ctx, owner, created.ID, validInput(), testPhoto())
	require.NoError(t, err)
	require.NotNil(t, updated.Photo)

	assert.NotEqual(t, oldKey, *updated.Photo)
	assert.Contains(t, photos.deleted, oldKey)
	assert.True(t, photos.stored[*updated.Photo])
}

func TestService_UpdateWithoutPhotoKeepsExisting(t *testing.T) {
	svc, _, photos := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput(), testPhoto())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, created.ID, validInput(), nil)
	require.NoError(t, err)

	require.NotNil(t, updated.Photo)
	assert.Equal(t, *created.Photo, *updated.Photo)
	assert.Empty(t, photos.deleted)
}

func TestService_DeleteRemovesHotelAndPhoto(t *testing.T) {
	svc, store, photos := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput(), testPhoto())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, uuid.New(), created.ID), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))

	_, err = store.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, photos.deleted, *created.Photo)
}
