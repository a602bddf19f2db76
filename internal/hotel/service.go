package hotel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"

	"github.com/google/uuid"

	"github.com/hotelstock/hotel-stock-api/internal/logging"
	"github.com/hotelstock/hotel-stock-api/internal/validation"
)

// ErrForbidden is returned when an authenticated user targets a hotel
// owned by somebody else.
var ErrForbidden = errors.New("hotel belongs to another user")

const (
	maxNameLength    = 255
	maxEmailLength   = 255
	maxAddressLength = 255
	maxPhoneLength   = 20
	currencyLength   = 3
)

// Store defines the persistence interface for hotels.
type Store interface {
	Create(ctx context.Context, h *Hotel) (*Hotel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Hotel, error)
	Update(ctx context.Context, h *Hotel) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Hotel, error)
	ListAll(ctx context.Context) ([]Hotel, error)
}

// PhotoStore persists hotel photos in an object store and hands back
// opaque keys.
type PhotoStore interface {
	Upload(ctx context.Context, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Input carries the writable hotel fields from a create or update
// request. PricePerNight is a pointer so a missing field can be told
// apart from an explicit zero.
type Input struct {
	Name          string
	Email         string
	PricePerNight *float64
	Address       string
	PhoneNumber   string
	Currency      string
	IsActive      *bool
}

// PhotoUpload is an optional photo accompanying a create or update.
// Size and content type are validated before the body is read.
type PhotoUpload struct {
	Body        io.Reader
	ContentType string
}

// Service implements owner-scoped hotel CRUD. The caller identity is
// always an explicit parameter; there is no ambient current user.
type Service struct {
	store  Store
	photos PhotoStore
	logger *logging.Logger
}

func NewService(store Store, photos PhotoStore, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		photos: photos,
		logger: logger,
	}
}

// ListOwn returns the hotels owned by the given user, and nothing else.
func (s *Service) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]Hotel, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// ListPublic returns every hotel. No authentication involved.
func (s *Service) ListPublic(ctx context.Context) ([]Hotel, error) {
	return s.store.ListAll(ctx)
}

// Get returns one hotel, visible to its owner only.
func (s *Service) Get(ctx context.Context, ownerID, hotelID uuid.UUID) (*Hotel, error) {
	h, err := s.store.GetByID(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !h.OwnedBy(ownerID) {
		return nil, ErrForbidden
	}
	return h, nil
}

// Create validates the input and persists a hotel owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in Input, photo *PhotoUpload) (*Hotel, error) {
	if v := validateInput(in); len(v) > 0 {
		return nil, v
	}

	h := &Hotel{
		ID:            uuid.New(),
		Name:          in.Name,
		Email:         in.Email,
		PricePerNight: *in.PricePerNight,
		Address:       in.Address,
		PhoneNumber:   in.PhoneNumber,
		Currency:      in.Currency,
		IsActive:      true,
		UserID:        ownerID,
	}
	if in.Currency == "" {
		h.Currency = DefaultCurrency
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}

	if photo != nil {
		key, err := s.photos.Upload(ctx, photo.Body, photo.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		h.Photo = &key
	}

	created, err := s.store.Create(ctx, h)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update validates and applies changes to a hotel after the ownership gate.
func (s *Service) Update(ctx context.Context, ownerID, hotelID uuid.UUID, in Input, photo *PhotoUpload) (*Hotel, error) {
	existing, err := s.store.GetByID(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !existing.OwnedBy(ownerID) {
		return nil, ErrForbidden
	}

	if v := validateInput(in); len(v) > 0 {
		return nil, v
	}

	oldPhoto := existing.Photo

	existing.Name = in.Name
	existing.Email = in.Email
	existing.PricePerNight = *in.PricePerNight
	existing.Address = in.Address
	existing.PhoneNumber = in.PhoneNumber
	if in.Currency != "" {
		existing.Currency = in.Currency
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}

	if photo != nil {
		key, err := s.photos.Upload(ctx, photo.Body, photo.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		existing.Photo = &key
	}

	if err := s.store.Update(ctx, existing); err != nil {
		return nil, err
	}

	// The replaced photo is unreferenced now; removal is best-effort.
	if photo != nil && oldPhoto != nil {
		if err := s.photos.Delete(ctx, *oldPhoto); err != nil {
			s.logger.Warn("failed to delete replaced hotel photo", "key", *oldPhoto, "error", err)
		}
	}

	return existing, nil
}

// Delete removes a hotel after the ownership gate, along with its photo.
func (s *Service) Delete(ctx context.Context, ownerID, hotelID uuid.UUID) error {
	existing, err := s.store.GetByID(ctx, hotelID)
	if err != nil {
		return err
	}
	if !existing.OwnedBy(ownerID) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, hotelID); err != nil {
		return err
	}

	if existing.Photo != nil {
		if err := s.photos.Delete(ctx, *existing.Photo); err != nil {
			s.logger.Warn("failed to delete hotel photo", "key", *existing.Photo, "error", err)
		}
	}

	return nil
}

func validateInput(in Input) validation.Errors {
	v := validation.Errors{}
	if in.Name == "" {
		v.Add("name", "The name field is required.")
	} else if len(in.Name) > maxNameLength {
		v.Add("name", "The name may not be greater than 255 characters.")
	}
	if in.Email == "" {
		v.Add("email", "The email field is required.")
	} else if len(in.Email) > maxEmailLength {
		v.Add("email", "The email may not be greater than 255 characters.")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		v.Add("email", "The email must be a valid email address.")
	}
	if in.PricePerNight == nil {
		v.Add("price_per_night", "The price per night field is required.")
	} else if *in.PricePerNight < 0 {
		v.Add("price_per_night", "The price per night must be at least 0.")
	}
	if in.Address == "" {
		v.Add("address", "The address field is required.")
	} else if len(in.Address) > maxAddressLength {
		v.Add("address", "The address may not be greater than 255 characters.")
	}
	if in.PhoneNumber == "" {
		v.Add("phone_number", "The phone number field is required.")
	} else if len(in.PhoneNumber) > maxPhoneLength {
		v.Add("phone_number", "The phone number may not be greater than 20 characters.")
	}
	if in.Currency != "" && len(in.Currency) != currencyLength {
		v.Add("currency", "The currency must be a 3-letter code.")
	}
	return v
}
