package hotel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hotelstock/hotel-stock-api/internal/database"
)

var ErrNotFound = errors.New("hotel not found")

// Repository handles hotel persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, h *Hotel) (*Hotel, error) {
	dbHotel := mapModelToDBHotel(h)

	_, err := r.db.NewInsert().
		Model(dbHotel).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}

	return mapDBHotelToModel(dbHotel), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	dbHotel := new(database.Hotel)
	err := r.db.NewSelect().
		Model(dbHotel).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}

	return mapDBHotelToModel(dbHotel), nil
}

func (r *Repository) Update(ctx context.Context, h *Hotel) error {
	result, err := r.db.NewUpdate().
		Model(mapModelToDBHotel(h)).
		Set("updated_at = NOW()").
		Column("name", "email", "price_per_night", "address", "phone_number", "currency", "photo", "is_active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Hotel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByOwner returns the hotels belonging to one user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]Hotel, error) {
	var dbHotels []database.Hotel
	err := r.db.NewSelect().
		Model(&dbHotels).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels by owner: %w", err)
	}

	return mapDBHotelsToModels(dbHotels), nil
}

// ListAll returns every hotel, for the unauthenticated public view.
func (r *Repository) ListAll(ctx context.Context) ([]Hotel, error) {
	var dbHotels []database.Hotel
	err := r.db.NewSelect().
		Model(&dbHotels).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}

	return mapDBHotelsToModels(dbHotels), nil
}

func mapModelToDBHotel(h *Hotel) *database.Hotel {
	return &database.Hotel{
		ID:            h.ID,
		Name:          h.Name,
		Email:         h.Email,
		PricePerNight: h.PricePerNight,
		Address:       h.Address,
		PhoneNumber:   h.PhoneNumber,
		Currency:      h.Currency,
		Photo:         h.Photo,
		IsActive:      h.IsActive,
		UserID:        h.UserID,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func mapDBHotelToModel(dbh *database.Hotel) *Hotel {
	return &Hotel{
		ID:            dbh.ID,
		Name:          dbh.Name,
		Email:         dbh.Email,
		PricePerNight: dbh.PricePerNight,
		Address:       dbh.Address,
		PhoneNumber:   dbh.PhoneNumber,
		Currency:      dbh.Currency,
		Photo:         dbh.Photo,
		IsActive:      dbh.IsActive,
		UserID:        dbh.UserID,
		CreatedAt:     dbh.CreatedAt,
		UpdatedAt:     dbh.UpdatedAt,
	}
}

func mapDBHotelsToModels(dbHotels []database.Hotel) []Hotel {
	hotels := make([]Hotel, len(dbHotels))
	for i := range dbHotels {
		hotels[i] = *mapDBHotelToModel(&dbHotels[i])
	}
	return hotels
}
