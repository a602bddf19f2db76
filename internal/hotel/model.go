package hotel

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency is applied when a hotel is created without one.
const DefaultCurrency = "EUR"

type Hotel struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PricePerNight float64   `json:"price_per_night"`
	Address       string    `json:"address"`
	PhoneNumber   string    `json:"phone_number"`
	Currency      string    `json:"currency"`
	Photo         *string   `json:"photo"`
	IsActive      bool      `json:"is_active"`
	UserID        uuid.UUID `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnedBy reports whether the hotel belongs to the given user. Every
// mutating operation must pass this gate before touching the record.
func (h *Hotel) OwnedBy(userID uuid.UUID) bool {
	return h.UserID == userID
}
