package shared

import (
	"time"

	"staybook/internal/domain/place"

	"github.com/google/uuid"
)

// Write-side snapshots prevent dependency on Read-side query types (CQRS separation)
type PlaceSnapshot struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Title        string
	Photos       []string
	MaxGuests    int
	MinimumStay  int
	NightlyCents int64
	Windows      []place.Window
}

// ToDomain rebuilds the place aggregate so commands can run its rules.
func (s *PlaceSnapshot) ToDomain() *place.Place {
	return place.Reconstruct(s.ID, s.OwnerID, s.Title, s.Photos,
		s.MaxGuests, s.MinimumStay, s.NightlyCents, s.Windows)
}

type BookingSnapshot struct {
	ID               uuid.UUID
	PlaceID          uuid.UUID
	UserID           uuid.UUID
	Status           string
	CheckIn          time.Time
	CheckOut         time.Time
	PaymentSessionID *string
	CreatedAt        time.Time
}
