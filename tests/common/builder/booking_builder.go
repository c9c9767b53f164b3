//go:build unit || e2e

package builder

import (
	"time"

	dombooking "staybook/internal/domain/booking"
	"staybook/internal/domain/place"
	reqdto "staybook/internal/handler/dto/request"
	"staybook/internal/usecase/commands"
	"staybook/internal/usecase/queries"
	"staybook/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	BookingID    uuid.UUID
	PlaceID      uuid.UUID
	PlaceTitle   string
	Photos       []string
	OwnerID      uuid.UUID
	UserID       uuid.UUID
	CheckIn      time.Time
	CheckOut     time.Time
	Adults       int
	Children     int
	Infants      int
	Pets         int
	MaxGuests    int
	MinimumStay  int
	NightlyCents int64
	Windows      []place.Window
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Now().UTC()
	return &BookingBuilder{
		BookingID:    uuid.New(),
		PlaceID:      uuid.New(),
		PlaceTitle:   "Seaside Cabin",
		Photos:       []string{"https://example.com/cabin.jpg"},
		OwnerID:      uuid.New(),
		UserID:       uuid.New(),
		CheckIn:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Adults:       2,
		Children:     0,
		Infants:      0,
		Pets:         0,
		MaxGuests:    4,
		MinimumStay:  1,
		NightlyCents: 12000,
		Status:       "pending",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Build methods
func (b *BookingBuilder) BuildSpec() dombooking.PlaceSpec {
	return dombooking.PlaceSpec{
		ID:           b.PlaceID,
		OwnerID:      b.OwnerID,
		MaxGuests:    b.MaxGuests,
		MinimumStay:  b.MinimumStay,
		NightlyCents: b.NightlyCents,
	}
}

func (b *BookingBuilder) BuildStay() (dombooking.StayRange, error) {
	return dombooking.NewStayRange(b.CheckIn, b.CheckOut)
}

func (b *BookingBuilder) BuildParty() (dombooking.Party, error) {
	return dombooking.NewParty(b.Adults, b.Children, b.Infants, b.Pets)
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	stay, err := b.BuildStay()
	if err != nil {
		return nil, err
	}
	party, err := b.BuildParty()
	if err != nil {
		return nil, err
	}
	return dombooking.NewBooking(b.BuildSpec(), b.UserID, stay, party)
}

func (b *BookingBuilder) BuildPlaceSnapshot() *shared.PlaceSnapshot {
	return &shared.PlaceSnapshot{
		ID:           b.PlaceID,
		OwnerID:      b.OwnerID,
		Title:        b.PlaceTitle,
		Photos:       b.Photos,
		MaxGuests:    b.MaxGuests,
		MinimumStay:  b.MinimumStay,
		NightlyCents: b.NightlyCents,
		Windows:      b.Windows,
	}
}

func (b *BookingBuilder) BuildBookingSnapshot() *shared.BookingSnapshot {
	return &shared.BookingSnapshot{
		ID:        b.BookingID,
		PlaceID:   b.PlaceID,
		UserID:    b.UserID,
		Status:    b.Status,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		CreatedAt: b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildCommand() commands.CreateBookingRequest {
	return commands.CreateBookingRequest{
		PlaceID:  b.PlaceID,
		CheckIn:  b.CheckIn,
		CheckOut: b.CheckOut,
		Adults:   b.Adults,
		Children: b.Children,
		Infants:  b.Infants,
		Pets:     b.Pets,
	}
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		PlaceID:  b.PlaceID,
		CheckIn:  b.CheckIn,
		CheckOut: b.CheckOut,
		Adults:   b.Adults,
		Children: b.Children,
		Infants:  b.Infants,
		Pets:     b.Pets,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:              b.BookingID,
		PlaceID:         b.PlaceID,
		PlaceTitle:      b.PlaceTitle,
		UserID:          b.UserID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Adults:          int32(b.Adults),
		Children:        int32(b.Children),
		Infants:         int32(b.Infants),
		Pets:            int32(b.Pets),
		TotalPriceCents: b.NightlyCents * int64(b.Nights()),
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:              b.BookingID,
		PlaceID:         b.PlaceID,
		PlaceTitle:      b.PlaceTitle,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		TotalPriceCents: b.NightlyCents * int64(b.Nights()),
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
}
