package response

import (
	"time"

	"staybook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	PlaceID          uuid.UUID `json:"placeId"`
	PlaceTitle       string    `json:"placeTitle"`
	UserID           uuid.UUID `json:"userId"`
	CheckIn          time.Time `json:"checkIn"`
	CheckOut         time.Time `json:"checkOut"`
	Adults           int32     `json:"adults"`
	Children         int32     `json:"children"`
	Infants          int32     `json:"infants"`
	Pets             int32     `json:"pets"`
	TotalPriceCents  int64     `json:"totalPriceCents"`
	Status           string    `json:"status"`
	PaymentSessionID *string   `json:"paymentSessionId,omitempty"`
	PaymentLink      *string   `json:"paymentLink,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	ID              uuid.UUID `json:"id"`
	PlaceID         uuid.UUID `json:"placeId"`
	PlaceTitle      string    `json:"placeTitle"`
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AvailabilityResponse struct {
	IsAvailable bool `json:"isAvailable"`
}

func FromBookingView(view *queries.BookingView) (*BookingResponse, error) {
	resp := &BookingResponse{}
	if err := copier.Copy(resp, view); err != nil {
		return nil, err
	}
	return resp, nil
}

func FromBookingListItems(items []*queries.BookingListItem) ([]*BookingListResponse, error) {
	result := make([]*BookingListResponse, 0, len(items))
	if err := copier.Copy(&result, items); err != nil {
		return nil, err
	}
	return result, nil
}
