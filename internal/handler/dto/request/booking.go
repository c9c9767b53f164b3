package request

import (
	"time"

	"staybook/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	PlaceID  uuid.UUID `json:"place_id" binding:"required"`
	CheckIn  time.Time `json:"check_in" binding:"required"`
	CheckOut time.Time `json:"check_out" binding:"required"`
	Adults   int       `json:"adults" binding:"required,min=1"`
	Children int       `json:"children" binding:"min=0"`
	Infants  int       `json:"infants" binding:"min=0"`
	Pets     int       `json:"pets" binding:"min=0"`
}

func (r CreateBookingRequest) ToCommand() commands.CreateBookingRequest {
	return commands.CreateBookingRequest{
		PlaceID:  r.PlaceID,
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Adults:   r.Adults,
		Children: r.Children,
		Infants:  r.Infants,
		Pets:     r.Pets,
	}
}

type AvailabilityQuery struct {
	CheckIn  time.Time `form:"check_in" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	CheckOut time.Time `form:"check_out" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}
