package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMinimumStayNotMet = errors.New("stay is shorter than the minimum stay")
	ErrCapacityExceeded  = errors.New("party exceeds the maximum guest count")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrOwnPlace          = errors.New("owners cannot book their own place")
)

// PlaceSpec is the write-side snapshot of the place a booking is made
// against. Keeping it here avoids a domain dependency on the place
// aggregate.
type PlaceSpec struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	MaxGuests    int
	MinimumStay  int
	NightlyCents int64
}

type Booking struct {
	id               uuid.UUID
	placeID          uuid.UUID
	userID           uuid.UUID
	stay             StayRange
	party            Party
	totalPrice       Money
	status           Status
	paymentSessionID *string
	paymentLink      *string
	createdAt        time.Time
	updatedAt        time.Time
}

// NewBooking validates a stay against the place and prices it.
// Validation order is fixed: range first, then capacity, then owner.
func NewBooking(spec PlaceSpec, userID uuid.UUID, stay StayRange, party Party) (*Booking, error) {
	if !stay.MeetsMinimumStay(spec.MinimumStay) {
		return nil, ErrMinimumStayNotMet
	}
	if !party.FitsCapacity(spec.MaxGuests) {
		return nil, ErrCapacityExceeded
	}
	if spec.OwnerID != uuid.Nil && spec.OwnerID == userID {
		return nil, ErrOwnPlace
	}

	nightly, err := NewMoney(spec.NightlyCents)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:         uuid.New(),
		placeID:    spec.ID,
		userID:     userID,
		stay:       stay,
		party:      party,
		totalPrice: nightly.MultiplyNights(stay.Nights()),
		status:     StatusPending,
	}, nil
}

// Confirm moves a pending booking to confirmed after a successful
// payment callback.
func (b *Booking) Confirm() error {
	return b.transitionTo(StatusConfirmed)
}

// Cancel is idempotent: cancelling an already-canceled booking is a
// no-op success.
func (b *Booking) Cancel() error {
	if b.status == StatusCanceled {
		return nil
	}
	return b.transitionTo(StatusCanceled)
}

// Expire fails a pending booking whose payment never arrived, freeing
// its date range.
func (b *Booking) Expire() error {
	return b.transitionTo(StatusFailed)
}

func (b *Booking) transitionTo(to Status) error {
	if !b.status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	b.status = to
	return nil
}

func (b *Booking) AttachPaymentSession(sessionID, paymentLink string) {
	b.paymentSessionID = &sessionID
	b.paymentLink = &paymentLink
}

func (b *Booking) ID() uuid.UUID             { return b.id }
func (b *Booking) PlaceID() uuid.UUID        { return b.placeID }
func (b *Booking) UserID() uuid.UUID         { return b.userID }
func (b *Booking) Stay() StayRange           { return b.stay }
func (b *Booking) Party() Party              { return b.party }
func (b *Booking) TotalPrice() Money         { return b.totalPrice }
func (b *Booking) Status() Status            { return b.status }
func (b *Booking) PaymentSessionID() *string { return b.paymentSessionID }
func (b *Booking) PaymentLink() *string      { return b.paymentLink }
func (b *Booking) CreatedAt() time.Time      { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time      { return b.updatedAt }
