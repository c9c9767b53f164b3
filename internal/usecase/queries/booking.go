package queries

import (
	"context"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/infra"
	"staybook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrBookingAccess   = errs.New("booking access denied")
	ErrInvalidProbe    = errs.New("invalid availability probe")
)

type BookingView struct {
	ID               uuid.UUID
	PlaceID          uuid.UUID
	PlaceTitle       string
	UserID           uuid.UUID
	CheckIn          time.Time
	CheckOut         time.Time
	Adults           int32
	Children         int32
	Infants          int32
	Pets             int32
	TotalPriceCents  int64
	Status           string
	PaymentSessionID *string
	PaymentLink      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type BookingListItem struct {
	ID              uuid.UUID
	PlaceID         uuid.UUID
	PlaceTitle      string
	CheckIn         time.Time
	CheckOut        time.Time
	TotalPriceCents int64
	Status          string
	CreatedAt       time.Time
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
	StayIsAvailable(ctx context.Context, placeID uuid.UUID, stay booking.StayRange) (bool, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id, requesterID uuid.UUID) (*BookingView, error)
	// GetByIDSystem skips the requester check for internal read-after-write
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
	// CheckAvailability is the advisory probe: the answer can go stale
	// the moment it is returned, the reserve path re-verifies.
	CheckAvailability(ctx context.Context, placeID uuid.UUID, checkIn, checkOut time.Time) (bool, error)
}

type bookingQueriesImpl struct {
	readStore BookingReadStore
}

func NewBookingQueries(readStore BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{
		readStore: readStore,
	}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id, requesterID uuid.UUID) (*BookingView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if view.UserID != requesterID {
		return nil, ErrBookingAccess
	}

	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error) {
	return q.readStore.FindByUserID(ctx, userID)
}

func (q *bookingQueriesImpl) CheckAvailability(ctx context.Context, placeID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	stay, err := booking.NewStayRange(checkIn, checkOut)
	if err != nil {
		return false, errs.Mark(err, ErrInvalidProbe)
	}

	return q.readStore.StayIsAvailable(ctx, placeID, stay)
}
