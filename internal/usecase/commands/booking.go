package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/infra"
	"staybook/internal/pkg/clock"
	"staybook/internal/pkg/config"
	"staybook/internal/pkg/errs"
	"staybook/internal/usecase/queries"
	"staybook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPlaceNotFound           = errs.New("place not found")
	ErrInvalidStayRange        = errs.New("invalid stay range")
	ErrMinimumStayNotMet       = errs.New("stay is shorter than the minimum stay")
	ErrCapacityExceeded        = errs.New("party exceeds place capacity")
	ErrOwnPlaceBooking         = errs.New("owners cannot book their own place")
	ErrBookingConflict         = errs.New("booking conflicts with an existing stay")
	ErrBookingNotFound         = errs.New("booking not found")
	ErrBookingNotOwned         = errs.New("booking does not belong to the user")
	ErrBookingFinalized        = errs.New("booking is already finalized")
	ErrPaymentProvider         = errs.New("payment provider request failed")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type CreateBookingRequest struct {
	PlaceID  uuid.UUID
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
	Infants  int
	Pets     int
}

type BookingCommands interface {
	// CreateBooking places a pending hold on the dates and opens a
	// checkout session for it. The hold is taken atomically against
	// concurrent requests for the same place.
	CreateBooking(ctx context.Context, req CreateBookingRequest, userID uuid.UUID) (*queries.BookingView, error)
	// CancelBooking releases the dates. Cancelling an already
	// cancelled booking is a no-op.
	CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) error
	// ExpireStale fails pending bookings whose checkout session was
	// never resolved within the payment timeout, freeing their dates.
	ExpireStale(ctx context.Context) (int, error)
}

const expireBatchSize = 100

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	gateway        PaymentGateway
	bookingQueries queries.BookingQueries
	clock          clock.Clock
	currency       string
	paymentTimeout time.Duration
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	bookingQueries queries.BookingQueries,
	clock clock.Clock,
	paymentCfg config.PaymentConfig,
	bookingCfg config.BookingConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		gateway:        gateway,
		bookingQueries: bookingQueries,
		clock:          clock,
		currency:       paymentCfg.Currency,
		paymentTimeout: bookingCfg.PaymentTimeout,
	}
}

func (uc *bookingUseCaseImpl) CreateBooking(ctx context.Context, req CreateBookingRequest, userID uuid.UUID) (*queries.BookingView, error) {
	stay, err := booking.NewStayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidStayRange)
	}
	party, err := booking.NewParty(req.Adults, req.Children, req.Infants, req.Pets)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var (
		held  *booking.Booking
		place *shared.PlaceSnapshot
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, derr := tx.Reads().PlaceByID(ctx, req.PlaceID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return errs.Mark(derr, ErrPlaceNotFound)
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		place = snap

		p := snap.ToDomain()
		spec := booking.PlaceSpec{
			ID:           p.ID(),
			OwnerID:      p.OwnerID(),
			MaxGuests:    p.MaxGuests(),
			MinimumStay:  p.MinimumStay(),
			NightlyCents: p.NightlyCents(),
		}
		b, derr := booking.NewBooking(spec, userID, stay, party)
		if derr != nil {
			return markDomainError(derr)
		}

		// Windows are owner configuration, not contended state; the
		// aggregate can rule on them before taking the place lock.
		if !p.AcceptsStay(stay.CheckIn(), stay.CheckOut()) {
			return ErrBookingConflict
		}

		// Serialize against concurrent holds on the same place before
		// the availability re-check; the probe result from before the
		// lock is only advisory.
		if derr = tx.Bookings().LockPlace(ctx, tx.DB(), req.PlaceID); derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		available, derr := tx.Reads().StayIsAvailable(ctx, req.PlaceID, stay)
		if derr != nil {
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		if !available {
			return ErrBookingConflict
		}

		if _, derr := tx.Bookings().Create(ctx, tx.DB(), b); derr != nil {
			if infra.IsKind(derr, infra.KindConflict) || infra.IsKind(derr, infra.KindDuplicateKey) {
				return errs.Mark(derr, ErrBookingConflict)
			}
			return errs.Mark(derr, ErrDatabaseOperationFailed)
		}
		held = b

		return uc.enqueueBookingEvent(ctx, tx, "booking.created", b.ID())
	})
	if err != nil {
		return nil, err
	}

	if err := uc.openCheckout(ctx, held, place); err != nil {
		return nil, err
	}

	return uc.bookingQueries.GetByIDSystem(ctx, held.ID())
}

// openCheckout opens the hosted checkout session and attaches it to
// the booking. On provider failure the booking stays pending; the
// expiry sweep reclaims the dates if the guest never retries.
func (uc *bookingUseCaseImpl) openCheckout(ctx context.Context, b *booking.Booking, place *shared.PlaceSnapshot) error {
	item := CheckoutLineItem{
		Name:       place.Title,
		Images:     place.Photos,
		UnitAmount: b.TotalPrice().Cents(),
		Currency:   uc.currency,
		Quantity:   1,
	}
	session, err := uc.gateway.OpenSession(ctx, b.ID(), item)
	if err != nil {
		slog.Warn("checkout session could not be opened",
			"booking_id", b.ID(),
			"error", err.Error())
		return errs.Mark(err, ErrPaymentProvider)
	}

	b.AttachPaymentSession(session.ID, session.URL)

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Bookings().AttachPaymentSession(ctx, tx.DB(), b.ID(), *b.PaymentSessionID(), *b.PaymentLink())
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (uc *bookingUseCaseImpl) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().BookingByID(ctx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrBookingNotFound)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if snap.UserID != actorID {
			return ErrBookingNotOwned
		}

		st := booking.Status(snap.Status)
		if st == booking.StatusCanceled {
			return nil
		}
		if !st.CanTransitionTo(booking.StatusCanceled) {
			return ErrBookingFinalized
		}

		ok, err := tx.Bookings().UpdateStatus(ctx, tx.DB(), bookingID,
			booking.TransitionSources(booking.StatusCanceled),
			booking.StatusCanceled)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !ok {
			// Lost a race since the read above. A concurrent cancel
			// keeps this one a no-op success; an expiry does not.
			cur, rerr := tx.Reads().BookingByID(ctx, bookingID)
			if rerr != nil {
				return errs.Mark(rerr, ErrDatabaseOperationFailed)
			}
			if booking.Status(cur.Status) == booking.StatusCanceled {
				return nil
			}
			return ErrBookingFinalized
		}

		return uc.enqueueBookingEvent(ctx, tx, "booking.canceled", bookingID)
	})
}

func (uc *bookingUseCaseImpl) ExpireStale(ctx context.Context) (int, error) {
	cutoff := uc.clock.Now().Add(-uc.paymentTimeout)

	expired := 0
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ids, err := tx.Bookings().FindStalePending(ctx, tx.DB(), cutoff, expireBatchSize)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		for _, id := range ids {
			ok, err := tx.Bookings().UpdateStatus(ctx, tx.DB(), id,
				booking.TransitionSources(booking.StatusFailed), booking.StatusFailed)
			if err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			if !ok {
				// Lost the race to a payment callback; leave it be.
				continue
			}
			if err := uc.enqueueBookingEvent(ctx, tx, "booking.expired", id); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func (uc *bookingUseCaseImpl) enqueueBookingEvent(ctx context.Context, tx shared.Tx, topic string, bookingID uuid.UUID) error {
	payload, err := json.Marshal(map[string]string{"booking_id": bookingID.String()})
	if err != nil {
		return errs.Wrap(err, "failed to encode booking event payload")
	}
	if err := tx.Outbox().CreateJob(ctx, tx.DB(), "email", topic, payload, uc.clock.Now()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func markDomainError(err error) error {
	switch {
	case errors.Is(err, booking.ErrMinimumStayNotMet):
		return errs.Mark(err, ErrMinimumStayNotMet)
	case errors.Is(err, booking.ErrCapacityExceeded):
		return errs.Mark(err, ErrCapacityExceeded)
	case errors.Is(err, booking.ErrOwnPlace):
		return errs.Mark(err, ErrOwnPlaceBooking)
	default:
		return errs.Mark(err, ErrDomainValidation)
	}
}
