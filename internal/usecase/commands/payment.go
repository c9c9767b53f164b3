package commands

import (
	"context"
	"log/slog"

	"staybook/internal/domain/booking"
	"staybook/internal/infra"
	"staybook/internal/pkg/clock"
	"staybook/internal/pkg/errs"
	"staybook/internal/usecase/shared"
)

var ErrUnknownOutcome = errs.New("unknown payment outcome")

// PaymentOutcome is the provider's verdict on a checkout session.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeCancel  PaymentOutcome = "cancel"
	OutcomeError   PaymentOutcome = "error"
)

func (o PaymentOutcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeCancel, OutcomeError:
		return true
	}
	return false
}

type PaymentCommands interface {
	// ReconcileOutcome applies a checkout outcome to the booking that
	// opened the session. Deliveries are at-least-once: replays and
	// callbacks for unknown or already finalized sessions are absorbed
	// without error.
	ReconcileOutcome(ctx context.Context, sessionID string, outcome PaymentOutcome) error
}

type paymentUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewPaymentUseCase(uow shared.UnitOfWork, clock clock.Clock) PaymentCommands {
	return &paymentUseCaseImpl{uow: uow, clock: clock}
}

func (uc *paymentUseCaseImpl) ReconcileOutcome(ctx context.Context, sessionID string, outcome PaymentOutcome) error {
	if !outcome.IsValid() {
		return ErrUnknownOutcome
	}
	from, target, topic := outcomeTransition(outcome)

	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().BookingByPaymentSession(ctx, sessionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("payment outcome for unknown session", "session_id", sessionID)
				return nil
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		ok, err := tx.Bookings().UpdateStatus(ctx, tx.DB(), snap.ID, from, target)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !ok {
			if booking.Status(snap.Status) != target {
				slog.Warn("payment outcome ignored for finalized booking",
					"booking_id", snap.ID,
					"status", snap.Status,
					"outcome", string(outcome))
			}
			return nil
		}

		payload := []byte(`{"booking_id":"` + snap.ID.String() + `"}`)
		if err := tx.Outbox().CreateJob(ctx, tx.DB(), "email", topic, payload, uc.clock.Now()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func outcomeTransition(outcome PaymentOutcome) ([]booking.Status, booking.Status, string) {
	switch outcome {
	case OutcomeSuccess:
		return booking.TransitionSources(booking.StatusConfirmed),
			booking.StatusConfirmed, "booking.confirmed"
	case OutcomeCancel:
		// Narrower than the guest-cancel transition on purpose: a
		// cancel redirect can arrive after the session already
		// succeeded, and a stale redirect must not undo a confirmed
		// stay. Guests cancel confirmed bookings through the booking
		// API, not the checkout callback.
		return []booking.Status{booking.StatusPending},
			booking.StatusCanceled, "booking.canceled"
	default:
		return booking.TransitionSources(booking.StatusFailed),
			booking.StatusFailed, "booking.payment_failed"
	}
}
