package repository

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/infra"
	"staybook/internal/infra/db"
	"staybook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation    = "23505"
	pgErrCodeExclusionViolation = "23P01"
	pgErrCodeForeignKeyViolated = "23503"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

// LockPlace serializes concurrent reserve attempts per place for the
// rest of the transaction. hashtextextended folds the uuid onto the
// advisory-lock key space.
func (r *BookingRepository) LockPlace(ctx context.Context, tx db.DBTX, placeID uuid.UUID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, placeID)
	if err != nil {
		return infra.WrapRepoErr("failed to acquire place lock", err)
	}
	return nil
}

const createBookingSQL = `
INSERT INTO bookings (
	id, place_id, user_id, check_in, check_out,
	adults, children, infants, pets,
	total_price_cents, status, payment_session_id, payment_link
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, createBookingSQL,
		b.ID(), b.PlaceID(), b.UserID(),
		pgconv.DateToPgtype(b.Stay().CheckIn()), pgconv.DateToPgtype(b.Stay().CheckOut()),
		b.Party().Adults(), b.Party().Children(), b.Party().Infants(), b.Party().Pets(),
		b.TotalPrice().Cents(), b.Status().String(),
		b.PaymentSessionID(), b.PaymentLink(),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrCodeExclusionViolation:
				// The no-overlap constraint is the backstop behind the
				// in-transaction availability re-check.
				return uuid.Nil, infra.WrapRepoErr("booking dates already taken", err, infra.KindConflict)
			case pgErrCodeUniqueViolation:
				return uuid.Nil, infra.WrapRepoErr("duplicate booking", err, infra.KindDuplicateKey)
			case pgErrCodeForeignKeyViolated:
				return uuid.Nil, infra.WrapRepoErr("unknown place or user", err, infra.KindForeignKeyViolated)
			}
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}

	return id, nil
}

const updateBookingStatusSQL = `
UPDATE bookings
SET status = $2, updated_at = now()
WHERE id = $1 AND status = ANY($3)`

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from []booking.Status, to booking.Status) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = s.String()
	}

	tag, err := tx.Exec(ctx, updateBookingStatusSQL, id, to.String(), states)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update booking status", err)
	}

	return tag.RowsAffected() > 0, nil
}

const attachPaymentSessionSQL = `
UPDATE bookings
SET payment_session_id = $2, payment_link = $3, updated_at = now()
WHERE id = $1`

func (r *BookingRepository) AttachPaymentSession(ctx context.Context, tx db.DBTX, id uuid.UUID, sessionID, paymentLink string) error {
	tag, err := tx.Exec(ctx, attachPaymentSessionSQL, id, sessionID, paymentLink)
	if err != nil {
		return infra.WrapRepoErr("failed to attach payment session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

const stalePendingSQL = `
SELECT id FROM bookings
WHERE status = 'pending' AND created_at < $1
ORDER BY created_at
LIMIT $2`

func (r *BookingRepository) FindStalePending(ctx context.Context, tx db.DBTX, createdBefore time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, stalePendingSQL, createdBefore, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find stale pending bookings", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate stale pending bookings", err)
	}

	return ids, nil
}
