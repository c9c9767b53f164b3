package readstore

import (
	"context"

	"staybook/internal/domain/booking"
	"staybook/internal/infra"
	"staybook/internal/infra/db"
	"staybook/internal/pkg/pgconv"
	"staybook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

const bookingViewSQL = `
SELECT b.id, b.place_id, p.title, b.user_id,
       b.check_in, b.check_out,
       b.adults, b.children, b.infants, b.pets,
       b.total_price_cents, b.status,
       b.payment_session_id, b.payment_link,
       b.created_at, b.updated_at
FROM bookings b
JOIN places p ON p.id = b.place_id`

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, bookingViewSQL+` WHERE b.id = $1`, id)

	view, err := scanBookingView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	return view, nil
}

func (r *BookingReadStore) FindByPaymentSession(ctx context.Context, sessionID string) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, bookingViewSQL+` WHERE b.payment_session_id = $1`, sessionID)

	view, err := scanBookingView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found for payment session", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by payment session", err)
	}

	return view, nil
}

const bookingListSQL = `
SELECT b.id, b.place_id, p.title, b.check_in, b.check_out,
       b.total_price_cents, b.status, b.created_at
FROM bookings b
JOIN places p ON p.id = b.place_id
WHERE b.user_id = $1
ORDER BY b.created_at DESC`

func (r *BookingReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, bookingListSQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings by user", err)
	}
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		item := &queries.BookingListItem{}
		if err := rows.Scan(
			&item.ID, &item.PlaceID, &item.PlaceTitle,
			&item.CheckIn, &item.CheckOut,
			&item.TotalPriceCents, &item.Status, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}

	return result, nil
}

// stayAvailableSQL answers both halves of the availability question:
// the stay must sit inside an owner window (a place with no windows is
// always open) and must not overlap a pending or confirmed booking.
// Ranges are half-open, so back-to-back stays do not collide.
const stayAvailableSQL = `
SELECT
  (NOT EXISTS (SELECT 1 FROM place_windows w WHERE w.place_id = $1)
   OR EXISTS (
     SELECT 1 FROM place_windows w
     WHERE w.place_id = $1 AND w.available_from <= $2 AND $3 <= w.available_to))
  AND NOT EXISTS (
    SELECT 1 FROM bookings b
    WHERE b.place_id = $1
      AND b.status IN ('pending', 'confirmed')
      AND b.check_in < $3 AND $2 < b.check_out)`

func (r *BookingReadStore) StayIsAvailable(ctx context.Context, placeID uuid.UUID, stay booking.StayRange) (bool, error) {
	var available bool
	err := r.db.QueryRow(ctx, stayAvailableSQL, placeID, stay.CheckIn(), stay.CheckOut()).Scan(&available)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check stay availability", err)
	}
	return available, nil
}

type bookingRow interface {
	Scan(dest ...any) error
}

func scanBookingView(row bookingRow) (*queries.BookingView, error) {
	view := &queries.BookingView{}
	err := row.Scan(
		&view.ID, &view.PlaceID, &view.PlaceTitle, &view.UserID,
		&view.CheckIn, &view.CheckOut,
		&view.Adults, &view.Children, &view.Infants, &view.Pets,
		&view.TotalPriceCents, &view.Status,
		&view.PaymentSessionID, &view.PaymentLink,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return view, nil
}
