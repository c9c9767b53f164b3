package shared

import (
	"context"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/user"
	"staybook/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Users() UserRepository
	Outbox() OutboxRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	PlaceByID(ctx context.Context, id uuid.UUID) (*PlaceSnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	BookingByPaymentSession(ctx context.Context, sessionID string) (*BookingSnapshot, error)
	// StayIsAvailable re-runs the window and overlap checks against the
	// current booking set. Run it through Tx.Reads() after LockPlace to
	// make the answer authoritative.
	StayIsAvailable(ctx context.Context, placeID uuid.UUID, stay booking.StayRange) (bool, error)
}

type BookingRepository interface {
	// LockPlace takes the transaction-scoped lock that serializes
	// check-and-insert per place. Disjoint places never contend.
	LockPlace(ctx context.Context, tx db.DBTX, placeID uuid.UUID) error
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error)
	// UpdateStatus is a compare-and-swap on the status column; it
	// reports false when the booking was not in any of the from states.
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from []booking.Status, to booking.Status) (bool, error)
	AttachPaymentSession(ctx context.Context, tx db.DBTX, id uuid.UUID, sessionID, paymentLink string) error
	FindStalePending(ctx context.Context, tx db.DBTX, createdBefore time.Time, limit int32) ([]uuid.UUID, error)
}

type UserRepository interface {
	Create(ctx context.Context, tx db.DBTX, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
}

type OutboxRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
