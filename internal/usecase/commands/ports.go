package commands

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutLineItem describes the single line a hosted checkout page
// shows for a booking: the place name, up to eight photos, and the
// full stay price as one unit.
type CheckoutLineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Currency   string
	Quantity   int64
}

// CheckoutSession is what the provider hands back: an opaque session
// ID we persist for reconciliation and a URL the guest is sent to.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentGateway opens hosted checkout sessions with the payment
// provider. Implementations must not mutate booking state; the
// session ID is the only link back.
type PaymentGateway interface {
	OpenSession(ctx context.Context, bookingID uuid.UUID, item CheckoutLineItem) (*CheckoutSession, error)
}
