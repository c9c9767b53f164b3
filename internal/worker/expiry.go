package worker

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/pkg/config"
	"staybook/internal/usecase/commands"
)

// ExpirySweeper periodically fails pending bookings whose checkout
// session was never resolved, releasing their dates for other guests.
// Transitions are compare-and-swap, so a sweep racing a payment
// callback cannot clobber a confirmation.
type ExpirySweeper struct {
	bookings commands.BookingCommands
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpirySweeper(bookings commands.BookingCommands, cfg config.BookingConfig) *ExpirySweeper {
	return &ExpirySweeper{
		bookings: bookings,
		interval: cfg.SweepInterval,
	}
}

func (s *ExpirySweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *ExpirySweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("expiry sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := s.bookings.ExpireStale(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("expiry sweep failed", "error", err.Error())
		return
	}
	if expired > 0 {
		slog.Info("expired stale pending bookings", "count", expired)
	}
}
