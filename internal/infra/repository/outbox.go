package repository

import (
	"context"
	"time"

	"staybook/internal/infra"
	"staybook/internal/infra/db"
)

// OutboxRepository enqueues jobs (booking notifications, payment
// follow-ups) in the same transaction as the state change they follow.
type OutboxRepository struct{}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

const createJobSQL = `
INSERT INTO outbox_jobs (kind, topic, payload, run_at)
VALUES ($1, $2, $3, $4)`

func (r *OutboxRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, createJobSQL, kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue outbox job", err)
	}
	return nil
}
