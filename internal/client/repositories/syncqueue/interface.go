// Package syncqueue is the durable outbox table: one row per outstanding
// local mutation, with superseding semantics on enqueue.
package syncqueue

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the outbox storage contract.
type Repository interface {
	Enqueue(ctx context.Context, table, recordID string, op models.Operation, remoteID *string) error
	All(ctx context.Context) ([]models.SyncQueueEntry, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
	IncrementAttempts(ctx context.Context, id int64) error
}
