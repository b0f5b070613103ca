// Package journal persists encrypted journal entries in the local store.
package journal

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the journal-entry storage contract.
type Repository interface {
	Insert(ctx context.Context, e *models.JournalEntry) error
	Update(ctx context.Context, e *models.JournalEntry) error
	GetAll(ctx context.Context) ([]models.JournalEntry, error)
	GetByID(ctx context.Context, id string) (*models.JournalEntry, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteBySharedWith(ctx context.Context, connectionID string) ([]string, error)
}
