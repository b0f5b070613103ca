// Package checkins persists encrypted daily check-ins in the local store.
package checkins

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the check-in storage contract.
type Repository interface {
	Insert(ctx context.Context, c *models.CheckIn) error
	GetAll(ctx context.Context) ([]models.CheckIn, error)
	GetByDate(ctx context.Context, date string) (*models.CheckIn, error)
	DeleteByID(ctx context.Context, id string) error
}
