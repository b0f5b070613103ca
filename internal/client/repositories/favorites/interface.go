// Package favorites persists encrypted saved-meeting records.
package favorites

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the favorites storage contract.
type Repository interface {
	Insert(ctx context.Context, f *models.Favorite) error
	GetAll(ctx context.Context) ([]models.Favorite, error)
	DeleteByID(ctx context.Context, id string) error
}
