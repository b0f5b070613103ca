// Package connections persists sponsor pairing rows, including encrypted
// key material for pending and established connections.
package connections

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/client/models"
)

// Repository is the sponsor-connection storage contract.
type Repository interface {
	Insert(ctx context.Context, c *models.SponsorConnection) error
	GetAll(ctx context.Context, userID string) ([]models.SponsorConnection, error)
	GetByID(ctx context.Context, id string) (*models.SponsorConnection, error)
	FindPendingByCode(ctx context.Context, userID, code string) (*models.SponsorConnection, error)
	MarkConnected(ctx context.Context, c *models.SponsorConnection) error
	DeleteByID(ctx context.Context, id string) error
}
