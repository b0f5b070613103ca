// Package users declares the server-side repository contract for user
// accounts.
package users

import (
	"context"

	"github.com/ebergstrom/daybreak/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
