// Package users is the identity directory: lookups of registered accounts
// by id, username or e-mail hash.
package users

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByEmailHash(ctx context.Context, emailHash string) (*models.User, error)
}
