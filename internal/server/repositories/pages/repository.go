// Package pages stores page metadata. A page has no owner column;
// who may see it is decided by the access repository.
package pages

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, page *models.Page) (*models.Page, error)
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	// LockByID takes a row lock on the page for the rest of the transaction.
	LockByID(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
