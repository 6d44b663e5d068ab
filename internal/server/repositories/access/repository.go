// Package access is the envelope ledger. A row (user, page) holds the page
// key wrapped for that user and is the only proof of membership.
package access

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists if the user already
	// holds an envelope for the page.
	Create(ctx context.Context, a *models.Access) error
	Get(ctx context.Context, userID, pageID int64) (*models.Access, error)
	// ListPagesForUser returns the user's pages, each with only the user's
	// own envelope, oldest first.
	ListPagesForUser(ctx context.Context, userID int64) ([]*models.PageWithKey, error)
	Delete(ctx context.Context, userID, pageID int64) error
	CountForPage(ctx context.Context, pageID int64) (int, error)
}
