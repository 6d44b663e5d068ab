// Package posts stores page posts. Callers check page access before
// touching it; queries here only scope by page and author.
package posts

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Post) error
	// ListForPage returns posts in creation order with author usernames.
	ListForPage(ctx context.Context, pageID int64) ([]*models.PostView, error)
	// DeleteOwned deletes the post only when it is on pageID and authored by
	// userID; otherwise common.ErrorNotFound.
	DeleteOwned(ctx context.Context, id, pageID, userID int64) error
	DeleteByPage(ctx context.Context, pageID int64) error
}
