// Package invites is the invitation ledger: pending offers of page access,
// at most one per (invitee, page).
package invites

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists on a second invite for
	// the same user and page.
	Create(ctx context.Context, inv *models.Invite) error
	ListForUser(ctx context.Context, userID int64) ([]*models.InviteView, error)
	Exists(ctx context.Context, userID, pageID int64) (bool, error)
	// DeleteForUser removes the invite only if it belongs to userID and
	// returns the removed row. Concurrent callers race on the delete; only
	// one of them gets the row back.
	DeleteForUser(ctx context.Context, id, userID int64) (*models.Invite, error)
	DeleteByPage(ctx context.Context, pageID int64) error
}
