package web

import (
	"context"

	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/services"
)

type Users interface {
	Register(ctx context.Context, r services.Registration) (*models.User, error)
	Authenticate(ctx context.Context, emailOrHash, password string) (*models.User, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	DecryptEmail(user *models.User) (string, error)
}

type Pages interface {
	Create(ctx context.Context, creatorID int64, in services.NewPage) (*models.Page, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.PageWithKey, error)
	Open(ctx context.Context, userID, pageID int64) (*services.PageView, error)
	Leave(ctx context.Context, userID, pageID int64) (bool, error)
}

type Invites interface {
	Candidate(ctx context.Context, inviterID int64, userName string) (*models.User, error)
	CandidateForPage(ctx context.Context, inviterID, pageID int64, userName string) (*models.User, error)
	Invite(ctx context.Context, inviterID, pageID int64, userName, encryptedKey string) (*models.Invite, error)
	Accept(ctx context.Context, inviteeID, inviteID int64, encryptedKey string) (int64, error)
	Decline(ctx context.Context, inviteeID, inviteID int64) error
	ListForUser(ctx context.Context, userID int64) ([]*models.InviteView, error)
}

type Posts interface {
	Add(ctx context.Context, userID, pageID int64, encryptedMessage string) (*models.Post, error)
	Delete(ctx context.Context, userID, pageID, postID int64) error
}

// Services bundles what the handlers call into.
type Services struct {
	Users   Users
	Pages   Pages
	Invites Invites
	Posts   Posts
}
