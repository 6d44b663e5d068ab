package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
)

const (
	maxTitleLen       = 128
	maxDescriptionLen = 512
)

// NewPage is a page creation request. Every field is ciphertext produced
// by the creator's browser; Invites carry the page key wrapped for each
// staged user.
type NewPage struct {
	EncryptedTitle       string
	EncryptedDescription string
	CreatorKey           string
	Invites              []models.StagedInvite
}

// PageView is a page opened by one member.
type PageView struct {
	Page         *models.Page
	EncryptedKey string
	Posts        []*PostEntry
}

// PageService maintains the access envelope ledger: who holds a wrapped
// key for which page.
type PageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	databaseKey []byte
}

func NewPageService(db *sql.DB, m repomanager.RepositoryManager, databaseKey []byte) *PageService {
	return &PageService{db: db, repomanager: m, databaseKey: databaseKey}
}

// Create stores the page, the creator's envelope and one invite per staged
// user in a single transaction.
func (s *PageService) Create(ctx context.Context, creatorID int64, in NewPage) (*models.Page, error) {
	if err := validatePage(in); err != nil {
		return nil, err
	}

	var page *models.Page
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		page, err = s.repomanager.Pages(tx).Create(ctx, &models.Page{
			EncryptedTitle:       in.EncryptedTitle,
			EncryptedDescription: in.EncryptedDescription,
		})
		if err != nil {
			return err
		}

		if err := grant(ctx, s.repomanager, tx, creatorID, page.ID, in.CreatorKey); err != nil {
			return err
		}

		usersRepo := s.repomanager.Users(tx)
		invitesRepo := s.repomanager.Invites(tx)
		for _, si := range in.Invites {
			invitee, err := usersRepo.GetByUserName(ctx, si.UserName)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("%w: %s", common.ErrUserNotFound, si.UserName)
				}
				return err
			}
			if invitee.ID == creatorID {
				return common.ErrSelfInvite
			}
			err = invitesRepo.Create(ctx, &models.Invite{UserID: invitee.ID, PageID: page.ID, EncryptedKey: si.EncryptedKey})
			if err != nil {
				if errors.Is(err, common.ErrorAlreadyExists) {
					return fmt.Errorf("%w: %s", common.ErrAlreadyInvited, si.UserName)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListForUser returns the caller's pages with the caller's envelopes.
func (s *PageService) ListForUser(ctx context.Context, userID int64) ([]*models.PageWithKey, error) {
	return s.repomanager.Access(s.db).ListPagesForUser(ctx, userID)
}

// Open returns the page, the caller's envelope and the page's posts.
// Without an envelope the caller gets common.ErrorForbidden, whether or not
// the page exists.
func (s *PageService) Open(ctx context.Context, userID, pageID int64) (*PageView, error) {
	envelope, err := requireAccess(ctx, s.repomanager, s.db, userID, pageID)
	if err != nil {
		return nil, err
	}

	page, err := s.repomanager.Pages(s.db).GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorForbidden
		}
		return nil, err
	}

	views, err := s.repomanager.Posts(s.db).ListForPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	posts, err := decodePosts(views, userID, s.databaseKey)
	if err != nil {
		return nil, err
	}

	return &PageView{Page: page, EncryptedKey: envelope.EncryptedKey, Posts: posts}, nil
}

// Leave revokes the caller's envelope. When it was the last one the page,
// its posts and its invites go in the same transaction. The page row is
// locked first so two last members leaving at once cannot both see a
// remaining envelope.
func (s *PageService) Leave(ctx context.Context, userID, pageID int64) (pageDeleted bool, err error) {
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pagesRepo := s.repomanager.Pages(tx)
		accessRepo := s.repomanager.Access(tx)

		if err := pagesRepo.LockByID(ctx, pageID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorForbidden
			}
			return err
		}
		if err := accessRepo.Delete(ctx, userID, pageID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorForbidden
			}
			return err
		}

		remaining, err := accessRepo.CountForPage(ctx, pageID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		if err := s.repomanager.Posts(tx).DeleteByPage(ctx, pageID); err != nil {
			return err
		}
		if err := s.repomanager.Invites(tx).DeleteByPage(ctx, pageID); err != nil {
			return err
		}
		if err := pagesRepo.Delete(ctx, pageID); err != nil {
			return err
		}
		pageDeleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return pageDeleted, nil
}

func validatePage(in NewPage) error {
	switch {
	case in.EncryptedTitle == "":
		return common.NewValidationError("Title is required")
	case len(in.EncryptedTitle) > maxTitleLen:
		return common.NewValidationError("Title is too long")
	case in.EncryptedDescription == "":
		return common.NewValidationError("Description is required")
	case len(in.EncryptedDescription) > maxDescriptionLen:
		return common.NewValidationError("Description is too long")
	case in.CreatorKey == "":
		return common.ErrMissingEnvelope
	}
	seen := make(map[string]bool, len(in.Invites))
	for _, si := range in.Invites {
		if si.EncryptedKey == "" {
			return fmt.Errorf("%w: %s", common.ErrMissingEnvelope, si.UserName)
		}
		if seen[si.UserName] {
			return common.NewValidationError("User %s is listed more than once", si.UserName)
		}
		seen[si.UserName] = true
	}
	return nil
}

// grant gives userID an envelope for pageID. A second grant for the same
// pair fails with common.ErrorAlreadyExists.
func grant(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID, pageID int64, encryptedKey string) error {
	if encryptedKey == "" {
		return common.ErrMissingEnvelope
	}
	return m.Access(db).Create(ctx, &models.Access{UserID: userID, PageID: pageID, EncryptedKey: encryptedKey})
}

// requireAccess returns the caller's envelope or common.ErrorForbidden.
func requireAccess(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, userID, pageID int64) (*models.Access, error) {
	a, err := m.Access(db).Get(ctx, userID, pageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorForbidden
		}
		return nil, err
	}
	return a, nil
}
