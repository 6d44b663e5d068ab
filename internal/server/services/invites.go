package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
)

// InviteService runs the invitation ledger. Wrapped keys are stored as
// given; the server cannot and does not check that they decrypt.
type InviteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewInviteService(db *sql.DB, m repomanager.RepositoryManager) *InviteService {
	return &InviteService{db: db, repomanager: m}
}

// Candidate resolves an invitee by username for inviterID.
func (s *InviteService) Candidate(ctx context.Context, inviterID int64, userName string) (*models.User, error) {
	return candidate(ctx, s.repomanager.Users(s.db), inviterID, userName)
}

// CandidateForPage is Candidate plus the page-level checks Invite would
// make, so a client learns early that the invite cannot succeed.
func (s *InviteService) CandidateForPage(ctx context.Context, inviterID, pageID int64, userName string) (*models.User, error) {
	return s.checkInvite(ctx, s.db, inviterID, pageID, userName)
}

// Invite records a pending grant of pageID to userName.
func (s *InviteService) Invite(ctx context.Context, inviterID, pageID int64, userName, encryptedKey string) (*models.Invite, error) {
	if encryptedKey == "" {
		return nil, common.ErrMissingEnvelope
	}

	var inv *models.Invite
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		invitee, err := s.checkInvite(ctx, tx, inviterID, pageID, userName)
		if err != nil {
			return err
		}

		inv = &models.Invite{UserID: invitee.ID, PageID: pageID, EncryptedKey: encryptedKey}
		if err := s.repomanager.Invites(tx).Create(ctx, inv); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrAlreadyInvited
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Accept turns the invite into an envelope holding encryptedKey. The invite
// row is deleted first; a caller that does not get it back (foreign or
// already accepted) receives common.ErrorForbidden.
func (s *InviteService) Accept(ctx context.Context, inviteeID, inviteID int64, encryptedKey string) (pageID int64, err error) {
	if encryptedKey == "" {
		return 0, common.ErrMissingEnvelope
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		inv, err := s.repomanager.Invites(tx).DeleteForUser(ctx, inviteID, inviteeID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorForbidden
			}
			return err
		}

		if err := grant(ctx, s.repomanager, tx, inviteeID, inv.PageID, encryptedKey); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrAlreadyMember
			}
			return err
		}
		pageID = inv.PageID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pageID, nil
}

// Decline drops the invite if it belongs to inviteeID.
func (s *InviteService) Decline(ctx context.Context, inviteeID, inviteID int64) error {
	_, err := s.repomanager.Invites(s.db).DeleteForUser(ctx, inviteID, inviteeID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorForbidden
	}
	return err
}

// ListForUser returns the pending invites addressed to userID.
func (s *InviteService) ListForUser(ctx context.Context, userID int64) ([]*models.InviteView, error) {
	return s.repomanager.Invites(s.db).ListForUser(ctx, userID)
}

func (s *InviteService) checkInvite(ctx context.Context, db dbx.DBTX, inviterID, pageID int64, userName string) (*models.User, error) {
	if _, err := requireAccess(ctx, s.repomanager, db, inviterID, pageID); err != nil {
		return nil, err
	}

	invitee, err := candidate(ctx, s.repomanager.Users(db), inviterID, userName)
	if err != nil {
		return nil, err
	}

	switch _, err := s.repomanager.Access(db).Get(ctx, invitee.ID, pageID); {
	case err == nil:
		return nil, common.ErrAlreadyMember
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	invited, err := s.repomanager.Invites(db).Exists(ctx, invitee.ID, pageID)
	if err != nil {
		return nil, err
	}
	if invited {
		return nil, common.ErrAlreadyInvited
	}
	return invitee, nil
}

type userFinder interface {
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}

func candidate(ctx context.Context, repo userFinder, inviterID int64, userName string) (*models.User, error) {
	if err := validateUserName(userName); err != nil {
		return nil, common.ErrUserNotFound
	}
	u, err := repo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	if u.ID == inviterID {
		return nil, common.ErrSelfInvite
	}
	return u, nil
}
