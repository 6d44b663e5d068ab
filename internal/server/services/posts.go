package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
)

const maxMessageLen = 2048

// now is swapped in tests.
var now = time.Now

// PostEntry is a post as shown to one member.
type PostEntry struct {
	ID               int64
	EncryptedMessage string
	UserName         string
	CreatedAt        time.Time
	// Own marks posts written by the viewer; only those can be deleted.
	Own bool
}

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	databaseKey []byte
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, databaseKey []byte) *PostService {
	return &PostService{db: db, repomanager: m, databaseKey: databaseKey}
}

// Add stores a post by userID on pageID. The timestamp is taken here and
// sealed with the database key.
func (s *PostService) Add(ctx context.Context, userID, pageID int64, encryptedMessage string) (*models.Post, error) {
	switch {
	case encryptedMessage == "":
		return nil, common.NewValidationError("Message is required")
	case len(encryptedMessage) > maxMessageLen:
		return nil, common.NewValidationError("Message is too long")
	}

	createdAt, err := cryptox.Seal(now().UTC().Format(time.RFC3339), s.databaseKey)
	if err != nil {
		return nil, fmt.Errorf("error encrypting timestamp: %w", err)
	}

	post := &models.Post{EncryptedMessage: encryptedMessage, UserID: userID, PageID: pageID, EncryptedCreatedAt: createdAt}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := requireAccess(ctx, s.repomanager, tx, userID, pageID); err != nil {
			return err
		}
		return s.repomanager.Posts(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns the page's posts oldest first.
func (s *PostService) List(ctx context.Context, userID, pageID int64) ([]*PostEntry, error) {
	if _, err := requireAccess(ctx, s.repomanager, s.db, userID, pageID); err != nil {
		return nil, err
	}
	views, err := s.repomanager.Posts(s.db).ListForPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return decodePosts(views, userID, s.databaseKey)
}

// Delete removes a post. Only its author may do so, and only while still a
// member of the page; anything else is common.ErrorForbidden.
func (s *PostService) Delete(ctx context.Context, userID, pageID, postID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := requireAccess(ctx, s.repomanager, tx, userID, pageID); err != nil {
			return err
		}
		err := s.repomanager.Posts(tx).DeleteOwned(ctx, postID, pageID, userID)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorForbidden
		}
		return err
	})
}

func decodePosts(views []*models.PostView, viewerID int64, databaseKey []byte) ([]*PostEntry, error) {
	entries := make([]*PostEntry, 0, len(views))
	for _, v := range views {
		ts, err := cryptox.Open(v.EncryptedCreatedAt, databaseKey)
		if err != nil {
			return nil, fmt.Errorf("error decrypting timestamp of post %d: %w", v.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("error decrypting timestamp of post %d: %w", v.ID, err)
		}
		entries = append(entries, &PostEntry{
			ID:               v.ID,
			EncryptedMessage: v.EncryptedMessage,
			UserName:         v.UserName,
			CreatedAt:        createdAt,
			Own:              v.UserID == viewerID,
		})
	}
	return entries, nil
}
