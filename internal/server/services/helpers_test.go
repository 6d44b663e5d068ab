package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// env wires every service to one in-memory store. The sqlite handle only
// provides transactions; no tables are touched.
type env struct {
	db      *sql.DB
	rm      *memory.RepositoryManager
	key     []byte
	users   *UserService
	pages   *PageService
	invites *InviteService
	posts   *PostService
}

func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newEnv(t *testing.T) *env {
	t.Helper()
	key, err := cryptox.GenerateKey(256)
	require.NoError(t, err)

	db := newTxDB(t)
	rm := memory.NewRepositoryManager()
	return &env{
		db:      db,
		rm:      rm,
		key:     key,
		users:   NewUserService(db, rm, key),
		pages:   NewPageService(db, rm, key),
		invites: NewInviteService(db, rm),
		posts:   NewPostService(db, rm, key),
	}
}

func registration(name string) Registration {
	return Registration{
		UserName:            name,
		Email:               name + "@example.com",
		Password:            "digest-" + name,
		ConfirmPassword:     "digest-" + name,
		PublicKey:           "-----BEGIN PUBLIC KEY-----" + name,
		EncryptedPrivateKey: "wrapped-private-" + name,
		AESSalt:             "0123456789abcdef",
	}
}

func (e *env) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), registration(name))
	require.NoError(t, err)
	return u
}

// createPage makes a page owned by creator with envelope "k-<creator>".
func (e *env) createPage(t *testing.T, creator *models.User, staged ...models.StagedInvite) *models.Page {
	t.Helper()
	p, err := e.pages.Create(context.Background(), creator.ID, NewPage{
		EncryptedTitle:       "iv:title",
		EncryptedDescription: "iv:desc",
		CreatorKey:           "k-" + creator.UserName,
		Invites:              staged,
	})
	require.NoError(t, err)
	return p
}

// grant gives user an envelope for p outside any transaction.
func (e *env) grant(t *testing.T, user *models.User, p *models.Page, key string) {
	t.Helper()
	require.NoError(t, grant(context.Background(), e.rm, e.db, user.ID, p.ID, key))
}

func stubNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}
