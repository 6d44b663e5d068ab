package memory

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repomanager.RepositoryManager = (*RepositoryManager)(nil)

func TestUsers_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryManager().Users(nil)

	_, err := repo.Create(ctx, &models.User{UserName: "alice", EmailHash: "a"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{UserName: "alice", EmailHash: "b"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
	_, err = repo.Create(ctx, &models.User{UserName: "alicia", EmailHash: "a"})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	u, err := repo.GetByEmailHash(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = repo.GetByUserName(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAccessAndInvites(t *testing.T) {
	ctx := context.Background()
	m := NewRepositoryManager()

	p, err := m.Pages(nil).Create(ctx, &models.Page{EncryptedTitle: "t"})
	require.NoError(t, err)

	require.NoError(t, m.Access(nil).Create(ctx, &models.Access{UserID: 1, PageID: p.ID, EncryptedKey: "k1"}))
	assert.ErrorIs(t, m.Access(nil).Create(ctx, &models.Access{UserID: 1, PageID: p.ID}), common.ErrorAlreadyExists)

	list, err := m.Access(nil).ListPagesForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "k1", list[0].EncryptedKey)

	inv := &models.Invite{UserID: 2, PageID: p.ID, EncryptedKey: "k2"}
	require.NoError(t, m.Invites(nil).Create(ctx, inv))
	assert.ErrorIs(t, m.Invites(nil).Create(ctx, &models.Invite{UserID: 2, PageID: p.ID}), common.ErrorAlreadyExists)

	_, err = m.Invites(nil).DeleteForUser(ctx, inv.ID, 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	got, err := m.Invites(nil).DeleteForUser(ctx, inv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.PageID)

	_, _, invites, _ := m.Store.Counts()
	assert.Equal(t, 0, invites)
}
