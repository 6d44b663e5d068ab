package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+posts\s*\(encrypted_message,\s*user_id,\s*page_id,\s*encrypted_created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).WithArgs("msg", int64(1), int64(7), "iv:ts").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

	p := &models.Post{EncryptedMessage: "msg", UserID: 1, PageID: 7, EncryptedCreatedAt: "iv:ts"}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(5), p.ID)

	assert.ErrorContains(t, repo.Create(context.Background(), &models.Post{}), "db error: boom")
}

func TestListForPage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+p\.id,.*u\.username\s+FROM\s+posts\s+p\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*p\.user_id\s+WHERE\s+p\.page_id\s*=\s*\$1\s+ORDER\s+BY\s+p\.id\s*$`
	cols := []string{"id", "encrypted_message", "user_id", "page_id", "encrypted_created_at", "username"}
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnRows(sqlmock.NewRows(cols).
		AddRow(int64(1), "m1", int64(1), int64(7), "ts1", "alice").
		AddRow(int64(2), "m2", int64(2), int64(7), "ts2", "bob"))

	got, err := repo.ListForPage(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].UserName)
	assert.Equal(t, "m2", got[1].EncryptedMessage)
}

func TestListForPage_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+posts`).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := repo.ListForPage(context.Background(), 7)
	assert.ErrorContains(t, err, "db error")
}

func TestDeleteOwned(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+page_id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3$`
	mock.ExpectExec(q).WithArgs(int64(5), int64(7), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(5), int64(7), int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteOwned(context.Background(), 5, 7, 1))
	assert.ErrorIs(t, repo.DeleteOwned(context.Background(), 5, 7, 2), common.ErrorNotFound)
}

func TestDeleteByPage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+posts\s+WHERE\s+page_id\s*=\s*\$1$`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.DeleteByPage(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
