package access

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+user_access\s*\(user_id,\s*page_id,\s*encrypted_key\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at\s*$`

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WithArgs(int64(1), int64(2), "wrapped").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	a := &models.Access{UserID: 1, PageID: 2, EncryptedKey: "wrapped"}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_access_pkey"})
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), &models.Access{UserID: 1, PageID: 2})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	err = repo.Create(context.Background(), &models.Access{UserID: 1, PageID: 2})
	assert.ErrorContains(t, err, "db error: boom")
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+user_id,\s*page_id,\s*encrypted_key,\s*created_at\s+FROM\s+user_access\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+page_id\s*=\s*\$2\s*$`
	mock.ExpectQuery(q).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "page_id", "encrypted_key", "created_at"}).AddRow(int64(1), int64(2), "k", time.Now()))
	mock.ExpectQuery(q).WithArgs(int64(9), int64(2)).WillReturnError(sql.ErrNoRows)

	a, err := repo.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "k", a.EncryptedKey)

	_, err = repo.Get(context.Background(), 9, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListPagesForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+p\.id,.*a\.encrypted_key\s+FROM\s+user_access\s+a\s+JOIN\s+pages\s+p\s+ON\s+p\.id\s*=\s*a\.page_id\s+WHERE\s+a\.user_id\s*=\s*\$1\s+ORDER\s+BY\s+p\.id\s*$`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(1)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "encrypted_title", "encrypted_description", "created_at", "encrypted_key"}).
			AddRow(int64(2), "t2", "d2", now, "k2").
			AddRow(int64(5), "t5", "d5", now, "k5"))

	got, err := repo.ListPagesForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[1].ID)
	assert.Equal(t, "k5", got[1].EncryptedKey)
}

func TestListPagesForUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+user_access`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "encrypted_title", "encrypted_description", "created_at", "encrypted_key"}))
	mock.ExpectQuery(`FROM\s+user_access`).WithArgs(int64(1)).WillReturnError(errors.New("boom"))

	got, err := repo.ListPagesForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = repo.ListPagesForUser(context.Background(), 1)
	assert.ErrorContains(t, err, "db error")
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+user_access\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+page_id\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 1, 2))
	assert.ErrorIs(t, repo.Delete(context.Background(), 1, 2), common.ErrorNotFound)
}

func TestCountForPage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s+COUNT\(\*\)\s+FROM\s+user_access\s+WHERE\s+page_id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(errors.New("boom"))

	n, err := repo.CountForPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = repo.CountForPage(context.Background(), 2)
	assert.ErrorContains(t, err, "db error")
}
