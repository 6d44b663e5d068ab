package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

const selectUser = `SELECT id, username, email_hash, encrypted_email, password_hash, public_key,
		        encrypted_private_key, aes_salt, browser_key, created_at
		 FROM users
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user and fills in ID and CreatedAt. A clash on
// username or email_hash is reported as common.ErrUsernameTaken or
// common.ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email_hash, encrypted_email, password_hash, public_key,
		                    encrypted_private_key, aes_salt, browser_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.EmailHash, user.EncryptedEmail, user.PasswordHash, user.PublicKey,
		user.EncryptedPrivateKey, user.AESSalt, user.BrowserKey).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		switch c := dbx.ViolatedConstraint(err); {
		case strings.Contains(c, "username"):
			return nil, common.ErrUsernameTaken
		case strings.Contains(c, "email"):
			return nil, common.ErrEmailTaken
		case c != "":
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE username = $1`, userName)
}

func (r *PostgresRepository) GetByEmailHash(ctx context.Context, emailHash string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE email_hash = $1`, emailHash)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UserName, &u.EmailHash, &u.EncryptedEmail, &u.PasswordHash, &u.PublicKey,
		&u.EncryptedPrivateKey, &u.AESSalt, &u.BrowserKey, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}
