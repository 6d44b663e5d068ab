package posts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) error {
	query :=
		`INSERT INTO posts (encrypted_message, user_id, page_id, encrypted_created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, p.EncryptedMessage, p.UserID, p.PageID, p.EncryptedCreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListForPage(ctx context.Context, pageID int64) ([]*models.PostView, error) {
	query :=
		`SELECT p.id, p.encrypted_message, p.user_id, p.page_id, p.encrypted_created_at, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.page_id = $1
		 ORDER BY p.id
		 `

	rows, err := r.db.QueryContext(ctx, query, pageID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.PostView, 0)
	for rows.Next() {
		v := &models.PostView{}
		if err := rows.Scan(&v.ID, &v.EncryptedMessage, &v.UserID, &v.PageID, &v.EncryptedCreatedAt, &v.UserName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteOwned(ctx context.Context, id, pageID, userID int64) error {
	query := `DELETE FROM posts WHERE id = $1 AND page_id = $2 AND user_id = $3`

	res, err := r.db.ExecContext(ctx, query, id, pageID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteByPage(ctx context.Context, pageID int64) error {
	query := `DELETE FROM posts WHERE page_id = $1`

	if _, err := r.db.ExecContext(ctx, query, pageID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
