package access

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Access) error {
	query :=
		`INSERT INTO user_access (user_id, page_id, encrypted_key)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, a.UserID, a.PageID, a.EncryptedKey).Scan(&a.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, pageID int64) (*models.Access, error) {
	query :=
		`SELECT user_id, page_id, encrypted_key, created_at FROM user_access
		 WHERE user_id = $1 AND page_id = $2
		 `

	a := &models.Access{}
	err := r.db.QueryRowContext(ctx, query, userID, pageID).Scan(&a.UserID, &a.PageID, &a.EncryptedKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ListPagesForUser(ctx context.Context, userID int64) ([]*models.PageWithKey, error) {
	query :=
		`SELECT p.id, p.encrypted_title, p.encrypted_description, p.created_at, a.encrypted_key
		 FROM user_access a
		 JOIN pages p ON p.id = a.page_id
		 WHERE a.user_id = $1
		 ORDER BY p.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.PageWithKey, 0)
	for rows.Next() {
		p := &models.PageWithKey{}
		if err := rows.Scan(&p.ID, &p.EncryptedTitle, &p.EncryptedDescription, &p.CreatedAt, &p.EncryptedKey); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, pageID int64) error {
	query := `DELETE FROM user_access WHERE user_id = $1 AND page_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, pageID)
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

func (r *PostgresRepository) CountForPage(ctx context.Context, pageID int64) (int, error) {
	query := `SELECT COUNT(*) FROM user_access WHERE page_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, pageID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
