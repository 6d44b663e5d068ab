package pages

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

func (r *PostgresRepository) Create(ctx context.Context, page *models.Page) (*models.Page, error) {
	query :=
		`INSERT INTO pages (encrypted_title, encrypted_description)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, page.EncryptedTitle, page.EncryptedDescription).
		Scan(&page.ID, &page.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	query :=
		`SELECT id, encrypted_title, encrypted_description, created_at FROM pages
		 WHERE id = $1
		 `

	p := &models.Page{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EncryptedTitle, &p.EncryptedDescription, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) LockByID(ctx context.Context, id int64) error {
	query :=
		`SELECT id FROM pages
		 WHERE id = $1
		 FOR UPDATE
		 `

	var got int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM pages WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
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
