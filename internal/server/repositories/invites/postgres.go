package invites

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

func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invite) error {
	query :=
		`INSERT INTO invites (user_id, page_id, encrypted_key)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, inv.UserID, inv.PageID, inv.EncryptedKey).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.InviteView, error) {
	query :=
		`SELECT i.id, i.user_id, i.page_id, i.encrypted_key, i.created_at,
		        p.encrypted_title, p.encrypted_description
		 FROM invites i
		 JOIN pages p ON p.id = i.page_id
		 WHERE i.user_id = $1
		 ORDER BY i.id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.InviteView, 0)
	for rows.Next() {
		v := &models.InviteView{}
		if err := rows.Scan(&v.ID, &v.UserID, &v.PageID, &v.EncryptedKey, &v.CreatedAt,
			&v.EncryptedTitle, &v.EncryptedDescription); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, pageID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM invites WHERE user_id = $1 AND page_id = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, pageID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return ok, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, id, userID int64) (*models.Invite, error) {
	query :=
		`DELETE FROM invites
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, page_id, encrypted_key, created_at
		 `

	inv := &models.Invite{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&inv.ID, &inv.UserID, &inv.PageID, &inv.EncryptedKey, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return inv, nil
}

func (r *PostgresRepository) DeleteByPage(ctx context.Context, pageID int64) error {
	query := `DELETE FROM invites WHERE page_id = $1`

	if _, err := r.db.ExecContext(ctx, query, pageID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
