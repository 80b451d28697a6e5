package followers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/dbx"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, userID, followedUserID string) (*models.Follow, error) {
	query := `
		SELECT id, user_id, followed_user_id, created_at
		FROM followers
		WHERE user_id = $1 AND followed_user_id = $2
	`
	f := &models.Follow{}
	err := r.db.QueryRowContext(ctx, query, userID, followedUserID).Scan(&f.ID, &f.UserID, &f.FollowedUserID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// Create relies on the (user_id, followed_user_id) unique constraint so two
// concurrent follows insert one row.
func (r *PostgresRepository) Create(ctx context.Context, userID, followedUserID string) (bool, error) {
	query := `
		INSERT INTO followers (user_id, followed_user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, followed_user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, userID, followedUserID)
	if err != nil {
		if dbx.ForeignKeyViolation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, followedUserID string) (bool, error) {
	query := `
		DELETE FROM followers
		WHERE user_id = $1 AND followed_user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, followedUserID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
