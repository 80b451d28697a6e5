package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/dbx"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

// Constraint names from the users migration.
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

const userColumns = `id, email, password_hash, verify, email_verify_token, forgot_password_token,
		 username, name, bio, location, website, avatar, date_of_birth, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, email, password_hash, verify, email_verify_token, username, name, date_of_birth)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, int(user.Verify), user.EmailVerifyToken,
		user.Username, user.Name, user.DateOfBirth).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, translate(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// column is always one of the literals above, never caller input.
func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE ` + column + ` = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error) {
	if patch == nil || patch.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if patch.Verify != nil {
		set("verify", int(*patch.Verify))
	}
	if patch.EmailVerifyToken != nil {
		set("email_verify_token", *patch.EmailVerifyToken)
	}
	if patch.ForgotPasswordToken != nil {
		set("forgot_password_token", *patch.ForgotPasswordToken)
	}
	if patch.Username != nil {
		set("username", *patch.Username)
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Bio != nil {
		set("bio", *patch.Bio)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Website != nil {
		set("website", *patch.Website)
	}
	if patch.Avatar != nil {
		set("avatar", *patch.Avatar)
	}
	if patch.DateOfBirth != nil {
		set("date_of_birth", *patch.DateOfBirth)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if patch.IfEmailVerifyToken != nil {
		args = append(args, *patch.IfEmailVerifyToken)
		where += fmt.Sprintf(" AND email_verify_token = $%d", len(args))
	}
	if patch.IfForgotPasswordToken != nil {
		args = append(args, *patch.IfForgotPasswordToken)
		where += fmt.Sprintf(" AND forgot_password_token = $%d", len(args))
	}
	if patch.IfVerify != nil {
		args = append(args, int(*patch.IfVerify))
		where += fmt.Sprintf(" AND verify = $%d", len(args))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + `
		 WHERE ` + where + `
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, translate(err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var verify int
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &verify, &u.EmailVerifyToken, &u.ForgotPasswordToken,
		&u.Username, &u.Name, &u.Bio, &u.Location, &u.Website, &u.Avatar, &u.DateOfBirth, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Verify = models.VerifyStatus(verify)
	return u, nil
}

// translate maps unique violations on users to domain errors.
func translate(err error) error {
	if name, ok := dbx.UniqueViolation(err); ok {
		switch name {
		case emailConstraint:
			return common.ErrDuplicateEmail
		case usernameConstraint:
			return common.ErrConflict
		}
	}
	return fmt.Errorf("db error: %w", err)
}
