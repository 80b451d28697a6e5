package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var columns = []string{"id", "email", "password_hash", "verify", "email_verify_token", "forgot_password_token",
	"username", "name", "bio", "location", "website", "avatar", "date_of_birth", "created_at", "updated_at"}

var dob = time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRow(id, email, username string, verify models.VerifyStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(columns).
		AddRow(id, email, "hash", int64(verify), "evt", "", username, "Alice", "", "", "", "", dob, now, now)
}

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash,\s*verify,\s*email_verify_token,\s*username,\s*name,\s*date_of_birth\)\s*VALUES\s*\(\$1,.*\$8\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

func newUser() *models.User {
	return &models.User{
		ID: "u-1", Email: "alice@example.com", PasswordHash: "hash", Verify: models.Unverified,
		EmailVerifyToken: "evt", Username: "user_u1", Name: "Alice", DateOfBirth: dob,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("u-1", "alice@example.com", "hash", 0, "evt", "user_u1", "Alice", dob).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), newUser())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraint: "users_email_key", want: common.ErrDuplicateEmail},
		{constraint: "users_username_key", want: common.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertQuery).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), newUser())
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), newUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetters_Found(t *testing.T) {
	tests := []struct {
		column string
		value  string
		call   func(*PostgresRepository, string) (*models.User, error)
	}{
		{column: "id", value: "u-1", call: func(r *PostgresRepository, v string) (*models.User, error) {
			return r.GetByID(context.Background(), v)
		}},
		{column: "email", value: "alice@example.com", call: func(r *PostgresRepository, v string) (*models.User, error) {
			return r.GetByEmail(context.Background(), v)
		}},
		{column: "username", value: "alice", call: func(r *PostgresRepository, v string) (*models.User, error) {
			return r.GetByUsername(context.Background(), v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			q := `(?s)^SELECT\s+id,\s*email,.*updated_at\s+FROM\s+users\s+WHERE\s+` + tt.column + `\s*=\s*\$1\s*$`
			mock.ExpectQuery(q).
				WithArgs(tt.value).
				WillReturnRows(userRow("u-1", "alice@example.com", "alice", models.Verified))

			got, err := tt.call(repo, tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "u-1" || got.Username != "alice" || got.Verify != models.Verified || !got.DateOfBirth.Equal(dob) {
				t.Fatalf("unexpected user: %+v", got)
			}
		})
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_BuildsSetListAndGuard(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	verified := models.Verified
	empty := ""
	presented := "evt"

	q := `(?s)^UPDATE\s+users\s+SET\s+verify\s*=\s*\$1,\s*email_verify_token\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+` +
		`WHERE\s+id\s*=\s*\$3\s+AND\s+email_verify_token\s*=\s*\$4\s+RETURNING\s+id,.*updated_at$`
	mock.ExpectQuery(q).
		WithArgs(1, "", "u-1", "evt").
		WillReturnRows(userRow("u-1", "alice@example.com", "alice", models.Verified))

	got, err := repo.Update(context.Background(), "u-1", &models.UserPatch{
		Verify:             &verified,
		EmailVerifyToken:   &empty,
		IfEmailVerifyToken: &presented,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Verify != models.Verified {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_GuardMismatchIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	hash := "new-hash"
	empty := ""
	presented := "stale"

	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$1,\s*forgot_password_token\s*=\s*\$2.*AND\s+forgot_password_token\s*=\s*\$4`).
		WithArgs("new-hash", "", "u-1", "stale").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u-1", &models.UserPatch{
		PasswordHash:          &hash,
		ForgotPasswordToken:   &empty,
		IfForgotPasswordToken: &presented,
	})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate_StatusGuard(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	verified := models.Verified
	unverified := models.Unverified
	empty := ""
	presented := "evt"

	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+verify\s*=\s*\$1,\s*email_verify_token\s*=\s*\$2.*` +
		`WHERE\s+id\s*=\s*\$3\s+AND\s+email_verify_token\s*=\s*\$4\s+AND\s+verify\s*=\s*\$5\s+RETURNING`).
		WithArgs(1, "", "u-1", "evt", 0).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "u-1", &models.UserPatch{
		Verify:             &verified,
		EmailVerifyToken:   &empty,
		IfEmailVerifyToken: &presented,
		IfVerify:           &unverified,
	})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_UsernameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	username := "bob"
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*\$1`).
		WithArgs("bob", "u-1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Update(context.Background(), "u-1", &models.UserPatch{Username: &username})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want common.ErrConflict, got %v", err)
	}
}

func TestUpdate_EmptyPatchReadsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-1").
		WillReturnRows(userRow("u-1", "alice@example.com", "alice", models.Unverified))

	got, err := repo.Update(context.Background(), "u-1", &models.UserPatch{})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}
