package followers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	findQuery   = `(?s)^SELECT\s+id,\s*user_id,\s*followed_user_id,\s*created_at\s+FROM\s+followers\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+followed_user_id\s*=\s*\$2\s*$`
	insertQuery = `(?s)^INSERT\s+INTO\s+followers\s*\(user_id,\s*followed_user_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(user_id,\s*followed_user_id\)\s*DO\s+NOTHING\s*$`
	deleteQuery = `(?s)^DELETE\s+FROM\s+followers\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+followed_user_id\s*=\s*\$2\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestFind(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	created := time.Now()
	mock.ExpectQuery(findQuery).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "followed_user_id", "created_at"}).AddRow("f-1", "a", "b", created))

	got, err := repo.Find(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "f-1", got.ID)
	assert.Equal(t, "b", got.FollowedUserID)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestFind_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findQuery).WithArgs("a", "b").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "a", "b")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		created bool
	}{
		{name: "new edge", rows: 1, created: true},
		{name: "existing edge", rows: 0, created: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectExec(insertQuery).
				WithArgs("a", "b").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			created, err := repo.Create(context.Background(), "a", "b")
			require.NoError(t, err)
			assert.Equal(t, tt.created, created)
		})
	}
}

func TestCreate_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQuery).
		WithArgs("a", "ghost").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	_, err := repo.Create(context.Background(), "a", "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectExec(insertQuery).
		WithArgs("a", "b").
		WillReturnError(errors.New("db down"))
	_, err = repo.Create(context.Background(), "a", "b")
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQuery).WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 1))
	deleted, err := repo.Delete(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(deleteQuery).WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 0))
	deleted, err = repo.Delete(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.False(t, deleted)

	mock.ExpectExec(deleteQuery).WithArgs("a", "b").WillReturnError(errors.New("db err"))
	_, err = repo.Delete(context.Background(), "a", "b")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
