package repomanager

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/dbx"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/followers"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the connection pool
// (Conn) or the handle passed into a WithTx callback.
type RepositoryManager interface {
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Followers(db dbx.DBTX) followers.Repository

	RunMigrations(ctx context.Context) error
	Close() error
}
