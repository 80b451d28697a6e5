package repomanager

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/dbx"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/followers"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/memory"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/users"
)

// MemoryRepositoryManager serves every repository from one memory.Store.
// The DBTX handles it hands out are nil and ignored.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore()}
}

func (m *MemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return m.store.Atomically(ctx, func(ctx context.Context) error {
		return fn(ctx, nil)
	})
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store.Users()
}

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.store.RefreshTokens()
}

func (m *MemoryRepositoryManager) Followers(dbx.DBTX) followers.Repository {
	return m.store.Followers()
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
