package repomanager

import (
	"context"
	"database/sql"
	"fmt"
)

// MemoryDSN selects the memory store.
const MemoryDSN = "memory"

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open returns the memory manager for MemoryDSN and a PostgreSQL manager for
// anything else. The PostgreSQL pool is pinged before returning.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN {
		return NewMemoryRepositoryManager(), nil
	}

	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepositoryManager(db)
}
