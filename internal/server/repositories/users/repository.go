// Package users declares the account repository contract and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

// Repository stores accounts. Lookups return common.ErrorNotFound when no
// row matches.
type Repository interface {
	// Create inserts user. A taken email yields common.ErrDuplicateEmail and
	// a taken username common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update applies patch to the row with the given id and returns the
	// stored result. When a slot guard in patch does not match, no row is
	// changed and common.ErrorNotFound is returned.
	Update(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error)
}
