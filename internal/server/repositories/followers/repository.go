// Package followers stores directed follow edges between accounts.
package followers

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

type Repository interface {
	// Find returns the edge userID -> followedUserID or common.ErrorNotFound.
	Find(ctx context.Context, userID, followedUserID string) (*models.Follow, error)

	// Create inserts the edge unless it exists and reports whether a row was added.
	Create(ctx context.Context, userID, followedUserID string) (bool, error)

	// Delete removes the edge and reports whether a row was removed.
	Delete(ctx context.Context, userID, followedUserID string) (bool, error)
}
