// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
// A user may hold any number of rows, one per session.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its token string and returns its row.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes exactly the row holding token. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes rows that expired before now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
