package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadScheme            = errors.New("authorization header must use the Bearer scheme")
)

// Gate authenticates bearer access tokens on protected operations.
type Gate struct {
	codec *Codec
}

func NewGate(codec *Codec) *Gate {
	return &Gate{codec: codec}
}

// Authenticate takes the raw Authorization value ("Bearer <token>").
// Every failure matches common.ErrorUnauthorized.
func (g *Gate) Authenticate(header string) (*Claims, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, errMissingAuthorization)
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, errBadScheme)
	}

	claims, err := g.codec.Parse(AccessToken, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return claims, nil
}

// RequireVerified fails with common.ErrForbidden unless the caller's
// verification status is Verified.
func RequireVerified(claims *Claims) error {
	if claims == nil {
		return common.ErrorUnauthorized
	}
	if claims.Verify != models.Verified {
		return common.ErrForbidden
	}
	return nil
}

type claimsKey struct{}

// WithClaims returns a child context carrying the decoded access claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
