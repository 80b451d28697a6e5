// Package auth implements the token codec, password hashing and the access
// control gate shared by the HTTP and gRPC surfaces.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind separates the four token families. Each kind is signed with its
// own secret and carries its kind in the token_type claim.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
	ForgotPasswordToken
	EmailVerifyToken
)

func (k TokenKind) String() string {
	switch k {
	case AccessToken:
		return "access_token"
	case RefreshToken:
		return "refresh_token"
	case ForgotPasswordToken:
		return "forgot_password_token"
	case EmailVerifyToken:
		return "email_verify_token"
	default:
		return fmt.Sprintf("token_kind(%d)", int(k))
	}
}

// Claims is the signed payload. Subject and UserID always hold the same id.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string              `json:"user_id"`
	TokenType TokenKind           `json:"token_type"`
	Verify    models.VerifyStatus `json:"verify"`
}

// Sign signs claims with HS256. IssuedAt, ExpiresAt, Subject and a random
// token id are filled in here.
func Sign(claims *Claims, key []byte, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", common.ErrMissingSigningKey
	}

	now := time.Now()
	claims.Subject = claims.UserID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and decodes the claims. Failures are
// one of common.ErrTokenExpired, common.ErrTokenSignatureInvalid or
// common.ErrTokenMalformed.
func Verify(tokenString string, key []byte) (*Claims, error) {
	if len(key) == 0 {
		return nil, common.ErrMissingSigningKey
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, common.ErrTokenMalformed
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, common.ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrTokenMalformed
	}
}
