package auth

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/config"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
)

// KeySpec is the secret and lifetime of one token kind.
type KeySpec struct {
	Secret []byte
	TTL    time.Duration
}

// Codec mints and parses the four token kinds, each with its own key.
type Codec struct {
	keys map[TokenKind]KeySpec
}

var allKinds = []TokenKind{AccessToken, RefreshToken, ForgotPasswordToken, EmailVerifyToken}

// NewCodec requires a non-empty secret and a positive TTL for every kind,
// and refuses to share a secret between kinds.
func NewCodec(keys map[TokenKind]KeySpec) (*Codec, error) {
	c := &Codec{keys: make(map[TokenKind]KeySpec, len(allKinds))}
	for _, kind := range allKinds {
		spec, ok := keys[kind]
		if !ok || len(spec.Secret) == 0 {
			return nil, fmt.Errorf("%s: %w", kind, common.ErrMissingSigningKey)
		}
		if spec.TTL <= 0 {
			return nil, fmt.Errorf("%s: ttl must be positive", kind)
		}
		for other, otherSpec := range c.keys {
			if bytes.Equal(spec.Secret, otherSpec.Secret) {
				return nil, fmt.Errorf("%s and %s share a signing secret", kind, other)
			}
		}
		c.keys[kind] = KeySpec{Secret: bytes.Clone(spec.Secret), TTL: spec.TTL}
	}
	return c, nil
}

func NewCodecFromConfig(cfg *config.Config) (*Codec, error) {
	return NewCodec(map[TokenKind]KeySpec{
		AccessToken:         {Secret: []byte(cfg.AccessTokenSecret), TTL: cfg.AccessTokenValidityDuration},
		RefreshToken:        {Secret: []byte(cfg.RefreshTokenSecret), TTL: cfg.RefreshTokenValidityDuration},
		EmailVerifyToken:    {Secret: []byte(cfg.EmailVerifyTokenSecret), TTL: cfg.EmailVerifyTokenValidityDuration},
		ForgotPasswordToken: {Secret: []byte(cfg.ForgotPasswordTokenSecret), TTL: cfg.ForgotPasswordTokenValidityDuration},
	})
}

// TTL returns the configured lifetime of kind.
func (c *Codec) TTL(kind TokenKind) time.Duration {
	return c.keys[kind].TTL
}

// Issue signs a token of the given kind for userID.
func (c *Codec) Issue(kind TokenKind, userID string, verify models.VerifyStatus) (string, error) {
	spec, ok := c.keys[kind]
	if !ok {
		return "", fmt.Errorf("%s: %w", kind, common.ErrMissingSigningKey)
	}
	return Sign(&Claims{UserID: userID, TokenType: kind, Verify: verify}, spec.Secret, spec.TTL)
}

// Parse verifies token with the key of kind and then checks the kind claim.
func (c *Codec) Parse(kind TokenKind, token string) (*Claims, error) {
	spec, ok := c.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, common.ErrMissingSigningKey)
	}
	claims, err := Verify(token, spec.Secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != kind {
		return nil, common.ErrTokenKindMismatch
	}
	return claims, nil
}
