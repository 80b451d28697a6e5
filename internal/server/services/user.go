// Package services holds the account use cases: sessions and credentials
// (UserService), profiles and follows (ProfileService) and avatar uploads
// (AvatarService). Transports call into this package and map its errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/dbx"
	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Mailer delivers the account emails. *mailer.Mailer implements it.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      *auth.PasswordHasher
	mailer      Mailer
	logger      logging.Logger
	rotate      bool

	// compared against when the email is unknown so login timing does not
	// reveal which addresses are registered
	dummyHash string
}

// UserServiceOption tweaks a UserService at construction.
type UserServiceOption func(*UserService)

// WithRefreshRotation makes RefreshToken delete the presented row in the
// same transaction that stores the new one.
func WithRefreshRotation(enabled bool) UserServiceOption {
	return func(s *UserService) { s.rotate = enabled }
}

func NewUserService(rm repomanager.RepositoryManager, codec *auth.Codec, hasher *auth.PasswordHasher,
	mailer Mailer, logger logging.Logger, opts ...UserServiceOption) (*UserService, error) {

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	s := &UserService{
		repomanager: rm,
		codec:       codec,
		hasher:      hasher,
		mailer:      mailer,
		logger:      logger.With("module", "services.user"),
		dummyHash:   dummy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// unauthorized wraps a codec failure so callers can match both
// common.ErrorUnauthorized and the token error.
func unauthorized(cause error) error {
	return fmt.Errorf("%w: %w", common.ErrorUnauthorized, cause)
}

// issuePair mints an access/refresh pair and stores the refresh row using db.
func (s *UserService) issuePair(ctx context.Context, db dbx.DBTX, userID string, verify models.VerifyStatus) (*TokenPair, error) {
	access, err := s.codec.Issue(auth.AccessToken, userID, verify)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(auth.RefreshToken, userID, verify)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	repo := s.repomanager.RefreshTokens(db)
	if err := repo.Create(ctx, userID, refresh, s.codec.TTL(auth.RefreshToken)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) Register(ctx context.Context, email, password, name string, dateOfBirth time.Time) (*TokenPair, error) {
	email = normalizeEmail(email)
	conn := s.repomanager.Conn()

	_, err := s.repomanager.Users(conn).GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrDuplicateEmail
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	verifyToken, err := s.codec.Issue(auth.EmailVerifyToken, id, models.Unverified)
	if err != nil {
		return nil, fmt.Errorf("issue email verify token: %w", err)
	}

	user := &models.User{
		ID:               id,
		Email:            email,
		PasswordHash:     hash,
		Verify:           models.Unverified,
		EmailVerifyToken: verifyToken,
		Username:         models.DefaultUsername(id),
		Name:             strings.TrimSpace(name),
		DateOfBirth:      dateOfBirth.UTC(),
	}

	var pair *TokenPair
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		var err error
		pair, err = s.issuePair(ctx, tx, id, models.Unverified)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", id)

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, verifyToken); err != nil {
		s.logger.Error(ctx, "verification mail not sent", "user_id", id, "error", err)
	}

	return pair, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	conn := s.repomanager.Conn()

	user, err := s.repomanager.Users(conn).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, conn, user.ID, user.Verify)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// Logout revokes exactly the presented refresh token. Other sessions of
// the same user stay valid.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.Parse(auth.RefreshToken, refreshToken)
	if err != nil {
		return unauthorized(err)
	}

	if err := s.repomanager.RefreshTokens(s.repomanager.Conn()).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	s.logger.Info(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

var errRefreshRevoked = errors.New("refresh token revoked")

// RefreshToken exchanges a stored refresh token for a new pair. The new
// pair carries the account's current verification status.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Parse(auth.RefreshToken, refreshToken)
	if err != nil {
		return nil, unauthorized(err)
	}

	conn := s.repomanager.Conn()

	row, err := s.repomanager.RefreshTokens(conn).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, unauthorized(errRefreshRevoked)
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if !row.ExpiresAt.After(time.Now()) {
		return nil, unauthorized(common.ErrTokenExpired)
	}
	if row.UserID != claims.UserID {
		return nil, unauthorized(errRefreshRevoked)
	}

	user, err := s.repomanager.Users(conn).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, unauthorized(err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var pair *TokenPair
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if s.rotate {
			if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
				return fmt.Errorf("delete refresh token: %w", err)
			}
		}
		var err error
		pair, err = s.issuePair(ctx, tx, user.ID, user.Verify)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// VerifyEmail consumes the email-verify token, marks the account Verified
// and returns a pair carrying the new status.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := s.codec.Parse(auth.EmailVerifyToken, token)
	if err != nil {
		return nil, unauthorized(err)
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkVerifySlot(user, token); err != nil {
		return nil, err
	}

	empty := ""
	verified := models.Verified
	unverified := models.Unverified
	patch := &models.UserPatch{
		EmailVerifyToken:   &empty,
		Verify:             &verified,
		IfEmailVerifyToken: &token,
		IfVerify:           &unverified,
	}

	var pair *TokenPair
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		if _, err := users.Update(ctx, user.ID, patch); err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			// the row changed since it was read
			current, err := users.GetByID(ctx, user.ID)
			if err != nil {
				return err
			}
			if err := checkVerifySlot(current, token); err != nil {
				return err
			}
			return common.ErrAlreadyVerified
		}
		var err error
		pair, err = s.issuePair(ctx, tx, user.ID, models.Verified)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return pair, nil
}

// checkVerifySlot reports why token can no longer verify user, or nil
// when it is still the stored one.
func checkVerifySlot(user *models.User, token string) error {
	switch {
	case user.Verify == models.Banned:
		return common.ErrForbidden
	case user.Verify == models.Verified || user.EmailVerifyToken == "":
		return common.ErrAlreadyVerified
	case user.EmailVerifyToken != token:
		return unauthorized(errors.New("email verify token superseded"))
	}
	return nil
}

func (s *UserService) ResendEmailVerify(ctx context.Context, userID string) error {
	users := s.repomanager.Users(s.repomanager.Conn())

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	switch user.Verify {
	case models.Verified:
		return common.ErrAlreadyVerified
	case models.Banned:
		return common.ErrForbidden
	}

	token, err := s.codec.Issue(auth.EmailVerifyToken, user.ID, user.Verify)
	if err != nil {
		return fmt.Errorf("issue email verify token: %w", err)
	}
	if _, err := users.Update(ctx, user.ID, &models.UserPatch{EmailVerifyToken: &token}); err != nil {
		return fmt.Errorf("store email verify token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, token); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	users := s.repomanager.Users(s.repomanager.Conn())

	user, err := users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := s.codec.Issue(auth.ForgotPasswordToken, user.ID, user.Verify)
	if err != nil {
		return fmt.Errorf("issue forgot password token: %w", err)
	}
	if _, err := users.Update(ctx, user.ID, &models.UserPatch{ForgotPasswordToken: &token}); err != nil {
		return fmt.Errorf("store forgot password token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

var errResetSlotMismatch = errors.New("forgot password token is not current")

// checkForgotPassword returns the account whose pending reset slot holds token.
func (s *UserService) checkForgotPassword(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.codec.Parse(auth.ForgotPasswordToken, token)
	if err != nil {
		return nil, unauthorized(err)
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.ForgotPasswordToken == "" || user.ForgotPasswordToken != token {
		return nil, unauthorized(errResetSlotMismatch)
	}
	return user, nil
}

// VerifyForgotPassword runs the reset checks without changing anything.
func (s *UserService) VerifyForgotPassword(ctx context.Context, token string) error {
	_, err := s.checkForgotPassword(ctx, token)
	return err
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.checkForgotPassword(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	empty := ""
	patch := &models.UserPatch{
		PasswordHash:          &hash,
		ForgotPasswordToken:   &empty,
		IfForgotPasswordToken: &token,
	}
	if _, err := s.repomanager.Users(s.repomanager.Conn()).Update(ctx, user.ID, patch); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return unauthorized(errResetSlotMismatch)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	users := s.repomanager.Users(s.repomanager.Conn())

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := users.Update(ctx, user.ID, &models.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info(ctx, "password changed", "user_id", user.ID)
	return nil
}

// CleanupExpiredRefreshTokens deletes refresh rows past their expiry.
func (s *UserService) CleanupExpiredRefreshTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return n, nil
}
