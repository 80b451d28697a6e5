package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/repomanager"
)

// Profile is the owner's view of an account. Credentials and token slots
// are never exposed.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	Website     string    `json:"website"`
	Avatar      string    `json:"avatar"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Verify      string    `json:"verify"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicProfile is what anyone can see by username.
type PublicProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	Website     string    `json:"website"`
	Avatar      string    `json:"avatar"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

func NewProfile(u *models.User) *Profile {
	return &Profile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Name:        u.Name,
		Bio:         u.Bio,
		Location:    u.Location,
		Website:     u.Website,
		Avatar:      u.Avatar,
		DateOfBirth: u.DateOfBirth,
		Verify:      u.Verify.String(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewPublicProfile(u *models.User) *PublicProfile {
	return &PublicProfile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Name:        u.Name,
		Bio:         u.Bio,
		Location:    u.Location,
		Website:     u.Website,
		Avatar:      u.Avatar,
		DateOfBirth: u.DateOfBirth,
	}
}

type ProfileService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProfileService(rm repomanager.RepositoryManager, logger logging.Logger) *ProfileService {
	return &ProfileService{
		repomanager: rm,
		logger:      logger.With("module", "services.profile"),
	}
}

func (s *ProfileService) GetMe(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewProfile(user), nil
}

// UpdateMe applies patch to the caller's own account. Only profile columns
// are taken from patch; credentials and status cannot be changed here.
func (s *ProfileService) UpdateMe(ctx context.Context, userID string, patch *models.UserPatch) (*Profile, error) {
	users := s.repomanager.Users(s.repomanager.Conn())

	p := &models.UserPatch{
		Username:    patch.Username,
		Name:        patch.Name,
		Bio:         patch.Bio,
		Location:    patch.Location,
		Website:     patch.Website,
		Avatar:      patch.Avatar,
		DateOfBirth: patch.DateOfBirth,
	}

	if p.Username != nil {
		other, err := users.GetByUsername(ctx, *p.Username)
		switch {
		case err == nil && other.ID != userID:
			return nil, common.ErrConflict
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("lookup username: %w", err)
		}
	}

	if p.Empty() {
		return s.GetMe(ctx, userID)
	}

	user, err := users.Update(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return NewProfile(user), nil
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*PublicProfile, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return NewPublicProfile(user), nil
}

// Follow adds the edge userID -> targetID. alreadyFollowing is true when
// the edge existed before the call.
func (s *ProfileService) Follow(ctx context.Context, userID, targetID string) (alreadyFollowing bool, err error) {
	if userID == targetID {
		return false, fmt.Errorf("%w: cannot follow yourself", common.ErrInvalidOperation)
	}

	conn := s.repomanager.Conn()
	if _, err := s.repomanager.Users(conn).GetByID(ctx, targetID); err != nil {
		return false, err
	}

	created, err := s.repomanager.Followers(conn).Create(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	if created {
		s.logger.Info(ctx, "follow added", "user_id", userID, "followed_user_id", targetID)
	}
	return !created, nil
}

// Unfollow removes the edge userID -> targetID. alreadyUnfollowed is true
// when there was nothing to remove.
func (s *ProfileService) Unfollow(ctx context.Context, userID, targetID string) (alreadyUnfollowed bool, err error) {
	if userID == targetID {
		return false, fmt.Errorf("%w: cannot unfollow yourself", common.ErrInvalidOperation)
	}

	deleted, err := s.repomanager.Followers(s.repomanager.Conn()).Delete(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	return !deleted, nil
}
