// Package memory is an in-process Credential Store. It enforces the same
// uniqueness rules as the PostgreSQL schema and backs the "memory" DSN and
// the service tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/models"
	"github.com/google/uuid"
)

type followKey struct {
	userID         string
	followedUserID string
}

type state struct {
	users     map[string]models.User
	refresh   map[string]models.RefreshToken
	followers map[followKey]models.Follow
}

func (s state) clone() state {
	return state{
		users:     maps.Clone(s.users),
		refresh:   maps.Clone(s.refresh),
		followers: maps.Clone(s.followers),
	}
}

// Store holds all tables behind one mutex.
type Store struct {
	mu  sync.RWMutex
	txM sync.Mutex
	st  state

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		st: state{
			users:     make(map[string]models.User),
			refresh:   make(map[string]models.RefreshToken),
			followers: make(map[followKey]models.Follow),
		},
		now: time.Now,
	}
}

type txKey struct{}

// Atomically runs fn and restores the previous state if fn fails.
// Writes must use the ctx handed to fn; writes made with any other
// context wait until the transaction ends, so a rollback never discards
// them. Nested calls join the outer transaction.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txM.Lock()
	defer s.txM.Unlock()
	ctx = context.WithValue(ctx, txKey{}, s)

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	restore := func() {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
		if err != nil {
			restore()
		}
	}()

	return fn(ctx)
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lockWrite takes the write lock. Outside a transaction it first waits
// for any running transaction to finish.
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txM.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txM.Unlock()
	}
}

func (s *Store) Users() *Users                 { return &Users{s: s} }
func (s *Store) RefreshTokens() *RefreshTokens { return &RefreshTokens{s: s} }
func (s *Store) Followers() *Followers         { return &Followers{s: s} }

// Users implements users.Repository.
type Users struct {
	s *Store
}

func (r *Users) Create(ctx context.Context, user *models.User) (*models.User, error) {
	defer r.s.lockWrite(ctx)()

	for _, u := range r.s.st.users {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return nil, common.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.st.users[user.ID] = *user

	out := *user
	return &out, nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *Users) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.users {
		if match(&u) {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *Users) Update(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error) {
	defer r.s.lockWrite(ctx)()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch == nil || patch.Empty() {
		return &u, nil
	}
	if patch.IfEmailVerifyToken != nil && u.EmailVerifyToken != *patch.IfEmailVerifyToken {
		return nil, common.ErrorNotFound
	}
	if patch.IfForgotPasswordToken != nil && u.ForgotPasswordToken != *patch.IfForgotPasswordToken {
		return nil, common.ErrorNotFound
	}
	if patch.IfVerify != nil && u.Verify != *patch.IfVerify {
		return nil, common.ErrorNotFound
	}
	if patch.Username != nil {
		for otherID, other := range r.s.st.users {
			if otherID != id && other.Username == *patch.Username {
				return nil, common.ErrConflict
			}
		}
	}

	patch.Apply(&u)
	u.UpdatedAt = r.s.now()
	r.s.st.users[id] = u

	out := u
	return &out, nil
}

// RefreshTokens implements refreshtokens.Repository.
type RefreshTokens struct {
	s *Store
}

func (r *RefreshTokens) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.st.users[userID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.s.st.refresh[token]; ok {
		return common.ErrConflict
	}
	now := r.s.now()
	r.s.st.refresh[token] = models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *RefreshTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.st.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *RefreshTokens) Delete(ctx context.Context, token string) error {
	defer r.s.lockWrite(ctx)()

	delete(r.s.st.refresh, token)
	return nil
}

func (r *RefreshTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.s.lockWrite(ctx)()

	var n int64
	for token, rt := range r.s.st.refresh {
		if rt.ExpiresAt.Before(now) {
			delete(r.s.st.refresh, token)
			n++
		}
	}
	return n, nil
}

// Followers implements followers.Repository.
type Followers struct {
	s *Store
}

func (r *Followers) Find(ctx context.Context, userID, followedUserID string) (*models.Follow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.st.followers[followKey{userID, followedUserID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &f, nil
}

func (r *Followers) Create(ctx context.Context, userID, followedUserID string) (bool, error) {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.st.users[userID]; !ok {
		return false, common.ErrorNotFound
	}
	if _, ok := r.s.st.users[followedUserID]; !ok {
		return false, common.ErrorNotFound
	}
	key := followKey{userID, followedUserID}
	if _, ok := r.s.st.followers[key]; ok {
		return false, nil
	}
	r.s.st.followers[key] = models.Follow{
		ID:             uuid.NewString(),
		UserID:         userID,
		FollowedUserID: followedUserID,
		CreatedAt:      r.s.now(),
	}
	return true, nil
}

func (r *Followers) Delete(ctx context.Context, userID, followedUserID string) (bool, error) {
	defer r.s.lockWrite(ctx)()

	key := followKey{userID, followedUserID}
	if _, ok := r.s.st.followers[key]; !ok {
		return false, nil
	}
	delete(r.s.st.followers, key)
	return true, nil
}
