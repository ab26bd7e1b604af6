package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"auth-service/internal/core/cache"
	"auth-service/internal/domain"
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

// UserService is the user directory. It owns hashing: callers hand it the
// cleartext password and nothing else ever sees it.
type UserService struct {
	repo       domain.UserRepository
	hasher     PasswordHasher
	cache      *cache.Cache
	profileTTL time.Duration
	log        *zap.Logger
}

type UserOption func(*UserService)

// WithProfileCache serves Profile lookups through c. Users are never updated
// by this service, so entries only expire.
func WithProfileCache(c *cache.Cache, ttl time.Duration) UserOption {
	return func(s *UserService) {
		s.cache = c
		s.profileTTL = ttl
	}
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, log *zap.Logger, opts ...UserOption) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &UserService{repo: repo, hasher: hasher, log: log, profileTTL: 5 * time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create rejects a taken email up front; the unique index catches the
// concurrent case and the repo reports it as the same ErrConflict.
func (s *UserService) Create(ctx context.Context, in domain.UserData) (*domain.User, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         domain.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Uint("user_id", u.ID))
	return u, nil
}

// Profile is FindByID through the cache. The password hash is never cached,
// so the result must not be used for credential checks.
func (s *UserService) Profile(ctx context.Context, id uint) (*domain.User, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, fmt.Sprintf("user:%d", id), s.profileTTL,
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.FindByID(ctx, id)
		})
}
