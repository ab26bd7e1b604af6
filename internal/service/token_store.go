package service

import (
	"context"
	"time"

	"auth-service/internal/domain"
)

const DefaultRefreshTokenTTL = 365 * 24 * time.Hour

// RefreshTokenStore persists one new record per issued refresh token.
type RefreshTokenStore struct {
	repo domain.RefreshTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewRefreshTokenStore(repo domain.RefreshTokenRepository, ttl time.Duration, now func() time.Time) *RefreshTokenStore {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &RefreshTokenStore{repo: repo, ttl: ttl, now: now}
}

func (s *RefreshTokenStore) Persist(ctx context.Context, u *domain.User) (*domain.RefreshToken, error) {
	t := &domain.RefreshToken{
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *RefreshTokenStore) Find(ctx context.Context, id uint) (*domain.RefreshToken, error) {
	return s.repo.FindByID(ctx, id)
}

// Revoke is idempotent.
func (s *RefreshTokenStore) Revoke(ctx context.Context, id uint) error {
	return s.repo.DeleteByID(ctx, id)
}
