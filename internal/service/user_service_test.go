package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-service/internal/core/cache"
	"auth-service/internal/core/password"
	"auth-service/internal/domain"
	"auth-service/internal/repo"
	"auth-service/internal/testkit"
)

type countingUserRepo struct {
	domain.UserRepository
	byID int
}

func (r *countingUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	r.byID++
	return r.UserRepository.FindByID(ctx, id)
}

func TestUserService_CreateHashesAndDefaultsRole(t *testing.T) {
	db := testkit.OpenDB(t)
	hasher := &password.Hasher{Cost: 4}
	s := NewUserService(repo.NewUserRepo(db), hasher, nil)

	u, err := s.Create(context.Background(), john("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, hasher.Verify("secret123", u.PasswordHash))

	found, err := s.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	byID, err := s.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, byID.PasswordHash)
}

func TestUserService_CreateConflict(t *testing.T) {
	s := NewUserService(repo.NewUserRepo(testkit.OpenDB(t)), &password.Hasher{Cost: 4}, nil)
	_, err := s.Create(context.Background(), john("a@x.com"))
	require.NoError(t, err)

	_, err = s.Create(context.Background(), john("a@x.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserService_ProfileCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0, "auth:")
	t.Cleanup(func() { _ = c.Close() })

	r := &countingUserRepo{UserRepository: repo.NewUserRepo(testkit.OpenDB(t))}
	s := NewUserService(r, &password.Hasher{Cost: 4}, nil, WithProfileCache(c, time.Minute))
	u, err := s.Create(context.Background(), john("c@x.com"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p, err := s.Profile(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "c@x.com", p.Email)
		assert.Empty(t, p.PasswordHash)
	}
	assert.Equal(t, 1, r.byID)
	assert.True(t, mr.Exists("auth:user:1"))
}
