package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"auth-service/internal/core/auth"
	"auth-service/internal/domain"
)

type TokenSigner interface {
	IssueAccessToken(p auth.Payload) (string, error)
	IssueRefreshToken(p auth.Payload, tokenID string) (string, error)
	VerifyRefreshToken(token string) (*auth.Claims, error)
}

// Session is what register and login hand back to the transport layer.
type Session struct {
	UserID       uint
	AccessToken  string
	RefreshToken string
}

// AuthService runs register and login. Each step runs at most once; a failure
// after the user or token record is written leaves those rows in place.
type AuthService struct {
	users  *UserService
	tokens *RefreshTokenStore
	signer TokenSigner
	hasher PasswordHasher
	log    *zap.Logger
}

func NewAuthService(users *UserService, tokens *RefreshTokenStore, signer TokenSigner, hasher PasswordHasher, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, signer: signer, hasher: hasher, log: log}
}

func (s *AuthService) Register(ctx context.Context, in domain.UserData) (sess *Session, err error) {
	defer func() { observe("register", err) }()

	s.log.Debug("new request to register user",
		zap.String("email", in.Email),
		zap.String("first_name", in.FirstName),
		zap.String("last_name", in.LastName),
		zap.String("password", "*****"),
	)
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Login answers an unknown email and a wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (sess *Session, err error) {
	defer func() { observe("login", err) }()

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	s.log.Info("user logged in", zap.Uint("user_id", u.ID))
	return s.issue(ctx, u)
}

// Self returns the profile for an authenticated subject. A valid token whose
// user no longer exists is treated as an invalid token.
func (s *AuthService) Self(ctx context.Context, subject string) (*domain.User, error) {
	id, err := parseID(subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.users.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}

// Logout revokes the record behind a refresh token. Logging out twice is fine.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { observe("logout", err) }()

	claims, err := s.signer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	id, err := parseID(claims.ID)
	if err != nil {
		return domain.ErrInvalidToken
	}
	rec, err := s.tokens.Find(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if strconv.FormatUint(uint64(rec.UserID), 10) != claims.Subject {
		return domain.ErrInvalidToken
	}
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return err
	}
	s.log.Info("refresh token revoked", zap.Uint("user_id", rec.UserID), zap.Uint("token_id", id))
	return nil
}

func (s *AuthService) issue(ctx context.Context, u *domain.User) (*Session, error) {
	rec, err := s.tokens.Persist(ctx, u)
	if err != nil {
		return nil, err
	}
	p := auth.Payload{Subject: strconv.FormatUint(uint64(u.ID), 10), Role: u.Role}
	access, err := s.signer.IssueAccessToken(p)
	if err != nil {
		s.log.Error("issue access token", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	refresh, err := s.signer.IssueRefreshToken(p, strconv.FormatUint(uint64(rec.ID), 10))
	if err != nil {
		s.log.Error("issue refresh token", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return &Session{UserID: u.ID, AccessToken: access, RefreshToken: refresh}, nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		return 0, errors.New("bad id")
	}
	return uint(n), nil
}
