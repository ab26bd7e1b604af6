package auth

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth-service/internal/domain"
)

const (
	DefaultIssuer     = "auth-service"
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 365 * 24 * time.Hour
)

// Payload is what callers put into a token. TokenID is only set for refresh tokens.
type Payload struct {
	Subject string
	Role    string
	TokenID string
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs access tokens with RS256 and refresh tokens with HS256.
type TokenIssuer struct {
	Keys          KeySource
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
	Now           func() time.Time
}

func NewTokenIssuer(keys KeySource, refreshSecret []byte) *TokenIssuer {
	return &TokenIssuer{
		Keys:          keys,
		RefreshSecret: refreshSecret,
		Issuer:        DefaultIssuer,
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
		Now:           time.Now,
	}
}

func (t *TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *TokenIssuer) claims(p Payload, ttl time.Duration, jti string) Claims {
	now := t.now()
	return Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    t.Issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// IssueAccessToken reads the private key on every call; a missing or broken key
// fails this request with ErrKeyUnavailable.
func (t *TokenIssuer) IssueAccessToken(p Payload) (string, error) {
	key, err := t.privateKey()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, t.claims(p, t.AccessTTL, ""))
	s, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return s, nil
}

// IssueRefreshToken embeds tokenID (the persisted record id) as jti.
func (t *TokenIssuer) IssueRefreshToken(p Payload, tokenID string) (string, error) {
	if len(t.RefreshSecret) == 0 {
		return "", fmt.Errorf("%w: refresh secret not configured", domain.ErrKeyUnavailable)
	}
	p.TokenID = tokenID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, t.claims(p, t.RefreshTTL, p.TokenID))
	s, err := token.SignedString(t.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return s, nil
}

func (t *TokenIssuer) VerifyAccessToken(tokenStr string) (*Claims, error) {
	key, err := t.privateKey()
	if err != nil {
		return nil, err
	}
	return t.parse(tokenStr, jwt.SigningMethodRS256.Alg(), &key.PublicKey)
}

func (t *TokenIssuer) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	if len(t.RefreshSecret) == 0 {
		return nil, fmt.Errorf("%w: refresh secret not configured", domain.ErrKeyUnavailable)
	}
	c, err := t.parse(tokenStr, jwt.SigningMethodHS256.Alg(), t.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

// parse collapses every jwt failure into ErrInvalidToken.
func (t *TokenIssuer) parse(tokenStr, alg string, key any) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(t.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(t.Leeway),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

func (t *TokenIssuer) privateKey() (*rsa.PrivateKey, error) {
	if t.Keys == nil {
		return nil, fmt.Errorf("%w: no key source", domain.ErrKeyUnavailable)
	}
	pemBytes, err := t.Keys.PrivateKeyPEM()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	return key, nil
}
