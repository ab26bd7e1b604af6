package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/internal/core/auth"
	"auth-service/internal/domain"
	"auth-service/internal/service"
	"auth-service/internal/transport/http/ez"
	mdw "auth-service/internal/transport/http/middleware"
)

const RefreshTokenCookie = "refreshToken"

type Authenticator interface {
	Register(ctx context.Context, in domain.UserData) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Self(ctx context.Context, subject string) (*domain.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

type KeySet interface {
	JWKS(keyID string) (auth.JWKSet, error)
}

type CookieOptions struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	svc     Authenticator
	keys    KeySet
	keyID   string
	cookies CookieOptions
	verify  mdw.AccessVerifier
	log     *zap.Logger
}

func NewAuthHandler(svc Authenticator, verify mdw.AccessVerifier, keys KeySet, keyID string, cookies CookieOptions, l *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, verify: verify, keys: keys, keyID: keyID, cookies: cookies, log: l}
}

type registerIn struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName"  binding:"required,max=64"`
	Email     string `json:"email"     binding:"required,email,max=191"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type idOut struct {
	ID uint `json:"id"`
}

func (h *AuthHandler) Priority() int { return 10 }

// MountAPI registers /auth/register, /auth/login, /auth/self and /auth/logout.
func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/auth")

	ez.RegisterAction(g, h.log, ez.Action[registerIn, idOut]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (idOut, error) {
			sess, err := h.svc.Register(c.Request.Context(), domain.UserData{
				FirstName: strings.TrimSpace(in.FirstName),
				LastName:  strings.TrimSpace(in.LastName),
				Email:     normalizeEmail(in.Email),
				Password:  in.Password,
			})
			if err != nil {
				return idOut{}, err
			}
			h.setSessionCookies(c, sess)
			return idOut{ID: sess.UserID}, nil
		},
	})

	ez.RegisterAction(g, h.log, ez.Action[loginIn, idOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (idOut, error) {
			sess, err := h.svc.Login(c.Request.Context(), normalizeEmail(in.Email), in.Password)
			if err != nil {
				return idOut{}, err
			}
			h.setSessionCookies(c, sess)
			return idOut{ID: sess.UserID}, nil
		},
	})

	authed := g.Group("", mdw.AuthJWT(h.verify, ""))
	ez.RegisterAction(authed, h.log, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/self",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Self(c.Request.Context(), c.GetString(ez.KeyUserID))
		},
	})

	ez.RegisterAction(g, h.log, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			tok, _ := c.Cookie(RefreshTokenCookie)
			if tok == "" {
				return nil, ez.Unauthorized("missing refresh token")
			}
			if err := h.svc.Logout(c.Request.Context(), tok); err != nil {
				return nil, err
			}
			h.clearSessionCookies(c)
			return gin.H{}, nil
		},
	})
}

// JWKS serves the bare key set, not the response envelope, so standard JWT
// verifiers can consume it.
func (h *AuthHandler) JWKS(c *gin.Context) {
	set, err := h.keys.JWKS(h.keyID)
	if err != nil {
		h.log.Error("jwks", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, set)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, s *service.Session) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(mdw.AccessTokenCookie, s.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, s.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(mdw.AccessTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}

// normalizeEmail trims and lower-cases; the directory itself stores emails as given.
func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
