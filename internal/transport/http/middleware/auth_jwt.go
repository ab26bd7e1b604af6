package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"auth-service/internal/core/auth"
	"auth-service/internal/domain"
	"auth-service/internal/transport/http/ez"
	resp "auth-service/internal/transport/http/response"
)

const AccessTokenCookie = "accessToken"

type AccessVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// AuthJWT accepts the access token as a Bearer header or the accessToken
// cookie, and exposes the subject and role to handlers.
func AuthJWT(v AccessVerifier, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c.GetHeader("Authorization"))
		if tok == "" {
			tok, _ = c.Cookie(AccessTokenCookie)
		}
		if tok == "" {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := v.VerifyAccessToken(tok)
		if err != nil {
			if errors.Is(err, domain.ErrKeyUnavailable) {
				_ = c.Error(err)
				resp.Abort(c, resp.CodeServerError, "internal error")
				return
			}
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(ez.KeyClaims, claims)
		c.Set(ez.KeyUserID, claims.Subject)
		c.Set(ez.KeyRole, claims.Role)
		c.Next()
	}
}

func bearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
