package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"auth-service/internal/core/server"
	"auth-service/internal/transport/http/handler"
	mdw "auth-service/internal/transport/http/middleware"
)

type Limits struct {
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

type Deps struct {
	Auth        *handler.AuthHandler
	CORSOrigins []string
	Limits      Limits
	// Extra modules mounted after the auth routes.
	Modules []APIModule
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	lim := d.Limits
	if lim.MaxConcurrent <= 0 {
		lim.MaxConcurrent = 300
	}
	if lim.MaxBodyBytes <= 0 {
		lim.MaxBodyBytes = 1 << 20
	}
	if lim.RequestTimeout <= 0 {
		lim.RequestTimeout = 10 * time.Second
	}

	r := server.NewRouter(l, d.CORSOrigins)
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/.well-known/jwks.json", d.Auth.JWKS)

	MountAll(&r.RouterGroup, append([]APIModule{d.Auth}, d.Modules...)...)
	return r
}
