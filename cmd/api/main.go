package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"auth-service/internal/core/auth"
	"auth-service/internal/core/cache"
	"auth-service/internal/core/config"
	"auth-service/internal/core/database"
	"auth-service/internal/core/logger"
	"auth-service/internal/core/password"
	"auth-service/internal/core/server"
	"auth-service/internal/repo"
	"auth-service/internal/service"
	"auth-service/internal/transport/http/handler"
	"auth-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: cfg.App.Env == "development",
		Rotate:      logger.FileRotate(cfg.Log.Rotate),
	})
	defer cleanup()
	defer logger.RedirectStdLog(log)()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// The key file is read on every signing, so a missing key surfaces per
	// request rather than at startup; warn early anyway.
	if _, err := os.Stat(cfg.JWT.PrivateKeyPath); err != nil {
		log.Warn("private key not readable", zap.String("path", cfg.JWT.PrivateKeyPath), zap.Error(err))
	}
	issuer := auth.NewTokenIssuer(auth.FileKey(cfg.JWT.PrivateKeyPath), []byte(cfg.JWT.RefreshSecret))
	issuer.Issuer = cfg.JWT.Issuer
	issuer.AccessTTL = cfg.JWT.AccessTTL()
	issuer.RefreshTTL = cfg.JWT.RefreshTTL()

	hasher := password.NewHasher()
	var userOpts []service.UserOption
	if cfg.Redis.Enabled {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		defer rc.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, profile reads go to the database", zap.Error(err))
		}
		cancel()
		userOpts = append(userOpts, service.WithProfileCache(rc, time.Duration(cfg.Redis.ProfileTTLSec)*time.Second))
	}

	users := service.NewUserService(repo.NewUserRepo(db), hasher, log, userOpts...)
	tokens := service.NewRefreshTokenStore(repo.NewRefreshTokenRepo(db), cfg.JWT.RefreshTTL(), nil)
	authSvc := service.NewAuthService(users, tokens, issuer, hasher, log)

	authHandler := handler.NewAuthHandler(authSvc, issuer, issuer, cfg.JWT.KeyID, handler.CookieOptions{
		Domain:     cfg.Cookie.Domain,
		Secure:     cfg.Cookie.Secure,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	}, log)

	r := router.NewAPIEngine(log, router.Deps{
		Auth:        authHandler,
		CORSOrigins: cfg.CORS.AllowOrigins,
		Limits: router.Limits{
			MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
			RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("auth api start failed", zap.Error(err))
		}
	}()
	log.Info("auth api started", zap.String("addr", addr), zap.String("env", cfg.App.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("auth api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
