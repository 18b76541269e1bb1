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

	"github.com/joho/godotenv"

	"github.com/autostack/access-service/internal/api"
	"github.com/autostack/access-service/internal/api/handler"
	"github.com/autostack/access-service/internal/core/service"
	"github.com/autostack/access-service/internal/infrastructure/crypto"
	mongodb "github.com/autostack/access-service/internal/infrastructure/db/mongo"
	redisdb "github.com/autostack/access-service/internal/infrastructure/db/redis"
	"github.com/autostack/access-service/internal/infrastructure/queue"
	"github.com/autostack/access-service/internal/pkg/config"
	"github.com/autostack/access-service/pkg/logger"
)

const (
	serviceName     = "access-service"
	shutdownTimeout = 10 * time.Second
)

// @title Access Service API
// @version 1.0
// @description Authentication and role-based access control.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	loadEnvFiles()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnect mongo")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	principals := mongodb.NewPrincipalRepository(store.DB)
	if err := principals.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure principal indexes")
	}

	hasher, err := crypto.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("configure password hasher")
	}
	codec, err := crypto.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("configure token codec")
	}

	// Audit workers outlive the request context so queued events drain on shutdown.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, mongodb.NewAuthEventRepository(store.DB), logger.Component("audit"))
	dispatcher.Start(auditCtx)

	opts := []service.AuthOption{service.WithEventRecorder(dispatcher)}
	if cfg.Auth.LoginMaxAttempts > 0 {
		limiter := redisdb.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)
		opts = append(opts, service.WithLoginLimiter(limiter))
	} else {
		log.Warn().Msg("login limiter disabled")
	}

	authService := service.NewAuthService(principals, hasher, codec, cfg.Auth.TokenTTL, logger.Component("auth"), opts...)

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		Codec:       codec,
		Store:       principals,
		Recorder:    dispatcher,
		Checks: map[string]handler.DependencyCheck{
			"mongo": store.Ping,
			"redis": redisdb.Ping(rdb),
		},
		Log: log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	stopAudit()
	dispatcher.Wait()

	log.Info().Msg("server exited cleanly")
}

func loadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		}
	}
}
