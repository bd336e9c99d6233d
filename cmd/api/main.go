package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/virtualpets/pet-api/internal/api"
	"github.com/virtualpets/pet-api/internal/api/handler"
	"github.com/virtualpets/pet-api/internal/api/middleware"
	"github.com/virtualpets/pet-api/internal/core/ports"
	"github.com/virtualpets/pet-api/internal/core/service"
	"github.com/virtualpets/pet-api/internal/infrastructure/config"
	"github.com/virtualpets/pet-api/internal/infrastructure/db/memory"
	"github.com/virtualpets/pet-api/internal/infrastructure/db/mongo"
	"github.com/virtualpets/pet-api/internal/infrastructure/db/postgres"
	"github.com/virtualpets/pet-api/internal/infrastructure/db/redis"
	"github.com/virtualpets/pet-api/internal/infrastructure/queue"
	"github.com/virtualpets/pet-api/pkg/logger"
)

// @title                       Virtual Pets API
// @version                     1.0
// @description                 Multi-tenant virtual pet service: accounts, JWT auth, pets and their care.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty && !cfg.IsProduction(),
		Service: "pet-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	readiness := map[string]handler.Pinger{"store": store}

	var limiter middleware.Limiter = middleware.NewLocalLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter = redis.NewRateLimiter(rdb, "auth", cfg.RateLimit.PerMinute, time.Minute)
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis rate limiter enabled")
	}

	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret: []byte(cfg.JWT.Secret),
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(store.Users(), tokens, service.NewBcryptHasher(bcrypt.DefaultCost), log)
	if err != nil {
		return err
	}
	if cfg.Admin.Username != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			return err
		}
	}

	// Workers outlive ctx so requests still draining during shutdown complete.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher := queue.NewDispatcher(cfg.PetWorkers, log)
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Pets:      service.NewPetService(store.Pets(), log, service.WithKeyedRunner(dispatcher)),
		Admin:     service.NewAdminService(store.Users(), store.Pets(), log),
		Limiter:   limiter,
		RateRetry: time.Minute,
		Readiness: readiness,
		Log:       log,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown failed")
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (ports.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StorePostgres:
		return postgres.Open(ctx, cfg.Postgres.DSN)
	default:
		return mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	}
}
