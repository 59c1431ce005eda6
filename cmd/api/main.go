// @title                       Task Manager API
// @version                     1.0
// @description                 Personal task management with JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	_ "github.com/taskhub/taskmanager-api/docs"
	"github.com/taskhub/taskmanager-api/internal/api"
	"github.com/taskhub/taskmanager-api/internal/api/handler"
	"github.com/taskhub/taskmanager-api/internal/core/service"
	"github.com/taskhub/taskmanager-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/taskmanager-api/internal/infrastructure/db/redis"
	"github.com/taskhub/taskmanager-api/internal/infrastructure/security"
	"github.com/taskhub/taskmanager-api/internal/pkg/config"
	"github.com/taskhub/taskmanager-api/pkg/logger"
	"github.com/taskhub/taskmanager-api/pkg/password"
	"github.com/taskhub/taskmanager-api/pkg/telemetry"
	"github.com/taskhub/taskmanager-api/pkg/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: cfg.Telemetry.ServiceName,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		return err
	}
	defer flush(log, "tracing", shutdownTracing)

	// --- MongoDB ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return err
	}
	defer flush(log, "mongo", client.Disconnect)

	users := mongo.NewUserRepository(db)
	tasks := mongo.NewTaskRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, tasks); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	// --- Redis (optional) ---
	var limiter *redisdb.FixedWindowLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter = redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis, auth rate limiting enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, auth rate limiting disabled")
	}

	// --- Services ---
	issuer, err := token.NewIssuer(token.Config{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.JWTExpires,
	})
	if err != nil {
		return err
	}
	tokens := security.NewTokenIssuer(issuer)
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)

	svc := api.Services{
		Auth:   service.NewAuthService(users, hasher, tokens, log),
		Tasks:  service.NewTaskService(tasks, log),
		Tokens: tokens,
		Checks: checks,
	}
	if limiter != nil {
		svc.Limiter = limiter
	}

	e := api.NewRouter(svc, api.Options{
		Prefix:        cfg.APIPrefix,
		CORSOrigins:   cfg.CORS,
		SecureCookies: cfg.Production(),
		Cookie:        handler.CookieOptions{MaxAge: issuer.TTL()},
		ServiceName:   cfg.Telemetry.ServiceName,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// flush runs a shutdown hook with its own deadline and logs failures.
func flush(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("component", name).Msg("shutdown failed")
	}
}
