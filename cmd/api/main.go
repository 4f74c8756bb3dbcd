// Package main is the entrypoint for the users API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hpnchanel/usersvc/internal/cache"
	"github.com/hpnchanel/usersvc/internal/config"
	"github.com/hpnchanel/usersvc/internal/events"
	"github.com/hpnchanel/usersvc/internal/handler"
	"github.com/hpnchanel/usersvc/internal/metrics"
	"github.com/hpnchanel/usersvc/internal/middleware"
	"github.com/hpnchanel/usersvc/internal/migrations"
	"github.com/hpnchanel/usersvc/internal/repository"
	"github.com/hpnchanel/usersvc/internal/server"
	"github.com/hpnchanel/usersvc/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	logger.Info("connecting to database",
		slog.String("database_url", repository.RedactURL(cfg.DatabaseURL)),
	)
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", repository.SanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", slog.String("pool", repo.Stats()))

	if err := migrations.Apply(ctx, repo.Pool(), logger); err != nil {
		logger.Error("failed to migrate database",
			slog.String("error", repository.SanitizeError(err, cfg.DatabaseURL)),
		)
		repo.Close()
		os.Exit(1)
	}

	var cacheClient *cache.Cache
	if cfg.RedisRequired() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", repository.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", repository.RedactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	recorder := metrics.NewInMemory()

	var publisher *events.Publisher
	serviceOpts := []service.Option{}
	if cfg.EventsActive() {
		publisher = events.NewPublisher(cacheClient.Client(), logger, recorder)
		serviceOpts = append(serviceOpts, service.WithEvents(publisher))
	}
	userService := service.NewUserService(repo, recorder, logger, serviceOpts...)

	var limiter *cache.Cache
	if cfg.RateLimitActive() {
		limiter = cacheClient
	}

	r := setupRouter(routerDeps{
		root:     handler.New(),
		health:   newHealthHandler(repo, cacheClient),
		users:    handler.NewUserHandler(userService, logger, recorder),
		metrics:  handler.NewMetricsHandler(recorder),
		limiter:  limiter,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(r, server.Options{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	if publisher != nil {
		srv.OnShutdown("events", publisher.Close)
	}

	logger.Info("starting server",
		slog.String("addr", cfg.Addr()),
		slog.String("env", cfg.AppEnv),
		slog.Bool("rate_limit", cfg.RateLimitActive()),
		slog.Bool("events", cfg.EventsActive()),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newHealthHandler avoids handing a typed nil cache to the readiness check.
func newHealthHandler(repo *repository.Repository, cacheClient *cache.Cache) *handler.HealthHandler {
	if cacheClient == nil {
		return handler.NewHealthHandler(repo, nil)
	}
	return handler.NewHealthHandler(repo, cacheClient)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	root     *handler.Handler
	health   *handler.HealthHandler
	users    *handler.UserHandler
	metrics  *handler.MetricsHandler
	limiter  *cache.Cache
	recorder metrics.Recorder
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.SecurityHeaders(d.cfg.IsDevelopment()))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(d.cfg.CORSAllowedOrigins)))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	// Liveness and readiness
	r.Get("/", d.root.Root)
	r.Get("/health", d.health.Health)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.Route("/users", func(r chi.Router) {
		if d.limiter != nil {
			r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
				Logger:  d.logger,
				Limiter: d.limiter,
				Metrics: d.recorder,
				RPS:     d.cfg.RateLimitRPS,
				Burst:   d.cfg.RateLimitBurst,
			}))
		}
		d.users.Routes(r)
	})

	// 404 and 405 handlers
	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}
