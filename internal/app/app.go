package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/beatx/beatx-server/internal/auth"
	"github.com/beatx/beatx-server/internal/config"
	"github.com/beatx/beatx-server/internal/event"
	handler "github.com/beatx/beatx-server/internal/handler/http"
	"github.com/beatx/beatx-server/internal/provider"
	"github.com/beatx/beatx-server/internal/repository"
	"github.com/beatx/beatx-server/internal/repository/postgres"
	"github.com/beatx/beatx-server/internal/repository/rediscache"
	"github.com/beatx/beatx-server/internal/service"
	"github.com/beatx/beatx-server/internal/storage"
	"github.com/beatx/beatx-server/migrations"
	"github.com/beatx/beatx-server/pkg/database"
	"github.com/beatx/beatx-server/pkg/health"
	pkgkafka "github.com/beatx/beatx-server/pkg/kafka"
	"github.com/beatx/beatx-server/pkg/tracing"
)

// App wires together all dependencies and runs the server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	authService    *service.AuthService
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// The revocation cache is an accelerator, not a dependency. When Redis
	// is unreachable at startup the ledger runs on Postgres alone.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, revocation cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	providerClient := provider.NewHTTPClient(provider.Config{
		BaseURL:    cfg.ProviderBaseURL,
		ServiceKey: cfg.ProviderServiceKey,
		AnonKey:    cfg.ProviderAnonKey,
		Timeout:    cfg.ProviderTimeout,
	}, logger)

	tokens := auth.NewTokenManager(auth.Mode(cfg.TokenMode), cfg.VerificationSecret(), cfg.AccessTokenExpiry)

	var revocations repository.RevocationRepository = postgres.NewRevocationRepository(pool)
	if redisClient != nil {
		revocations = rediscache.NewRevocationCache(revocations, redisClient, logger)
	}

	resendLog := postgres.NewResendLogRepository(pool)
	trackRepo := postgres.NewTrackRepository(pool)
	likeRepo := postgres.NewLikeRepository(pool)
	playlistRepo := postgres.NewPlaylistRepository(pool)

	signer := storage.NewProviderSigner(providerClient, cfg.AudioBucket, cfg.SignedURLExpiry)
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(providerClient, tokens, resendLog, revocations, eventProducer, service.AuthConfig{
		ResendCooldown:   cfg.EmailResendCooldown,
		EmailRedirectURL: cfg.EmailRedirectURL,
	}, logger)
	trackService := service.NewTrackService(trackRepo, likeRepo, signer, eventProducer, logger)
	playlistService := service.NewPlaylistService(playlistRepo, trackRepo, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(authService, trackService, playlistService, healthHandler, handler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		authService:    authService,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the revocation janitor and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("token_mode", a.cfg.TokenMode),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.runRevocationJanitor(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// runRevocationJanitor periodically prunes ledger entries for tokens that
// have expired on their own.
func (a *App) runRevocationJanitor(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.BlacklistPurgeEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			purged, err := a.authService.PurgeExpiredRevocations(purgeCtx)
			cancel()
			if err != nil {
				a.logger.Error("revocation purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				a.logger.Info("purged expired revocations", slog.Int64("count", purged))
			}
		}
	}
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
