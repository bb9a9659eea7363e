package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Fmukanda/travelapp/internal/config"
	"github.com/Fmukanda/travelapp/internal/event"
	handler "github.com/Fmukanda/travelapp/internal/handler/http"
	"github.com/Fmukanda/travelapp/internal/payment"
	"github.com/Fmukanda/travelapp/internal/payment/chapa"
	paymentmock "github.com/Fmukanda/travelapp/internal/payment/mock"
	"github.com/Fmukanda/travelapp/internal/repository/postgres"
	redisrepo "github.com/Fmukanda/travelapp/internal/repository/redis"
	"github.com/Fmukanda/travelapp/internal/service"
	"github.com/Fmukanda/travelapp/internal/worker"
	"github.com/Fmukanda/travelapp/migrations"
	"github.com/Fmukanda/travelapp/pkg/auth"
	"github.com/Fmukanda/travelapp/pkg/database"
	"github.com/Fmukanda/travelapp/pkg/health"
	pkgkafka "github.com/Fmukanda/travelapp/pkg/kafka"
	"github.com/Fmukanda/travelapp/pkg/middleware"
)

const summaryCacheTTL = 10 * time.Minute

// App wires together all dependencies and runs the booking server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	sweeper    *worker.CompletionSweeper
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// PostgreSQL pool with migrations applied at startup.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, "travelapp")
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)

	// Redis client for the review summary cache.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr()))

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Payment provider.
	var provider payment.Provider
	if cfg.PaymentMock {
		provider = paymentmock.NewProvider()
		logger.Warn("using mock payment provider")
	} else {
		provider = chapa.NewClient(chapa.Config{
			BaseURL:   cfg.ChapaBaseURL,
			SecretKey: cfg.ChapaSecretKey,
		}, logger)
	}

	// Build the dependency graph.
	listingRepo := postgres.NewListingRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	summaryCache := redisrepo.NewSummaryCache(rdb, summaryCacheTTL)

	eventProducer := event.NewProducer(producer, logger)
	listingService := service.NewListingService(listingRepo, logger)
	bookingService := service.NewBookingService(bookingRepo, listingRepo, eventProducer, logger)
	reviewService := service.NewReviewService(reviewRepo, bookingRepo, summaryCache, logger)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, provider, eventProducer, logger)

	sweeper := worker.NewCompletionSweeper(bookingService, cfg.CompletionInterval, logger)

	// Token validation.
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Expiration: cfg.JWTExpiration,
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Listings:      listingService,
		Bookings:      bookingService,
		Reviews:       reviewService,
		Payments:      paymentService,
		Health:        healthHandler,
		TokenCheck:    jwtService.ValidateToken,
		WebhookSecret: cfg.WebhookSecret,
		CORS:          middleware.DefaultCORSConfig(),
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		rdb:        rdb,
		producer:   producer,
		sweeper:    sweeper,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and the completion sweeper, blocking until the
// context is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.sweeper.Run(sweepCtx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
