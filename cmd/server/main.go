// Package main is the entry point for the EduPath core API server.
//
// The server exposes the quiz attempt engine, the progress tracker and
// recommendation engine, and the payment/commission ledger over HTTP.
// Wiring follows the dependency direction of the architecture: config,
// then infrastructure (PostgreSQL, Redis), then application handlers,
// then the HTTP interface on top.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edupath/edupath-core/config"
	"github.com/edupath/edupath-core/internal/application/command"
	"github.com/edupath/edupath-core/internal/application/query"
	"github.com/edupath/edupath-core/internal/infrastructure/persistence/postgres"
	"github.com/edupath/edupath-core/internal/infrastructure/persistence/redis"
	httpapi "github.com/edupath/edupath-core/internal/interface/http"
	"github.com/edupath/edupath-core/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting EduPath core server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close()
	log.Info("connected to PostgreSQL")

	if cfg.Database.MigrateOnStart {
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migrations applied")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	cache, err := redis.NewCache(redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   3,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolTimeout:  cfg.Redis.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer cache.Close()
	log.Info("connected to Redis", logger.String("addr", cfg.Redis.Host))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(conn)
	courseRepo := postgres.NewCourseRepository(conn)
	quizRepo := postgres.NewQuizRepository(conn)
	attemptRepo := postgres.NewAttemptRepository(conn)
	progressRepo := postgres.NewProgressRepository(conn)
	paymentRepo := postgres.NewPaymentRepository(conn)
	packageRepo := postgres.NewPackageRepository(conn)
	promotionRepo := postgres.NewPromotionRepository(conn)
	assistanceRepo := postgres.NewAssistanceRepository(conn)

	recommendCache := redis.NewRecommendationCache(cache, cfg.Recommendation.CacheTTL)
	queryLimiter := redis.NewQueryLimiter(cache, cfg.Assistance.HourlyQuota, 0)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpapi.Dependencies{
		StartAttempt:         command.NewStartAttemptHandler(userRepo, quizRepo, attemptRepo),
		CompleteAttempt:      command.NewCompleteAttemptHandler(attemptRepo),
		RecordProgress:       command.NewRecordProgressHandler(userRepo, courseRepo, progressRepo),
		DeleteSection:        command.NewDeleteSectionHandler(courseRepo, progressRepo, conn),
		CreatePayment:        command.NewCreatePaymentHandler(userRepo, paymentRepo, packageRepo),
		ApplyPaymentCallback: command.NewApplyPaymentCallbackHandler(paymentRepo, packageRepo, userRepo, promotionRepo, conn, log),
		MarkCommissionsPaid:  command.NewMarkCommissionsPaidHandler(userRepo, promotionRepo),
		RequestAssistance:    command.NewRequestAssistanceHandler(userRepo, assistanceRepo, queryLimiter),
		AnswerAssistance:     command.NewAnswerAssistanceHandler(assistanceRepo),

		RecommendCourses:     query.NewRecommendCoursesHandler(progressRepo, courseRepo, recommendCache, log),
		GetAttemptHistory:    query.NewGetAttemptHistoryHandler(attemptRepo),
		GetAverageScore:      query.NewGetAverageScoreHandler(attemptRepo),
		GetProgressOverview:  query.NewGetProgressOverviewHandler(progressRepo),
		GetCommissionSummary: query.NewGetCommissionSummaryHandler(promotionRepo),
		GetUserPayments:      query.NewGetUserPaymentsHandler(paymentRepo),
		GetRevenue:           query.NewGetRevenueHandler(paymentRepo),
		GetAssistanceHistory: query.NewGetAssistanceHistoryHandler(assistanceRepo, cfg.Assistance.HourlyQuota),

		Logger:        log,
		HealthChecker: conn,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpapi.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		CallbackSecret:     cfg.Payment.CallbackSecret,
	}, deps)

	errCh := server.StartAsync()
	log.Info("HTTP server listening",
		logger.String("addr", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server stopped cleanly")
	return nil
}
