package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/safety-suggestions/internal/api/http"
	"github.com/spec-kit/safety-suggestions/internal/api/http/handlers"
	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/cache"
	"github.com/spec-kit/safety-suggestions/internal/config"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/observability"
	"github.com/spec-kit/safety-suggestions/internal/persistence"
	"github.com/spec-kit/safety-suggestions/internal/repository"
	"github.com/spec-kit/safety-suggestions/internal/service"
	"github.com/spec-kit/safety-suggestions/internal/upload"
	"github.com/spec-kit/safety-suggestions/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	flushSentry, err := observability.InitSentry(cfg.Sentry, cfg.App)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	uploads, err := upload.NewStore(cfg.Upload, logger)
	if err != nil {
		logger.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	var analyticsCache cache.AnalyticsCache = cache.NoopAnalyticsCache{}
	if redis.Client != nil {
		analyticsCache = cache.NewRedisAnalyticsCache(redis.Client, cfg.Analytics.CacheTTL())
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, analyticsCache, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokens, logger)
	suggestionService := service.NewSuggestionService(service.SuggestionDependencies{
		SuggestionRepo: suggestionRepo,
		Files:          uploads,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	commentService := service.NewCommentService(commentRepo, suggestionRepo, dispatcher)
	analyticsService := service.NewAnalyticsService(analyticsRepo, analyticsCache, logger)

	validate := handlers.NewValidator()
	app := httptransport.NewApp(httptransport.AppConfig{
		Name:      cfg.App.Name,
		BodyLimit: uploads.RequestBodyLimit(),
		Middleware: httptransport.MiddlewareConfig{
			Logger:           logger,
			Timeout:          cfg.App.RequestTimeout(),
			Development:      cfg.App.IsDevelopment(),
			CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		},
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
			Auth:           handlers.NewAuthHandler(authService, validate),
			Suggestions:    handlers.NewSuggestionsHandler(suggestionService, uploads, validate),
			Comments:       handlers.NewCommentsHandler(commentService, validate),
			Analytics:      handlers.NewAnalyticsHandler(analyticsService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, logger),
			Uploads:        uploads,
		},
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
