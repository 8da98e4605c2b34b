package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/auth"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/config"
	handler "github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/handler/http"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/oauth"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/repository/mongodb"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/service"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/health"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/httpclient"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/tracing"
)

// App wires the service's dependencies and owns their lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	mongoClient    *mongo.Client
	server         *http.Server
	tracerShutdown func(context.Context) error
}

// New builds the application: tracer, Mongo connection, repositories,
// services, and the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "auth",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   1.0,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := mongoClient.Database(cfg.MongoDatabase)
	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)

	// Identity-provider failures must surface immediately, so the outbound
	// client runs without retries; the breaker sheds load when Google is down.
	providerClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{
			Timeout:         10 * time.Second,
			MaxRetries:      0,
			MaxConnsPerHost: 20,
		}),
		httpclient.DefaultCircuitBreakerConfig("google-identity"),
		logger,
	)

	lookupEndpoint := cfg.GoogleLookupEndpoint
	if lookupEndpoint == "" {
		lookupEndpoint = oauth.DefaultLookupEndpoint
	}
	verifier := oauth.NewGoogleVerifier(lookupEndpoint, cfg.FirebaseWebAPIKey, providerClient, logger)

	authService := service.NewAuthService(userRepo, tokenManager, verifier, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("mongodb", func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:    authService,
		Health:         healthHandler,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TracingEnabled: cfg.TracingEnabled,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		mongoClient:    mongoClient,
		server:         server,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	}
}

// Shutdown drains in-flight requests, flushes the tracer, and disconnects
// from Mongo, in that order.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown", slog.String("error", err.Error()))
	}

	if err := a.mongoClient.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
