package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/health"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/middleware"
)

// RouterConfig carries the dependencies the HTTP surface needs.
type RouterConfig struct {
	AuthService    AuthService
	Health         *health.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
	TracingEnabled bool
}

// NewRouter assembles the service's HTTP routes and middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing("auth"))
	}
	r.Use(middleware.PrometheusMetrics("auth"))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/oauth-login", authHandler.OAuthLogin)
		r.Post("/refresh", authHandler.Refresh)

		r.With(OptionalSession(cfg.AuthService)).Post("/logout", authHandler.Logout)
		r.With(SessionAuth(cfg.AuthService)).Get("/current-user", authHandler.CurrentUser)
	})

	return r
}
