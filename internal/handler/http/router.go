package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prasetia/inventaris/pkg/health"
	"github.com/prasetia/inventaris/pkg/middleware"

	"github.com/prasetia/inventaris/internal/auth"
	"github.com/prasetia/inventaris/internal/domain"
	"github.com/prasetia/inventaris/internal/service"
)

// RouterConfig carries the services and settings the router wires together.
type RouterConfig struct {
	Auth         *service.AuthService
	Verification *service.VerificationService
	Resets       *service.PasswordResetService
	Products     *service.ProductService
	Stock        *service.StockService
	Opnames      *service.OpnameService
	Reports      *service.ReportService
	QRLogs       *service.QRLogService

	JWTManager    *auth.JWTManager
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig

	// Per-IP rate limit applied to the public auth surface.
	AuthRateRPS   int
	AuthRateBurst int
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("inventaris"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("inventaris"))

	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(cfg.Auth, cfg.Resets, cfg.Logger)
	verificationHandler := NewVerificationHandler(cfg.Verification, cfg.Logger)

	// Public auth surface, per-IP rate limited.
	r.Group(func(r chi.Router) {
		if cfg.AuthRateRPS > 0 {
			r.Use(middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst, cfg.Logger))
		}

		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		// The verify link opens from an email client; it carries its own
		// signature instead of a bearer token.
		r.Get("/api/v1/email/verify/{id}/{hash}", verificationHandler.Verify)
		r.With(ContentTypeJSON).Post("/api/v1/email/resend", verificationHandler.Resend)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.JWTManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	stockHandler := NewStockHandler(cfg.Stock, cfg.Logger)
	opnameHandler := NewOpnameHandler(cfg.Opnames, cfg.Logger)
	reportHandler := NewReportHandler(cfg.Reports, cfg.Logger)
	qrLogHandler := NewQRLogHandler(cfg.QRLogs, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/options", productHandler.Options)
			r.Post("/scan", productHandler.Scan)
			r.Get("/{id}", productHandler.Get)
			r.Get("/{id}/stock-card", stockHandler.Card)
			r.Get("/{id}/stock-summary", stockHandler.Summary)
			r.Get("/{id}/qr-logs", qrLogHandler.ListByProduct)

			// Catalog writes are admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/stock-transactions", func(r chi.Router) {
			r.Get("/", stockHandler.List)
			r.Get("/summary", stockHandler.SummaryAll)
			r.Post("/", stockHandler.Record)
			r.Get("/{id}", stockHandler.Get)
		})

		r.Route("/qr-logs", func(r chi.Router) {
			r.Get("/", qrLogHandler.List)
			r.Get("/stats", qrLogHandler.Stats)
			r.Get("/{id}", qrLogHandler.Get)
		})

		r.Route("/stock-opnames", func(r chi.Router) {
			r.Get("/", opnameHandler.List)
			r.Get("/summary", opnameHandler.Summary)
			r.Post("/", opnameHandler.Record)
			r.Get("/{id}", opnameHandler.Get)

			// Removing count history is admin only.
			r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", opnameHandler.Delete)
		})

		r.Route("/profit-reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Get("/", reportHandler.List)
			r.Get("/summary", reportHandler.Summary)
			r.Post("/generate", reportHandler.Generate)
			r.Get("/{id}", reportHandler.Get)
			r.Delete("/{id}", reportHandler.Delete)
		})
	})

	return r
}
