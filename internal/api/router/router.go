// Package router assembles the HTTP surface: health checks, the WhatsApp
// webhook, Prometheus metrics and the admin API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	httpmiddleware "github.com/wolfman30/clinic-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-assistant/internal/whatsapp"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	Webhook         *whatsapp.WebhookHandler
	Bookings        *bookings.Handler
	Stats           http.Handler
	MetricsHandler  http.Handler
	AdminAuthSecret string
	// AdminOrigins are browser origins allowed to call /admin.
	AdminOrigins []string
	// HealthChecks are probed by /health; any failure reports 503.
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Webhook == nil {
		panic("router: webhook handler cannot be nil")
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	health := healthHandler(cfg.HealthChecks, cfg.Logger)
	r.Get("/", health)
	r.Get("/health", health)

	r.Get("/webhook", cfg.Webhook.HandleVerification)
	r.Post("/webhook", cfg.Webhook.HandleInbound)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminCORS(cfg.AdminOrigins))
		admin.Use(middleware.Compress(5))
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.Bookings != nil {
			admin.Get("/bookings", cfg.Bookings.List)
		}
		if cfg.Stats != nil {
			admin.Method(http.MethodGet, "/stats", cfg.Stats)
		}
	})

	return r
}
