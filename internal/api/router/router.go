// Package router assembles the HTTP surface: public probes plus the
// tenant-scoped booking API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/naijabook/platform/internal/http/handlers"
	httpmiddleware "github.com/naijabook/platform/internal/http/middleware"
	"github.com/naijabook/platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	Availability *handlers.AvailabilityHandler
	Bookings     *handlers.BookingHandler
	Analytics    *handlers.AnalyticsHandler

	// Health serves GET /health; built with handlers.Health.
	Health http.HandlerFunc
	// MetricsHandler serves GET /metrics when set, typically promhttp.Handler().
	MetricsHandler http.Handler

	// TenantJWTSecret verifies tenant bearer tokens. Empty switches the API
	// to trusting the X-Tenant-Id header, for internal deployments only.
	TenantJWTSecret    string
	CORSAllowedOrigins []string

	// RateLimitRPS caps per-IP request rates on the tenant API when > 0.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: probes only, everything else is tenant-scoped.
	r.Group(func(public chi.Router) {
		health := cfg.Health
		if health == nil {
			health = handlers.Health(nil)
		}
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(httpmiddleware.TenantAuth(cfg.TenantJWTSecret))
		if cfg.RateLimitRPS > 0 {
			burst := cfg.RateLimitBurst
			if burst < 1 {
				burst = 1
			}
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, burst))
		}

		if cfg.Availability != nil {
			api.Get("/availability", cfg.Availability.FindSlots)
		}

		if cfg.Bookings != nil {
			api.Post("/appointments", cfg.Bookings.Create)
			api.Get("/appointments/upcoming", cfg.Bookings.Upcoming)
			api.Get("/bookings/{reference}", cfg.Bookings.GetByReference)

			api.Route("/appointments/{appointmentID}", func(appt chi.Router) {
				appt.Post("/confirm", cfg.Bookings.Confirm)
				appt.Post("/cancel", cfg.Bookings.Cancel)
				appt.Post("/reschedule", cfg.Bookings.Reschedule)
				appt.Post("/check-in", cfg.Bookings.CheckIn)
				appt.Post("/start", cfg.Bookings.Start)
				appt.Post("/complete", cfg.Bookings.Complete)
				appt.Post("/no-show", cfg.Bookings.NoShow)
				appt.Post("/payment/confirm", cfg.Bookings.ConfirmPayment)
				appt.Post("/feedback", cfg.Bookings.Feedback)
			})
		}

		if cfg.Analytics != nil {
			api.Route("/analytics", func(analytics chi.Router) {
				analytics.Get("/summary", cfg.Analytics.Summary)
				analytics.Get("/daily", cfg.Analytics.Daily)
			})
		}
	})

	return r
}
