package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/internal/interfaces/http/handlers"
	"github.com/turtacn/StayLedger/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware the route tree uses.
// Nil handlers leave their routes unmounted.
type RouterConfig struct {
	RevenueHandler     *handlers.RevenueHandler
	CommissionHandler  *handlers.CommissionHandler
	PayoutHandler      *handlers.PayoutHandler
	RatesHandler       *handlers.RatesHandler
	ReservationHandler *handlers.ReservationHandler
	HealthHandler      *handlers.HealthHandler

	Scope       middleware.ScopeConfig
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig
	Logging     middleware.LoggingConfig

	Logger         logging.Logger
	HTTPMetrics    middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Scope(cfg.Scope, logger))
	r.Use(middleware.RequestLogging(logger, cfg.HTTPMetrics, cfg.Logging))
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerRevenueRoutes(api, cfg.RevenueHandler)
		registerCommissionRoutes(api, cfg.CommissionHandler)
		registerPayoutRoutes(api, cfg.PayoutHandler)
		registerRateRoutes(api, cfg.RatesHandler)
		registerReservationRoutes(api, cfg.ReservationHandler)
	})

	return r
}

func registerRevenueRoutes(r chi.Router, h *handlers.RevenueHandler) {
	if h == nil {
		return
	}
	r.Get("/revenue/summary", h.Summary)
}

func registerCommissionRoutes(r chi.Router, h *handlers.CommissionHandler) {
	if h == nil {
		return
	}
	r.Route("/commissions", func(cr chi.Router) {
		cr.Post("/{bookingID}/calculate", h.Calculate)
		cr.Post("/{id}/approve", h.Approve)
		cr.Post("/{id}/finalize", h.Finalize)
	})
	r.Get("/managers/{managerID}/commissions", h.ManagerPeriod)
}

func registerPayoutRoutes(r chi.Router, h *handlers.PayoutHandler) {
	if h == nil {
		return
	}
	r.Get("/managers/{managerID}/balance", h.Balance)
	r.Get("/managers/{managerID}/payouts", h.List)
	r.Route("/payouts", func(pr chi.Router) {
		pr.Post("/", h.Create)
		pr.Route("/{id}", func(item chi.Router) {
			item.Post("/approve", h.Approve)
			item.Post("/reject", h.Reject)
			item.Post("/pay", h.Pay)
			item.Post("/receipt", h.UploadReceipt)
		})
	})
	r.Get("/receipts", h.ReceiptURL)
}

func registerRateRoutes(r chi.Router, h *handlers.RatesHandler) {
	if h == nil {
		return
	}
	r.Get("/rates/convert", h.Convert)
	r.Get("/rates/{base}", h.Get)
}

func registerReservationRoutes(r chi.Router, h *handlers.ReservationHandler) {
	if h == nil {
		return
	}
	r.Post("/reservations", h.Create)
}

//Personal.AI order the ending
