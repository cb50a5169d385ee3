package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"pipeledger/internal/config"
	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/middleware"
)

// RouterDeps are the services and settings the router is built from.
type RouterDeps struct {
	Ledger    LedgerServiceInterface
	Spread    SpreadServiceInterface
	Contract  ContractServiceInterface
	Health    HealthServiceInterface
	Providers *infrastructure.OTelProviders
	RateLimit config.RateLimitConfig
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewRouter wires middleware and handlers.
// Ordering: RequestID, RealIP, StripSlashes, OTel, Logger, Recoverer, rate limit, timeout.
func NewRouter(deps RouterDeps) (*chi.Mux, error) {
	logger := deps.Logger
	errorHandler := apperrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)

	if deps.Providers != nil {
		otelMiddleware, err := middleware.NewOTelMiddleware(deps.Providers)
		if err != nil {
			return nil, err
		}
		r.Use(otelMiddleware.Handler)
	}
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	if deps.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst, logger).Handler)
	}

	health := NewHealthHandler(deps.Health, logger)
	r.Get("/healthz", health.HealthCheck)
	r.Get("/healthz/live", health.LivenessCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if deps.Timeout > 0 {
			r.Use(chimw.Timeout(deps.Timeout))
		}

		r.Mount("/entities", NewLedgerHandler(deps.Ledger, logger, errorHandler).Routes())
		r.Mount("/spreads", NewSpreadHandler(deps.Spread, logger, errorHandler).Routes())

		contracts := NewContractHandler(deps.Contract, logger, errorHandler)
		r.Get("/contracts/{code}", contracts.GetContract)
		r.Get("/calendar/deadline", contracts.GetDeadline)
	})

	if deps.Providers != nil && deps.Providers.PrometheusHTTP != nil {
		r.Handle("/metrics", deps.Providers.PrometheusHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		render.Render(w, req, apperrors.NewProblemDetails(http.StatusNotFound, apperrors.TypeNotFound,
			"Not Found", "No route matches "+req.URL.Path, req.URL.Path))
	})
	return r, nil
}
