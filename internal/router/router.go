package router

import (
	"net/http"

	"github.com/evyataryagoni/ipenrich/internal/handler"
	"github.com/evyataryagoni/ipenrich/internal/limiter"
	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/metrics"
	custommiddleware "github.com/evyataryagoni/ipenrich/internal/middleware"
	v1 "github.com/evyataryagoni/ipenrich/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wires the router's collaborators
type Options struct {
	Handler *handler.LookupHandler
	Limiter limiter.Limiter
	Metrics *metrics.Metrics
	Logger  *logger.Logger

	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
}

// SetupRouter creates the chi router with middleware and routes
//
// Middleware order: RequestID, RealIP, logging, Recoverer, metrics.
// Rate limiting only applies to the versioned API so probes and scrapes are never throttled.
func SetupRouter(opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(custommiddleware.MetricsMiddleware(opts.Metrics))
	}

	r.Route("/v1", func(api chi.Router) {
		if opts.Limiter != nil {
			api.Use(custommiddleware.RateLimitMiddleware(opts.Limiter))
		}
		v1.SetupRoutes(api, opts.Handler)
	})

	r.Get("/health", healthCheckHandler)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthCheckHandler reports liveness only
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
