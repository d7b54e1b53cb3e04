// Package rest serves the dice service as a JSON HTTP API.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option configures the router.
type Option func(*options)

type options struct {
	gatherer    prometheus.Gatherer
	corsOrigins []string
}

// WithGatherer serves /metrics from gatherer instead of the default registry.
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(o *options) {
		if gatherer != nil {
			o.gatherer = gatherer
		}
	}
}

// WithCORSOrigins allows browser calls from origins. Empty disables CORS.
func WithCORSOrigins(origins []string) Option {
	return func(o *options) {
		o.corsOrigins = origins
	}
}

// NewRouter returns the HTTP routes for dice.
func NewRouter(dice *service.Service, opts ...Option) http.Handler {
	o := options{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{dice: dice}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(o.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
			MaxAge:         60 * 15,
		}))
	}

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/version", h.version)
		v1.Route("/roll", func(rr chi.Router) {
			rr.Post("/", h.roll)
			rr.Post("/multiple", h.rollMultiple)
			rr.Post("/individual", h.rollIndividual)
			rr.Post("/notation", h.rollNotation)
		})
		v1.Get("/rolls", h.listRolls)
		v1.Get("/rolls/{id}", h.getRoll)
	})
	return r
}
