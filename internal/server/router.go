package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nholik/devops-course/internal/healthcheck"
	"github.com/nholik/devops-course/internal/metrics"
	"github.com/nholik/devops-course/internal/sysinfo"
	"github.com/rs/zerolog"
)

// Deps holds everything the router needs. Uptime is fixed at process start.
type Deps struct {
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Service     sysinfo.Service
	Uptime      sysinfo.Uptime
	Now         func() time.Time
	RateLimiter *RateLimiter
}

// NewRouter builds the info-service routes.
func NewRouter(deps Deps) *chi.Mux {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(
		requestID,
		instrument(deps.Logger, deps.Metrics),
		recoverer(deps.Logger),
		rateLimit(deps.RateLimiter, deps.Metrics, "/health", "/metrics"),
	)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/", indexHandler(deps.Service, deps.Uptime, deps.Now))
	r.Get("/health", healthcheck.HealthHandler(deps.Uptime, deps.Now))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}
