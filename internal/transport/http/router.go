// Package httptransport composes the HTTP surface: middleware chain, feature
// routers, health, and metrics.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aidtrack/internal/platform/metrics"
	"aidtrack/internal/platform/middleware"
	"aidtrack/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// Registrar is implemented by feature handlers that attach their routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config carries everything the router needs.
type Config struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.JWTValidator
	Handlers  []Registrar
	Health    []HealthCheck
}

// NewRouter builds the full router. Health and metrics are public; every
// feature route sits behind authentication.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", healthHandler(cfg.Logger, cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	return r
}

func healthHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"dependency", c.Name,
					"error", err.Error(),
				)
				result[c.Name] = "unavailable"
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[c.Name] = "ok"
		}

		httputil.WriteJSON(w, status, result)
	}
}
