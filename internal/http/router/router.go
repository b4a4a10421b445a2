// Package router arma el chi.Router del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialconnect/internal/http/controllers"
	"github.com/dropDatabas3/socialconnect/internal/http/errors"
	"github.com/dropDatabas3/socialconnect/internal/http/helpers"
	mw "github.com/dropDatabas3/socialconnect/internal/http/middlewares"
	"github.com/dropDatabas3/socialconnect/internal/rate"
)

type Deps struct {
	Connect *controllers.ConnectController
	Health  *controllers.HealthController

	// Metrics se monta en MetricsPath cuando no es nil.
	Metrics     http.Handler
	MetricsPath string

	// RateLimiter es opcional; limita solo los callbacks.
	RateLimiter rate.Limiter
	// Proxies define en qué peers se confía para X-Forwarded-For.
	Proxies helpers.ProxyPolicy
}

// New registra:
//
//	GET /connect/{provider}/callback  (alias /auth/{provider}/callback)
//	GET /providers
//	GET /healthz
//	GET <MetricsPath>
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
		mw.WithMetrics(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	if d.Connect != nil {
		callback := mw.Chain(http.HandlerFunc(d.Connect.Callback),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.RateLimiter, Proxies: d.Proxies}),
		)
		r.Method(http.MethodGet, "/connect/{provider}/callback", callback)
		r.Method(http.MethodGet, "/auth/{provider}/callback", callback)
		r.Get("/providers", d.Connect.Providers)
	}
	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
	}
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics)
	}
	return r
}
