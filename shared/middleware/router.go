package middleware

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter returns a chi router carrying the middleware every service shares,
// with /metrics and /health mounted. Forwarding headers are honoured only from
// trustedProxies.
func NewRouter(
	logger *zerolog.Logger,
	isDevelopment bool,
	trustedProxies []netip.Prefix,
	health http.HandlerFunc,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(TrustProxies(trustedProxies))
	r.Use(RequestLogger(logger))
	r.Use(chimid.Recoverer)
	r.Use(Metrics)
	r.Use(Secure(isDevelopment))

	r.Get("/health", health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
