package handler

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/shared/middleware"
)

// RouterConfig wires the auth routes and their rate limits.
type RouterConfig struct {
	Handler        *AuthHTTPHandler
	Health         http.HandlerFunc
	TrustedProxies []netip.Prefix
	ResendLimit    func(http.Handler) http.Handler
	VerifyLimit    func(http.Handler) http.Handler
	LoginLimit     func(http.Handler) http.Handler
	Logger         *zerolog.Logger
	IsDevelopment  bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := middleware.NewRouter(cfg.Logger, cfg.IsDevelopment, cfg.TrustedProxies, cfg.Health)
	h := cfg.Handler

	r.Route("/api/auth", func(r chi.Router) {
		r.With(cfg.ResendLimit).Post("/resend-verification", h.ResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(cfg.VerifyLimit)
			r.Post("/verify-email", h.VerifyEmail)
			r.Get("/verify-email/{token}", h.VerifyEmailByToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.LoginLimit)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/google", h.GoogleLogin)
			r.Post("/password-reset/request", h.RequestPasswordReset)
			r.Post("/password-reset/confirm", h.ResetPassword)
			r.Get("/password-reset/validate", h.ValidatePasswordResetToken)
		})
	})

	return r
}
