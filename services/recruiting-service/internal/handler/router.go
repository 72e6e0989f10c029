package handler

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/middleware"
)

// RouterConfig wires the recruiting routes.
type RouterConfig struct {
	Handler        *RecruitingHTTPHandler
	Health         http.HandlerFunc
	TrustedProxies []netip.Prefix
	JWT            auth.JWTAuthenticator
	AccessSecret   string
	AdminSecret    string
	MutationLimit  func(http.Handler) http.Handler
	Logger         *zerolog.Logger
	IsDevelopment  bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := middleware.NewRouter(cfg.Logger, cfg.IsDevelopment, cfg.TrustedProxies, cfg.Health)
	h := cfg.Handler
	authenticate := middleware.Authenticate(cfg.JWT, cfg.AccessSecret)

	r.Route("/api", func(r chi.Router) {
		r.Get("/plans", h.ListPlans)
		r.Get("/jobs", h.ListOpenJobs)
		r.Get("/jobs/{id}", h.GetOpenJob)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Get("/unread-count", h.UnreadCount)
				r.Post("/{id}/read", h.MarkNotificationRead)
				r.Post("/read-all", h.MarkAllNotificationsRead)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleStudent))
				r.With(cfg.MutationLimit).Post("/jobs/{id}/applications", h.Apply)
				r.Get("/student/applications", h.ListStudentApplications)
				r.Get("/student/interviews", h.ListStudentInterviews)
			})

			r.Route("/startup", func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleStartup))

				r.Get("/subscription", h.GetSubscription)
				r.Get("/analytics", h.Analytics)
				r.Get("/jobs", h.ListStartupJobs)
				r.Get("/jobs/{id}/applications", h.ListJobApplications)
				r.Get("/interviews", h.ListStartupInterviews)

				r.Group(func(r chi.Router) {
					r.Use(cfg.MutationLimit)
					r.Post("/jobs", h.CreateJob)
					r.Patch("/jobs/{id}/status", h.UpdateJobStatus)
					r.Patch("/applications/{id}/status", h.UpdateApplicationStatus)
					r.Post("/applications/{id}/interviews", h.ScheduleInterview)
					r.Post("/interviews/{id}/cancel", h.CancelInterview)
					r.Post("/interviews/{id}/complete", h.CompleteInterview)
				})
			})
		})

		r.With(middleware.RequireAdminSecret(cfg.AdminSecret)).
			Put("/admin/subscriptions/{startupId}", h.SetTier)
	})

	return r
}
