package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/payload"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *RecruitingHTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationUsecase.List(r.Context(), accountID(r), queryInt(r, "limit"))
	if err != nil {
		h.fail(w, err, "list notifications")
		return
	}

	httpx.OK(w, http.StatusOK, notifications)
}

func (h *RecruitingHTTPHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationUsecase.UnreadCount(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "count unread notifications")
		return
	}

	httpx.OK(w, http.StatusOK, payload.UnreadCountResponse{Unread: n})
}

func (h *RecruitingHTTPHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationUsecase.MarkRead(r.Context(), accountID(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "mark notification read")
		return
	}

	httpx.OK(w, http.StatusOK, nil)
}

func (h *RecruitingHTTPHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationUsecase.MarkAllRead(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "mark notifications read")
		return
	}

	httpx.OK(w, http.StatusOK, payload.MarkAllReadResponse{Updated: n})
}
