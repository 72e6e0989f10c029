package handler

import (
	"errors"
	"net/http"

	"github.com/wostup/pitchit-api/services/auth-service/internal/payload"
	"github.com/wostup/pitchit-api/services/auth-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *AuthHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.PasswordResetRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
	}

	httpx.OK(w, http.StatusOK, nil)
}

func (h *AuthHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.PasswordResetConfirmRequest
	if !h.bind(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		h.writeResetTokenError(w, err, "failed to reset password")
		return
	}

	httpx.OK(w, http.StatusOK, nil)
}

func (h *AuthHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "", "token is required")
		return
	}

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), token); err != nil {
		h.writeResetTokenError(w, err, "failed to validate password reset token")
		return
	}

	httpx.OK(w, http.StatusOK, nil)
}

func (h *AuthHTTPHandler) writeResetTokenError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrTokenNotFound):
		httpx.Error(w, http.StatusNotFound, "", "password reset token not found")
	case errors.Is(err, usecase.ErrTokenAlreadyUsed):
		httpx.Error(w, http.StatusConflict, "", "password reset token has already been used")
	case errors.Is(err, usecase.ErrTokenExpired):
		httpx.Error(w, http.StatusUnauthorized, "", "password reset token has expired")
	case errors.Is(err, usecase.ErrInvalidToken):
		httpx.Error(w, http.StatusUnauthorized, "", "invalid password reset token")
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
	}
}
