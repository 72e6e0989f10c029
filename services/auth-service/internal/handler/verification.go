package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/auth-service/internal/payload"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/security"
)

const msgVerifyServerError = "Server error"

// ResendVerification always answers 200 once the body is valid JSON, so the
// response never reveals whether the address belongs to an account.
func (h *AuthHTTPHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := httpx.DecodeJSON(r, &raw); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Error(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	req := payload.ParseResendVerification(raw)

	if req.Email != "" {
		if err := h.verificationUsecase.ResendVerification(r.Context(), req.Email); err != nil {
			h.logger.Error().Err(err).Msg("failed to resend verification")
		}
	}

	httpx.OK(w, http.StatusOK, nil)
}

func (h *AuthHTTPHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	h.writeVerifyResult(w, h.verificationUsecase.VerifyEmail(r.Context(), req.Email, req.Token))
}

func (h *AuthHTTPHandler) VerifyEmailByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	h.writeVerifyResult(w, h.verificationUsecase.VerifyEmailByToken(r.Context(), token))
}

func (h *AuthHTTPHandler) writeVerifyResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		httpx.OK(w, http.StatusOK, nil)
	case errors.Is(err, security.ErrInvalidOrExpiredToken):
		httpx.Error(w, http.StatusBadRequest, httpx.CodeInvalidRequest, security.ErrInvalidOrExpiredToken.Error())
	default:
		h.logger.Error().Err(err).Msg("failed to verify email")
		httpx.Error(w, http.StatusInternalServerError, "", msgVerifyServerError)
	}
}
