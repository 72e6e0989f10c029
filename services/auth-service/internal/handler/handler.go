package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/services/auth-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/validation"
)

const msgInternal = "something went wrong"

// AuthHTTPHandler serves the /api/auth routes.
type AuthHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validation.Validator
	logger               *zerolog.Logger
}

func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	logger *zerolog.Logger,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validation.New(),
		logger:               logger,
	}
}

// bind decodes and validates the request body into dst. On failure it writes
// the response and returns false.
func (h *AuthHTTPHandler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, httpx.ErrEmptyBody) {
			msg = httpx.ErrEmptyBody.Error()
		}
		httpx.Error(w, http.StatusBadRequest, "", msg)
		return false
	}

	fields, err := h.validator.Struct(dst)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to validate request")
		httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
		return false
	}
	if len(fields) > 0 {
		httpx.ValidationError(w, fields)
		return false
	}

	return true
}

func clientInfo(r *http.Request) usecase.ClientInfo {
	return usecase.ClientInfo{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
