package handler

import (
	"errors"
	"net/http"

	"github.com/wostup/pitchit-api/services/auth-service/internal/payload"
	"github.com/wostup/pitchit-api/services/auth-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *AuthHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}

	account, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrAccountAlreadyExists) {
			httpx.Error(w, http.StatusConflict, "", err.Error())
			return
		}

		h.logger.Error().Err(err).Msg("failed to register account")
		httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
		return
	}

	httpx.OK(w, http.StatusCreated, payload.RegisterResponse{
		ID:         account.ID.Hex(),
		Email:      account.Email,
		Role:       string(account.Role),
		IsVerified: account.IsVerified,
	})
}

func (h *AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
		Client:   clientInfo(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			httpx.Error(w, http.StatusUnauthorized, "", err.Error())
		case errors.Is(err, usecase.ErrEmailNotVerified):
			httpx.Error(w, http.StatusForbidden, "email_not_verified", err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to login")
			httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
		}
		return
	}

	httpx.OK(w, http.StatusOK, tokens)
}

func (h *AuthHTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req payload.RefreshRequest
	if !h.bind(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.Refresh(r.Context(), usecase.RefreshParams{
		RefreshToken: req.RefreshToken,
		Client:       clientInfo(r),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			httpx.Error(w, http.StatusUnauthorized, "", err.Error())
			return
		}

		h.logger.Error().Err(err).Msg("failed to refresh tokens")
		httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
		return
	}

	httpx.OK(w, http.StatusOK, tokens)
}

func (h *AuthHTTPHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req payload.GoogleLoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.GoogleLogin(r.Context(), usecase.GoogleLoginParams{
		IDToken: req.IDToken,
		Role:    auth.Role(req.Role),
		Client:  clientInfo(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidGoogleToken):
			httpx.Error(w, http.StatusUnauthorized, "", err.Error())
		case errors.Is(err, usecase.ErrAccountAlreadyExists):
			httpx.Error(w, http.StatusConflict, "", err.Error())
		case errors.Is(err, usecase.ErrEmailNotVerified):
			httpx.Error(w, http.StatusForbidden, "email_not_verified", err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to login with google")
			httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
		}
		return
	}

	httpx.OK(w, http.StatusOK, tokens)
}
