package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/services/auth-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/ratelimit"
	"github.com/wostup/pitchit-api/shared/security"
)

type fakeVerificationUsecase struct {
	usecase.VerificationUsecase

	resent      []string
	verifyErr   error
	lastEmail   string
	lastToken   string
	byTokenUsed bool
}

func (f *fakeVerificationUsecase) ResendVerification(_ context.Context, email string) error {
	f.resent = append(f.resent, email)
	return errors.New("store unavailable")
}

func (f *fakeVerificationUsecase) VerifyEmail(_ context.Context, email, token string) error {
	f.lastEmail, f.lastToken = email, token
	return f.verifyErr
}

func (f *fakeVerificationUsecase) VerifyEmailByToken(_ context.Context, token string) error {
	f.lastToken = token
	f.byTokenUsed = true
	return f.verifyErr
}

type fakeAuthUsecase struct {
	usecase.AuthUsecase

	registerErr error
	loginErr    error
}

func (f *fakeAuthUsecase) Register(_ context.Context, params usecase.RegisterParams) (*model.Account, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.Account{ID: bson.NewObjectID(), Email: params.Email, Role: params.Role}, nil
}

func (f *fakeAuthUsecase) Login(context.Context, usecase.LoginParams) (*usecase.Tokens, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &usecase.Tokens{AccessToken: "a", RefreshToken: "r", Role: auth.RoleStudent}, nil
}

type fakePasswordResetUsecase struct {
	usecase.PasswordResetUsecase

	resetErr error
}

func (f *fakePasswordResetUsecase) RequestPasswordReset(context.Context, string) error { return nil }

func (f *fakePasswordResetUsecase) ResetPassword(context.Context, string, string) error {
	return f.resetErr
}

type routerFixture struct {
	auth         *fakeAuthUsecase
	verification *fakeVerificationUsecase
	reset        *fakePasswordResetUsecase
	router       http.Handler
}

func newRouterFixture(t *testing.T, resendRate limiter.Rate) *routerFixture {
	t.Helper()

	logger := zerolog.Nop()
	newLimit := func(rate limiter.Rate) func(http.Handler) http.Handler {
		l, err := ratelimit.NewWithRate(&logger, rate, ratelimit.Options{})
		require.NoError(t, err)
		return l.Middleware
	}
	generous := limiter.Rate{Period: time.Minute, Limit: 1000}

	f := &routerFixture{
		auth:         &fakeAuthUsecase{},
		verification: &fakeVerificationUsecase{},
		reset:        &fakePasswordResetUsecase{},
	}
	f.router = NewRouter(RouterConfig{
		Handler:       NewAuthHTTPHandler(f.auth, f.verification, f.reset, &logger),
		Health:        httpx.Health(func(context.Context) error { return nil }),
		ResendLimit:   newLimit(resendRate),
		VerifyLimit:   newLimit(generous),
		LoginLimit:    newLimit(generous),
		Logger:        &logger,
		IsDevelopment: true,
	})

	return f
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestResendVerification_AlwaysSucceeds(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})

	rec := f.do(http.MethodPost, "/api/auth/resend-verification", `{"email":"ghost@example.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []string{"ghost@example.com"}, f.verification.resent)
}

func TestResendVerification_MalformedBody(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})

	rec := f.do(http.MethodPost, "/api/auth/resend-verification", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.verification.resent)
}

func TestResendVerification_LenientBody(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		resent []string
	}{
		{name: "extra field", body: `{"email":"a@example.com","role":"student"}`, resent: []string{"a@example.com"}},
		{name: "non-string email", body: `{"email":42}`},
		{name: "missing email", body: `{}`},
		{name: "not an object", body: `["a@example.com"]`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 10})

			rec := f.do(http.MethodPost, "/api/auth/resend-verification", tt.body)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"success":true}`, rec.Body.String())
			assert.Equal(t, tt.resent, f.verification.resent)
		})
	}
}

func TestResendVerification_FourthRequestInWindowIsLimited(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: 300 * time.Millisecond, Limit: 3})

	for i := 0; i < 3; i++ {
		rec := f.do(http.MethodPost, "/api/auth/resend-verification", `{"email":"a@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := f.do(http.MethodPost, "/api/auth/resend-verification", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Too many requests, please try again later.", env.Error)

	time.Sleep(400 * time.Millisecond)

	rec = f.do(http.MethodPost, "/api/auth/resend-verification", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyEmail_GenericFailure(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})
	f.verification.verifyErr = security.ErrInvalidOrExpiredToken

	rec := f.do(http.MethodPost, "/api/auth/verify-email", `{"email":"a@example.com","token":"123456"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid or expired token", env.Error)
	assert.Equal(t, "a@example.com", f.verification.lastEmail)
	assert.Equal(t, "123456", f.verification.lastToken)
}

func TestVerifyEmailByToken_Success(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})

	rec := f.do(http.MethodGet, "/api/auth/verify-email/654321", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.True(t, f.verification.byTokenUsed)
	assert.Equal(t, "654321", f.verification.lastToken)
}

func TestVerifyEmail_StoreErrorIsOpaque(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})
	f.verification.verifyErr = errors.New("connection reset")

	rec := f.do(http.MethodGet, "/api/auth/verify-email/654321", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"name":"Ada","email":"ada@example.com","password":"longenough","role":"student"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid role",
			body:       `{"name":"Ada","email":"ada@example.com","password":"longenough","role":"admin"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   httpx.CodeValidationFailed,
		},
		{
			name:       "duplicate",
			body:       `{"name":"Ada","email":"ada@example.com","password":"longenough","role":"startup"}`,
			err:        usecase.ErrAccountAlreadyExists,
			wantStatus: http.StatusConflict,
			wantCode:   httpx.CodeConflict,
		},
		{
			name:       "unknown field",
			body:       `{"name":"Ada","email":"ada@example.com","password":"longenough","role":"student","admin":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   httpx.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})
			f.auth.registerErr = tt.err

			rec := f.do(http.MethodPost, "/api/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestRegister_ValidationFields(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})

	rec := f.do(http.MethodPost, "/api/auth/register", `{"name":"","email":"nope","password":"short","role":"student"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Fields, "email")
	assert.Contains(t, env.Fields, "password")
	assert.Contains(t, env.Fields, "name")
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{usecase.ErrInvalidCredentials, http.StatusUnauthorized},
		{usecase.ErrEmailNotVerified, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
		{nil, http.StatusOK},
	}

	for _, tt := range tests {
		f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})
		f.auth.loginErr = tt.err

		rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`)
		assert.Equal(t, tt.wantStatus, rec.Code, "err=%v", tt.err)
	}
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})
	f.reset.resetErr = usecase.ErrTokenAlreadyUsed

	rec := f.do(http.MethodPost, "/api/auth/password-reset/confirm", `{"token":"t","new_password":"longenough"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(t, limiter.Rate{Period: time.Minute, Limit: 3})

	rec := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
