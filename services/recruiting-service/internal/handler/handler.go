package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
	"github.com/wostup/pitchit-api/shared/middleware"
	"github.com/wostup/pitchit-api/shared/validation"
)

const msgInternal = "something went wrong"

const codeInvalidTransition = "invalid_transition"

// RecruitingHTTPHandler serves jobs, applications, interviews, plans,
// analytics and notifications.
type RecruitingHTTPHandler struct {
	jobUsecase          usecase.JobUsecase
	applicationUsecase  usecase.ApplicationUsecase
	interviewUsecase    usecase.InterviewUsecase
	subscriptionUsecase usecase.SubscriptionUsecase
	analyticsUsecase    usecase.AnalyticsUsecase
	notificationUsecase usecase.NotificationUsecase
	validator           *validation.Validator
	logger              *zerolog.Logger
}

type Usecases struct {
	Jobs          usecase.JobUsecase
	Applications  usecase.ApplicationUsecase
	Interviews    usecase.InterviewUsecase
	Subscriptions usecase.SubscriptionUsecase
	Analytics     usecase.AnalyticsUsecase
	Notifications usecase.NotificationUsecase
}

func NewRecruitingHTTPHandler(usecases Usecases, logger *zerolog.Logger) *RecruitingHTTPHandler {
	return &RecruitingHTTPHandler{
		jobUsecase:          usecases.Jobs,
		applicationUsecase:  usecases.Applications,
		interviewUsecase:    usecases.Interviews,
		subscriptionUsecase: usecases.Subscriptions,
		analyticsUsecase:    usecases.Analytics,
		notificationUsecase: usecases.Notifications,
		validator:           validation.New(),
		logger:              logger,
	}
}

// bind decodes and validates the request body into dst. On failure it writes
// the response and returns false.
func (h *RecruitingHTTPHandler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
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

// fail maps usecase errors to responses. Anything unrecognised is logged with
// action and hidden behind a 500.
func (h *RecruitingHTTPHandler) fail(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, plan.ErrUpgradeRequired):
		httpx.Error(w, http.StatusPaymentRequired, httpx.CodePlanUpgradeRequired, plan.ErrUpgradeRequired.Error())
	case errors.Is(err, usecase.ErrJobNotFound),
		errors.Is(err, usecase.ErrApplicationNotFound),
		errors.Is(err, usecase.ErrInterviewNotFound),
		errors.Is(err, usecase.ErrNotificationNotFound):
		httpx.Error(w, http.StatusNotFound, "", err.Error())
	case errors.Is(err, usecase.ErrAlreadyApplied),
		errors.Is(err, usecase.ErrStatusConflict),
		errors.Is(err, usecase.ErrSlotConflict),
		errors.Is(err, usecase.ErrInterviewNotActive),
		errors.Is(err, usecase.ErrJobClosed):
		httpx.Error(w, http.StatusConflict, "", err.Error())
	case errors.Is(err, usecase.ErrInvalidTransition):
		httpx.Error(w, http.StatusUnprocessableEntity, codeInvalidTransition, err.Error())
	case errors.Is(err, usecase.ErrInvalidInterview),
		errors.Is(err, usecase.ErrInvalidJobStatus),
		errors.Is(err, plan.ErrUnknownTier):
		httpx.Error(w, http.StatusBadRequest, "", err.Error())
	default:
		h.logger.Error().Err(err).Msg("failed to " + action)
		httpx.Error(w, http.StatusInternalServerError, "", msgInternal)
	}
}

// accountID is the caller set by middleware.Authenticate.
func accountID(r *http.Request) string {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return ""
	}
	return claims.AccountID
}

func queryInt(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
