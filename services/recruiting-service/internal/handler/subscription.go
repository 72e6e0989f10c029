package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/payload"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *RecruitingHTTPHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, h.subscriptionUsecase.Plans())
}

func (h *RecruitingHTTPHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	startupID := accountID(r)

	capabilities, err := h.subscriptionUsecase.Capabilities(r.Context(), startupID)
	if err != nil {
		h.fail(w, err, "get subscription")
		return
	}

	httpx.OK(w, http.StatusOK, payload.SubscriptionResponse{
		StartupID:    startupID,
		Capabilities: capabilities,
	})
}

// SetTier is the target of the payment provider webhook relay.
func (h *RecruitingHTTPHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req payload.SetTierRequest
	if !h.bind(w, r, &req) {
		return
	}

	tier, err := plan.ParseTier(req.Tier)
	if err != nil {
		h.fail(w, err, "parse tier")
		return
	}

	subscription, err := h.subscriptionUsecase.SetTier(r.Context(), chi.URLParam(r, "startupId"), tier)
	if err != nil {
		h.fail(w, err, "set subscription tier")
		return
	}

	httpx.OK(w, http.StatusOK, payload.SubscriptionResponse{
		StartupID:    subscription.StartupID,
		Capabilities: plan.For(subscription.Tier),
	})
}

func (h *RecruitingHTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analyticsUsecase.Dashboard(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "build analytics")
		return
	}

	httpx.OK(w, http.StatusOK, dashboard)
}
