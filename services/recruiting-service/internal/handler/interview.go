package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/payload"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *RecruitingHTTPHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req payload.ScheduleInterviewRequest
	if !h.bind(w, r, &req) {
		return
	}

	interview, err := h.interviewUsecase.Schedule(r.Context(), accountID(r), chi.URLParam(r, "id"), usecase.ScheduleParams{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Mode:            model.InterviewMode(req.Mode),
		Location:        req.Location,
		MeetingLink:     req.MeetingLink,
		Interviewer:     req.Interviewer,
		Notes:           req.Notes,
	})
	if err != nil {
		h.fail(w, err, "schedule interview")
		return
	}

	httpx.OK(w, http.StatusCreated, interview)
}

func (h *RecruitingHTTPHandler) CancelInterview(w http.ResponseWriter, r *http.Request) {
	interview, err := h.interviewUsecase.Cancel(r.Context(), accountID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "cancel interview")
		return
	}

	httpx.OK(w, http.StatusOK, interview)
}

func (h *RecruitingHTTPHandler) CompleteInterview(w http.ResponseWriter, r *http.Request) {
	interview, err := h.interviewUsecase.Complete(r.Context(), accountID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "complete interview")
		return
	}

	httpx.OK(w, http.StatusOK, interview)
}

func (h *RecruitingHTTPHandler) ListStartupInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.interviewUsecase.ListStartupInterviews(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "list startup interviews")
		return
	}

	httpx.OK(w, http.StatusOK, interviews)
}

func (h *RecruitingHTTPHandler) ListStudentInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.interviewUsecase.ListStudentInterviews(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "list student interviews")
		return
	}

	httpx.OK(w, http.StatusOK, interviews)
}
