package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/payload"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *RecruitingHTTPHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req payload.ApplyRequest
	if !h.bind(w, r, &req) {
		return
	}

	application, err := h.applicationUsecase.Apply(r.Context(), accountID(r), chi.URLParam(r, "id"), usecase.ApplyParams{
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
		ATSScore:    req.ATSScore,
	})
	if err != nil {
		h.fail(w, err, "apply to job")
		return
	}

	httpx.OK(w, http.StatusCreated, application)
}

func (h *RecruitingHTTPHandler) ListStudentApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := h.applicationUsecase.ListStudentApplications(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "list student applications")
		return
	}

	httpx.OK(w, http.StatusOK, applications)
}

func (h *RecruitingHTTPHandler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := h.applicationUsecase.ListJobApplications(r.Context(), accountID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "list job applications")
		return
	}

	httpx.OK(w, http.StatusOK, applications)
}

func (h *RecruitingHTTPHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateStatusRequest
	if !h.bind(w, r, &req) {
		return
	}

	application, err := h.applicationUsecase.UpdateStatus(
		r.Context(),
		accountID(r),
		chi.URLParam(r, "id"),
		model.ApplicationStatus(req.Status),
	)
	if err != nil {
		h.fail(w, err, "update application status")
		return
	}

	httpx.OK(w, http.StatusOK, application)
}
