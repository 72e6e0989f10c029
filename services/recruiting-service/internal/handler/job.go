package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/payload"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/usecase"
	"github.com/wostup/pitchit-api/shared/httpx"
)

func (h *RecruitingHTTPHandler) ListOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobUsecase.ListOpenJobs(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		h.fail(w, err, "list open jobs")
		return
	}

	httpx.OK(w, http.StatusOK, jobs)
}

func (h *RecruitingHTTPHandler) GetOpenJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobUsecase.GetOpenJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "get job")
		return
	}

	httpx.OK(w, http.StatusOK, job)
}

func (h *RecruitingHTTPHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateJobRequest
	if !h.bind(w, r, &req) {
		return
	}

	job, err := h.jobUsecase.CreateJob(r.Context(), accountID(r), usecase.CreateJobParams{
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Skills:         req.Skills,
	})
	if err != nil {
		h.fail(w, err, "create job")
		return
	}

	httpx.OK(w, http.StatusCreated, job)
}

func (h *RecruitingHTTPHandler) ListStartupJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobUsecase.ListStartupJobs(r.Context(), accountID(r))
	if err != nil {
		h.fail(w, err, "list startup jobs")
		return
	}

	httpx.OK(w, http.StatusOK, jobs)
}

func (h *RecruitingHTTPHandler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateStatusRequest
	if !h.bind(w, r, &req) {
		return
	}

	job, err := h.jobUsecase.UpdateJobStatus(
		r.Context(),
		accountID(r),
		chi.URLParam(r, "id"),
		model.JobStatus(req.Status),
	)
	if err != nil {
		h.fail(w, err, "update job status")
		return
	}

	httpx.OK(w, http.StatusOK, job)
}
