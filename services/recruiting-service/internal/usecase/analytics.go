package usecase

import (
	"context"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
)

// AnalyticsUsecase builds the hiring dashboard of a startup. The depth of the
// report follows the startup's plan.
type AnalyticsUsecase interface {
	Dashboard(ctx context.Context, startupID string) (*Dashboard, error)
}

type Dashboard struct {
	Level           plan.AnalyticsLevel               `json:"level"`
	ActiveJobs      int64                             `json:"activeJobs"`
	TotalJobs       int                               `json:"totalJobs"`
	TotalApplicants int64                             `json:"totalApplicants"`
	ByStatus        map[model.ApplicationStatus]int64 `json:"byStatus"`

	// Advanced only.
	Jobs       []JobBreakdown `json:"jobs,omitempty"`
	Conversion *Conversion    `json:"conversion,omitempty"`
}

type JobBreakdown struct {
	JobID      string                            `json:"jobId"`
	Title      string                            `json:"title"`
	Status     model.JobStatus                   `json:"status"`
	Applicants int64                             `json:"applicants"`
	ByStatus   map[model.ApplicationStatus]int64 `json:"byStatus"`
}

// Conversion holds the share of all applicants that reached each stage.
type Conversion struct {
	Shortlisted float64 `json:"shortlisted"`
	Interviewed float64 `json:"interviewed"`
	Selected    float64 `json:"selected"`
}

type analyticsUsecase struct {
	analyticsRepo repository.AnalyticsRepository
	jobRepo       repository.JobRepository
	subscriptions SubscriptionUsecase
}

func NewAnalyticsUsecase(
	analyticsRepo repository.AnalyticsRepository,
	jobRepo repository.JobRepository,
	subscriptions SubscriptionUsecase,
) AnalyticsUsecase {
	return &analyticsUsecase{
		analyticsRepo: analyticsRepo,
		jobRepo:       jobRepo,
		subscriptions: subscriptions,
	}
}

func (u *analyticsUsecase) Dashboard(ctx context.Context, startupID string) (*Dashboard, error) {
	capabilities, err := u.subscriptions.Capabilities(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if err := capabilities.CheckAnalytics(); err != nil {
		return nil, err
	}

	jobs, err := u.jobRepo.ListJobsByStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}

	counts, err := u.analyticsRepo.StatusCountsByJob(ctx, startupID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Level:     capabilities.JobAnalysis,
		TotalJobs: len(jobs),
		ByStatus:  emptyStatusCounts(),
	}

	for _, job := range jobs {
		if job.Status == model.JobStatusOpen {
			dashboard.ActiveJobs++
		}
	}

	perJob := make(map[string]map[model.ApplicationStatus]int64)
	for _, c := range counts {
		dashboard.ByStatus[c.Status] += c.Count
		dashboard.TotalApplicants += c.Count

		if perJob[c.JobID] == nil {
			perJob[c.JobID] = emptyStatusCounts()
		}
		perJob[c.JobID][c.Status] += c.Count
	}

	if capabilities.JobAnalysis != plan.AnalyticsAdvanced {
		return dashboard, nil
	}

	dashboard.Jobs = make([]JobBreakdown, 0, len(jobs))
	for _, job := range jobs {
		byStatus := perJob[job.ID.Hex()]
		if byStatus == nil {
			byStatus = emptyStatusCounts()
		}

		var applicants int64
		for _, n := range byStatus {
			applicants += n
		}

		dashboard.Jobs = append(dashboard.Jobs, JobBreakdown{
			JobID:      job.ID.Hex(),
			Title:      job.Title,
			Status:     job.Status,
			Applicants: applicants,
			ByStatus:   byStatus,
		})
	}

	stages, err := u.analyticsRepo.StagesReached(ctx, startupID)
	if err != nil {
		return nil, err
	}

	reached := make(map[model.ApplicationStatus]int64, len(stages))
	for _, s := range stages {
		reached[s.Status] += s.Count
	}

	dashboard.Conversion = conversion(reached, dashboard.TotalApplicants)
	return dashboard, nil
}

func emptyStatusCounts() map[model.ApplicationStatus]int64 {
	counts := make(map[model.ApplicationStatus]int64, len(model.ApplicationStatuses))
	for _, s := range model.ApplicationStatuses {
		counts[s] = 0
	}
	return counts
}

// conversion divides the applications that ever reached each stage by total.
// An applicant rejected after an interview still counts as shortlisted and
// interviewed.
func conversion(reached map[model.ApplicationStatus]int64, total int64) *Conversion {
	if total == 0 {
		return &Conversion{}
	}

	return &Conversion{
		Shortlisted: float64(reached[model.ApplicationShortlisted]) / float64(total),
		Interviewed: float64(reached[model.ApplicationInterviewScheduled]) / float64(total),
		Selected:    float64(reached[model.ApplicationSelected]) / float64(total),
	}
}
