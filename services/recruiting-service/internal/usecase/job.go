package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/database"
)

// JobUsecase manages job postings.
type JobUsecase interface {
	CreateJob(ctx context.Context, startupID string, params CreateJobParams) (*model.Job, error)
	ListStartupJobs(ctx context.Context, startupID string) ([]model.Job, error)
	UpdateJobStatus(ctx context.Context, startupID, jobID string, status model.JobStatus) (*model.Job, error)
	ListOpenJobs(ctx context.Context, limit, offset int64) ([]model.Job, error)
	GetOpenJob(ctx context.Context, jobID string) (*model.Job, error)
}

type CreateJobParams struct {
	Title          string
	Description    string
	Location       string
	EmploymentType string
	Skills         []string
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type jobUsecase struct {
	jobRepo       repository.JobRepository
	quotaSlots    repository.SlotRepository
	subscriptions SubscriptionUsecase
	tx            database.Transactor
}

func NewJobUsecase(
	jobRepo repository.JobRepository,
	quotaSlots repository.SlotRepository,
	subscriptions SubscriptionUsecase,
	tx database.Transactor,
) JobUsecase {
	return &jobUsecase{
		jobRepo:       jobRepo,
		quotaSlots:    quotaSlots,
		subscriptions: subscriptions,
		tx:            tx,
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, startupID string, params CreateJobParams) (*model.Job, error) {
	var created *model.Job

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.checkQuota(ctx, startupID); err != nil {
			return err
		}

		job, err := u.jobRepo.CreateJob(ctx, &model.Job{
			StartupID:      startupID,
			Title:          strings.TrimSpace(params.Title),
			Description:    params.Description,
			Location:       params.Location,
			EmploymentType: params.EmploymentType,
			Skills:         params.Skills,
			Status:         model.JobStatusOpen,
		})
		if err != nil {
			return err
		}

		created = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (u *jobUsecase) ListStartupJobs(ctx context.Context, startupID string) ([]model.Job, error) {
	return u.jobRepo.ListJobsByStartup(ctx, startupID)
}

func (u *jobUsecase) UpdateJobStatus(
	ctx context.Context,
	startupID, jobID string,
	status model.JobStatus,
) (*model.Job, error) {
	if !status.Valid() {
		return nil, ErrInvalidJobStatus
	}

	var updated *model.Job

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := u.ownedJob(ctx, startupID, jobID)
		if err != nil {
			return err
		}

		if job.Status == status {
			updated = job
			return nil
		}

		if status == model.JobStatusOpen {
			if err := u.checkQuota(ctx, startupID); err != nil {
				return err
			}
		}

		job, err = u.jobRepo.UpdateJobStatus(ctx, jobID, startupID, status)
		if err != nil {
			return err
		}

		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (u *jobUsecase) ListOpenJobs(ctx context.Context, limit, offset int64) ([]model.Job, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return u.jobRepo.ListOpenJobs(ctx, limit, offset)
}

func (u *jobUsecase) GetOpenJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := u.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if job.Status != model.JobStatusOpen {
		return nil, ErrJobNotFound
	}

	return job, nil
}

// checkQuota must run inside a transaction: the bump serialises concurrent
// openings for the same startup.
func (u *jobUsecase) checkQuota(ctx context.Context, startupID string) error {
	if err := u.quotaSlots.Bump(ctx, startupID); err != nil {
		return err
	}

	capabilities, err := u.subscriptions.Capabilities(ctx, startupID)
	if err != nil {
		return err
	}

	active, err := u.jobRepo.CountActiveJobs(ctx, startupID)
	if err != nil {
		return err
	}

	return capabilities.CheckActiveJobs(active)
}

func (u *jobUsecase) ownedJob(ctx context.Context, startupID, jobID string) (*model.Job, error) {
	job, err := u.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if job.StartupID != startupID {
		return nil, ErrJobNotFound
	}

	return job, nil
}
