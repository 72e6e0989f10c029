package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/metrics"
)

// ApplicationUsecase manages job applications and their status pipeline.
type ApplicationUsecase interface {
	Apply(ctx context.Context, studentID, jobID string, params ApplyParams) (*model.Application, error)
	ListStudentApplications(ctx context.Context, studentID string) ([]model.Application, error)
	ListJobApplications(ctx context.Context, startupID, jobID string) ([]model.Application, error)

	// UpdateStatus applies a manual status change. Scheduling and cancelling
	// interviews move applications through InterviewUsecase instead.
	UpdateStatus(
		ctx context.Context,
		startupID, applicationID string,
		status model.ApplicationStatus,
	) (*model.Application, error)
}

type ApplyParams struct {
	CoverLetter string
	ResumeURL   string
	ATSScore    *float64
}

type applicationUsecase struct {
	jobRepo          repository.JobRepository
	applicationRepo  repository.ApplicationRepository
	notificationRepo repository.NotificationRepository
	tx               database.Transactor
	logger           *zerolog.Logger
	now              func() time.Time
}

func NewApplicationUsecase(
	jobRepo repository.JobRepository,
	applicationRepo repository.ApplicationRepository,
	notificationRepo repository.NotificationRepository,
	tx database.Transactor,
	logger *zerolog.Logger,
) ApplicationUsecase {
	return &applicationUsecase{
		jobRepo:          jobRepo,
		applicationRepo:  applicationRepo,
		notificationRepo: notificationRepo,
		tx:               tx,
		logger:           logger,
		now:              time.Now,
	}
}

func (u *applicationUsecase) Apply(
	ctx context.Context,
	studentID, jobID string,
	params ApplyParams,
) (*model.Application, error) {
	job, err := u.jobRepo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if job.Status != model.JobStatusOpen {
		return nil, ErrJobClosed
	}

	var created *model.Application

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := u.now()
		application, err := u.applicationRepo.CreateApplication(ctx, &model.Application{
			JobID:       job.ID.Hex(),
			StartupID:   job.StartupID,
			StudentID:   studentID,
			CoverLetter: params.CoverLetter,
			ResumeURL:   params.ResumeURL,
			ATSScore:    params.ATSScore,
			Status:      model.ApplicationApplied,
			History: []model.StatusChange{
				{To: model.ApplicationApplied, By: studentID, At: now},
			},
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrAlreadyApplied
			}
			return err
		}

		if _, err := u.notificationRepo.CreateNotification(ctx, applicationReceived(application, job)); err != nil {
			return err
		}

		created = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (u *applicationUsecase) ListStudentApplications(
	ctx context.Context,
	studentID string,
) ([]model.Application, error) {
	return u.applicationRepo.ListByStudent(ctx, studentID)
}

func (u *applicationUsecase) ListJobApplications(
	ctx context.Context,
	startupID, jobID string,
) ([]model.Application, error) {
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

	return u.applicationRepo.ListByJob(ctx, jobID)
}

func (u *applicationUsecase) UpdateStatus(
	ctx context.Context,
	startupID, applicationID string,
	status model.ApplicationStatus,
) (*model.Application, error) {
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}

	var (
		updated *model.Application
		from    model.ApplicationStatus
	)

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := ownedApplication(ctx, u.applicationRepo, startupID, applicationID)
		if err != nil {
			return err
		}
		from = application.Status

		application, err = transition(ctx, u.applicationRepo, application, status, model.TriggerManual, startupID, u.now())
		if err != nil {
			return err
		}

		if _, err := u.notificationRepo.CreateNotification(ctx, statusChanged(application, status)); err != nil {
			return err
		}

		updated = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(from), string(status)).Inc()
	return updated, nil
}

func ownedApplication(
	ctx context.Context,
	repo repository.ApplicationRepository,
	startupID, applicationID string,
) (*model.Application, error) {
	application, err := repo.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if application.StartupID != startupID {
		return nil, ErrApplicationNotFound
	}

	return application, nil
}

// transition validates and applies a compare-and-set status change.
func transition(
	ctx context.Context,
	repo repository.ApplicationRepository,
	application *model.Application,
	to model.ApplicationStatus,
	trigger model.Trigger,
	by string,
	at time.Time,
) (*model.Application, error) {
	if !model.CanTransition(application.Status, to, trigger) {
		return nil, ErrInvalidTransition
	}

	updated, err := repo.TransitionStatus(ctx, application.ID.Hex(), model.StatusChange{
		From: application.Status,
		To:   to,
		By:   by,
		At:   at,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStatusConflict
		}
		return nil, err
	}

	return updated, nil
}
