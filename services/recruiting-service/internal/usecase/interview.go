package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/metrics"
)

// InterviewUsecase schedules interviews and keeps applications in step with them.
type InterviewUsecase interface {
	// Schedule books an interview for a shortlisted application and moves the
	// application to INTERVIEW_SCHEDULED in the same transaction.
	Schedule(ctx context.Context, startupID, applicationID string, params ScheduleParams) (*model.Interview, error)

	// Cancel cancels a scheduled interview and returns its application to SHORTLISTED.
	Cancel(ctx context.Context, startupID, interviewID string) (*model.Interview, error)

	Complete(ctx context.Context, startupID, interviewID string) (*model.Interview, error)
	ListStartupInterviews(ctx context.Context, startupID string) ([]model.Interview, error)
	ListStudentInterviews(ctx context.Context, studentID string) ([]model.Interview, error)
}

type ScheduleParams struct {
	ScheduledAt     time.Time
	DurationMinutes int
	Mode            model.InterviewMode
	Location        string
	MeetingLink     string
	Interviewer     string
	Notes           string
}

const defaultInterviewMinutes = 60

type interviewUsecase struct {
	applicationRepo  repository.ApplicationRepository
	interviewRepo    repository.InterviewRepository
	notificationRepo repository.NotificationRepository
	slots            repository.SlotRepository
	subscriptions    SubscriptionUsecase
	tx               database.Transactor
	logger           *zerolog.Logger
	now              func() time.Time
}

func NewInterviewUsecase(
	applicationRepo repository.ApplicationRepository,
	interviewRepo repository.InterviewRepository,
	notificationRepo repository.NotificationRepository,
	slots repository.SlotRepository,
	subscriptions SubscriptionUsecase,
	tx database.Transactor,
	logger *zerolog.Logger,
) InterviewUsecase {
	return &interviewUsecase{
		applicationRepo:  applicationRepo,
		interviewRepo:    interviewRepo,
		notificationRepo: notificationRepo,
		slots:            slots,
		subscriptions:    subscriptions,
		tx:               tx,
		logger:           logger,
		now:              time.Now,
	}
}

func (u *interviewUsecase) Schedule(
	ctx context.Context,
	startupID, applicationID string,
	params ScheduleParams,
) (*model.Interview, error) {
	interview, err := u.schedule(ctx, startupID, applicationID, params)
	metrics.InterviewScheduling.WithLabelValues(schedulingOutcome(err)).Inc()
	return interview, err
}

func (u *interviewUsecase) schedule(
	ctx context.Context,
	startupID, applicationID string,
	params ScheduleParams,
) (*model.Interview, error) {
	if err := u.validate(&params); err != nil {
		return nil, err
	}

	capabilities, err := u.subscriptions.Capabilities(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if err := capabilities.CheckInterviewScheduling(); err != nil {
		return nil, err
	}

	start := params.ScheduledAt.UTC()
	end := start.Add(time.Duration(params.DurationMinutes) * time.Minute)
	interviewerKey := model.InterviewerKey(params.Interviewer)

	var scheduled *model.Interview

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := ownedApplication(ctx, u.applicationRepo, startupID, applicationID)
		if err != nil {
			return err
		}

		if !model.CanTransition(application.Status, model.ApplicationInterviewScheduled, model.TriggerScheduling) {
			return ErrInvalidTransition
		}

		if err := u.slots.Bump(ctx, startupID+"|"+interviewerKey); err != nil {
			return err
		}
		if err := u.slots.Bump(ctx, "student|"+application.StudentID); err != nil {
			return err
		}

		overlap, err := u.interviewRepo.HasOverlap(ctx, startupID, interviewerKey, application.StudentID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return ErrSlotConflict
		}

		interview, err := u.interviewRepo.CreateInterview(ctx, &model.Interview{
			ApplicationID:   application.ID.Hex(),
			JobID:           application.JobID,
			StartupID:       startupID,
			StudentID:       application.StudentID,
			ScheduledAt:     start,
			DurationMinutes: params.DurationMinutes,
			EndsAt:          end,
			Mode:            params.Mode,
			Location:        params.Location,
			MeetingLink:     params.MeetingLink,
			Interviewer:     strings.TrimSpace(params.Interviewer),
			InterviewerKey:  interviewerKey,
			Notes:           params.Notes,
			Status:          model.InterviewScheduled,
		})
		if err != nil {
			return err
		}

		if _, err := transition(
			ctx,
			u.applicationRepo,
			application,
			model.ApplicationInterviewScheduled,
			model.TriggerScheduling,
			startupID,
			u.now(),
		); err != nil {
			return err
		}

		if _, err := u.notificationRepo.CreateNotification(
			ctx,
			interviewNotice(interview, model.NotificationInterviewScheduled),
		); err != nil {
			return err
		}

		scheduled = interview
		return nil
	})
	if err != nil {
		return nil, err
	}

	return scheduled, nil
}

func (u *interviewUsecase) Cancel(ctx context.Context, startupID, interviewID string) (*model.Interview, error) {
	var cancelled *model.Interview

	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.ownedInterview(ctx, startupID, interviewID); err != nil {
			return err
		}

		interview, err := u.interviewRepo.TransitionStatus(
			ctx,
			interviewID,
			model.InterviewScheduled,
			model.InterviewCancelled,
		)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrInterviewNotActive
			}
			return err
		}

		application, err := u.applicationRepo.GetApplication(ctx, interview.ApplicationID)
		if err != nil {
			return err
		}

		// A decision taken after scheduling stands.
		if application.Status == model.ApplicationInterviewScheduled {
			if _, err := transition(
				ctx,
				u.applicationRepo,
				application,
				model.ApplicationShortlisted,
				model.TriggerCancellation,
				startupID,
				u.now(),
			); err != nil {
				return err
			}
		}

		if _, err := u.notificationRepo.CreateNotification(
			ctx,
			interviewNotice(interview, model.NotificationInterviewCancelled),
		); err != nil {
			return err
		}

		cancelled = interview
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (u *interviewUsecase) Complete(ctx context.Context, startupID, interviewID string) (*model.Interview, error) {
	if _, err := u.ownedInterview(ctx, startupID, interviewID); err != nil {
		return nil, err
	}

	interview, err := u.interviewRepo.TransitionStatus(ctx, interviewID, model.InterviewScheduled, model.InterviewCompleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInterviewNotActive
		}
		return nil, err
	}

	return interview, nil
}

func (u *interviewUsecase) ListStartupInterviews(ctx context.Context, startupID string) ([]model.Interview, error) {
	return u.interviewRepo.ListByStartup(ctx, startupID)
}

func (u *interviewUsecase) ListStudentInterviews(ctx context.Context, studentID string) ([]model.Interview, error) {
	return u.interviewRepo.ListByStudent(ctx, studentID)
}

func (u *interviewUsecase) validate(params *ScheduleParams) error {
	if params.DurationMinutes == 0 {
		params.DurationMinutes = defaultInterviewMinutes
	}
	if params.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInterview)
	}
	if strings.TrimSpace(params.Interviewer) == "" {
		return fmt.Errorf("%w: interviewer is required", ErrInvalidInterview)
	}
	if !params.ScheduledAt.After(u.now()) {
		return fmt.Errorf("%w: interview must be scheduled in the future", ErrInvalidInterview)
	}

	switch params.Mode {
	case model.InterviewOnline:
		if strings.TrimSpace(params.MeetingLink) == "" {
			return fmt.Errorf("%w: online interviews need a meeting link", ErrInvalidInterview)
		}
	case model.InterviewOffline:
		if strings.TrimSpace(params.Location) == "" {
			return fmt.Errorf("%w: offline interviews need a location", ErrInvalidInterview)
		}
	default:
		return fmt.Errorf("%w: mode must be ONLINE or OFFLINE", ErrInvalidInterview)
	}

	return nil
}

func (u *interviewUsecase) ownedInterview(ctx context.Context, startupID, interviewID string) (*model.Interview, error) {
	interview, err := u.interviewRepo.GetInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInterviewNotFound
		}
		return nil, err
	}

	if interview.StartupID != startupID {
		return nil, ErrInterviewNotFound
	}

	return interview, nil
}

func schedulingOutcome(err error) string {
	switch {
	case err == nil:
		return "scheduled"
	case errors.Is(err, ErrSlotConflict):
		return "conflict"
	case errors.Is(err, plan.ErrUpgradeRequired):
		return "plan_denied"
	case errors.Is(err, ErrInvalidInterview), errors.Is(err, ErrInvalidTransition):
		return "rejected"
	default:
		return "error"
	}
}
