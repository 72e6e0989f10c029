package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
)

const (
	startupID = "startup-1"
	studentA  = "student-a"
	studentB  = "student-b"
)

var testNow = time.Date(2030, time.March, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	jobs          *memJobRepo
	applications  *memApplicationRepo
	interviews    *memInterviewRepo
	notifications *memNotificationRepo
	quotaSlots    *recordingSlots
	slots         *recordingSlots
	plans         fixedPlans
	tx            *inlineTx

	job         JobUsecase
	application ApplicationUsecase
	interview   InterviewUsecase
	analytics   AnalyticsUsecase
	inbox       NotificationUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	f := &fixture{
		jobs:          newMemJobRepo(),
		applications:  newMemApplicationRepo(),
		interviews:    newMemInterviewRepo(),
		notifications: &memNotificationRepo{},
		quotaSlots:    &recordingSlots{},
		slots:         &recordingSlots{},
		plans:         fixedPlans{},
		tx:            &inlineTx{},
	}

	f.job = NewJobUsecase(f.jobs, f.quotaSlots, f.plans, f.tx)

	application := NewApplicationUsecase(f.jobs, f.applications, f.notifications, f.tx, &logger).(*applicationUsecase)
	application.now = func() time.Time { return testNow }
	f.application = application

	interview := NewInterviewUsecase(
		f.applications,
		f.interviews,
		f.notifications,
		f.slots,
		f.plans,
		f.tx,
		&logger,
	).(*interviewUsecase)
	interview.now = func() time.Time { return testNow }
	f.interview = interview

	f.analytics = NewAnalyticsUsecase(aggregatingAnalytics{f.applications}, f.jobs, f.plans)
	f.inbox = NewNotificationUsecase(f.notifications)

	return f
}

func (f *fixture) openJob(t *testing.T, tier plan.Tier) *model.Job {
	t.Helper()

	f.plans[startupID] = tier
	job, err := f.job.CreateJob(context.Background(), startupID, CreateJobParams{Title: "Backend Intern"})
	require.NoError(t, err)
	return job
}

func (f *fixture) apply(t *testing.T, job *model.Job, studentID string) *model.Application {
	t.Helper()

	application, err := f.application.Apply(context.Background(), studentID, job.ID.Hex(), ApplyParams{
		CoverLetter: "hello",
	})
	require.NoError(t, err)
	return application
}

func (f *fixture) shortlist(t *testing.T, job *model.Job, studentID string) *model.Application {
	t.Helper()

	application := f.apply(t, job, studentID)
	application, err := f.application.UpdateStatus(
		context.Background(),
		startupID,
		application.ID.Hex(),
		model.ApplicationShortlisted,
	)
	require.NoError(t, err)
	return application
}

func online(at time.Time, interviewer string) ScheduleParams {
	return ScheduleParams{
		ScheduledAt:     at,
		DurationMinutes: 60,
		Mode:            model.InterviewOnline,
		MeetingLink:     "https://meet.example.com/abc",
		Interviewer:     interviewer,
	}
}
