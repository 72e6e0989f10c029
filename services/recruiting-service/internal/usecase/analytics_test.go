package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
)

func TestDashboard_FreeTierDenied(t *testing.T) {
	f := newFixture(t)
	f.openJob(t, plan.TierFree)

	_, err := f.analytics.Dashboard(context.Background(), startupID)
	assert.ErrorIs(t, err, plan.ErrUpgradeRequired)
}

func TestDashboard_Levels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t, plan.TierGrowth)

	f.shortlist(t, job, studentA)
	f.apply(t, job, studentB)
	rejected := f.apply(t, job, "student-c")
	_, err := f.application.UpdateStatus(ctx, startupID, rejected.ID.Hex(), model.ApplicationRejected)
	require.NoError(t, err)

	basic, err := f.analytics.Dashboard(ctx, startupID)
	require.NoError(t, err)
	assert.Equal(t, plan.AnalyticsBasic, basic.Level)
	assert.Equal(t, int64(1), basic.ActiveJobs)
	assert.Equal(t, int64(3), basic.TotalApplicants)
	assert.Equal(t, int64(1), basic.ByStatus[model.ApplicationApplied])
	assert.Equal(t, int64(1), basic.ByStatus[model.ApplicationShortlisted])
	assert.Equal(t, int64(0), basic.ByStatus[model.ApplicationSelected])
	assert.Nil(t, basic.Jobs)
	assert.Nil(t, basic.Conversion)

	f.plans[startupID] = plan.TierPro
	advanced, err := f.analytics.Dashboard(ctx, startupID)
	require.NoError(t, err)
	assert.Equal(t, plan.AnalyticsAdvanced, advanced.Level)
	require.Len(t, advanced.Jobs, 1)
	assert.Equal(t, int64(3), advanced.Jobs[0].Applicants)
	assert.Equal(t, "Backend Intern", advanced.Jobs[0].Title)
	require.NotNil(t, advanced.Conversion)
	assert.InDelta(t, 1.0/3, advanced.Conversion.Shortlisted, 1e-9)
	assert.Zero(t, advanced.Conversion.Selected)
}

func TestConversion(t *testing.T) {
	reached := map[model.ApplicationStatus]int64{
		model.ApplicationApplied:            10,
		model.ApplicationShortlisted:        5,
		model.ApplicationInterviewScheduled: 3,
		model.ApplicationSelected:           1,
		model.ApplicationRejected:           4,
	}

	c := conversion(reached, 10)
	assert.InDelta(t, 0.5, c.Shortlisted, 1e-9)
	assert.InDelta(t, 0.3, c.Interviewed, 1e-9)
	assert.InDelta(t, 0.1, c.Selected, 1e-9)

	assert.Equal(t, &Conversion{}, conversion(nil, 0))
}

func TestDashboard_ConversionCountsRejectedAfterInterview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t, plan.TierPro)

	application := f.shortlist(t, job, studentA)
	_, err := f.interview.Schedule(ctx, startupID, application.ID.Hex(), online(testNow.Add(24*time.Hour), "cto@startup.io"))
	require.NoError(t, err)
	_, err = f.application.UpdateStatus(ctx, startupID, application.ID.Hex(), model.ApplicationRejected)
	require.NoError(t, err)

	dashboard, err := f.analytics.Dashboard(ctx, startupID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.ByStatus[model.ApplicationRejected])
	require.NotNil(t, dashboard.Conversion)
	assert.InDelta(t, 1.0, dashboard.Conversion.Shortlisted, 1e-9)
	assert.InDelta(t, 1.0, dashboard.Conversion.Interviewed, 1e-9)
	assert.Zero(t, dashboard.Conversion.Selected)
}
